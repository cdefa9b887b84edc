package routes

import (
	"github.com/Atri9Ghosh/thinkplus/backend/config"
	"github.com/Atri9Ghosh/thinkplus/backend/controllers"
	"github.com/Atri9Ghosh/thinkplus/backend/middleware"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	requireAuth := middleware.RequireAuth(db, cfg)
	optionalAuth := middleware.OptionalAuth(db, cfg)
	requireAdmin := middleware.RequireRole("admin")

	app.Get("/api/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "OK", "message": "ThinkPlus API is running"})
	})

	// Auth / identity sync
	authController := controllers.NewAuthController(db, cfg)
	auth := app.Group("/api/auth")
	auth.Post("/webhook", authController.Webhook)
	auth.Post("/sync", authController.SyncUser)
	auth.Get("/user/:externalId", optionalAuth, authController.GetUserByExternalID)

	// Courses
	coursesController := controllers.NewCoursesController(db, cfg)
	courses := app.Group("/api/courses")
	courses.Get("/", coursesController.GetCourses)
	courses.Get("/enrolled/:userId", requireAuth, coursesController.GetEnrolledCourses)
	courses.Post("/:id/enroll", requireAuth, coursesController.Enroll)
	courses.Get("/:id/content", requireAuth, coursesController.GetCourseContent)
	courses.Post("/:id/review", requireAuth, coursesController.AddReview)
	courses.Get("/:id", coursesController.GetCourse)
	courses.Post("/", requireAuth, requireAdmin, coursesController.CreateCourse)
	courses.Put("/:id", requireAuth, requireAdmin, coursesController.UpdateCourse)
	courses.Delete("/:id", requireAuth, requireAdmin, coursesController.DeleteCourse)

	// Users
	userController := controllers.NewUserController(db, cfg)
	users := app.Group("/api/users")
	users.Get("/profile/:externalId", requireAuth, userController.GetProfile)
	users.Put("/profile/:externalId", requireAuth, userController.UpdateProfile)
	users.Get("/:id/progress", requireAuth, userController.GetUserProgress)
	users.Get("/:id/dashboard", requireAuth, userController.GetDashboard)
	users.Get("/", requireAuth, requireAdmin, userController.GetAllUsers)
	users.Put("/:id/role", requireAuth, requireAdmin, userController.UpdateUserRole)

	// Progress ledger
	progressController := controllers.NewProgressController(db, cfg)
	progress := app.Group("/api/progress", requireAuth)
	progress.Get("/:userId/:courseId", progressController.GetProgress)
	progress.Post("/:userId/:courseId/update", progressController.UpdateProgress)
	progress.Post("/:userId/:courseId/video-complete", progressController.MarkVideoComplete)
	progress.Post("/:userId/:courseId/module-complete", progressController.MarkModuleComplete)

	// Tests
	testsController := controllers.NewTestsController(db, cfg)
	tests := app.Group("/api/tests", requireAuth)
	tests.Get("/course/:courseId", testsController.GetCourseTests)
	tests.Get("/results/:userId/:testId", testsController.GetTestResults)
	tests.Get("/analytics/:testId", requireAdmin, testsController.GetTestAnalytics)
	tests.Post("/:id/submit", testsController.SubmitTest)
	tests.Get("/:id", testsController.GetTest)
	tests.Post("/", requireAdmin, testsController.CreateTest)
	tests.Put("/:id", requireAdmin, testsController.UpdateTest)
	tests.Delete("/:id", requireAdmin, testsController.DeleteTest)

	// Announcements
	announcementsController := controllers.NewAnnouncementsController(db, cfg)
	announcements := app.Group("/api/announcements")
	announcements.Get("/", optionalAuth, announcementsController.GetAnnouncements)
	announcements.Get("/:id", optionalAuth, announcementsController.GetAnnouncement)
	announcements.Post("/", requireAuth, requireAdmin, announcementsController.CreateAnnouncement)
	announcements.Put("/:id", requireAuth, requireAdmin, announcementsController.UpdateAnnouncement)
	announcements.Delete("/:id", requireAuth, requireAdmin, announcementsController.DeleteAnnouncement)
}
