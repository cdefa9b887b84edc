package controllers

import (
	"errors"
	"math"
	"strconv"

	"github.com/Atri9Ghosh/thinkplus/backend/config"
	"github.com/Atri9Ghosh/thinkplus/backend/models"
	"github.com/Atri9Ghosh/thinkplus/backend/utils"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type UserController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewUserController(db *gorm.DB, cfg *config.Config) *UserController {
	return &UserController{DB: db, Cfg: cfg}
}

// GetProfile godoc
// @Summary Get a user profile by external id
// @Tags users
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /users/profile/{externalId} [get]
func (uc *UserController) GetProfile(c *fiber.Ctx) error {
	externalID := c.Params("externalId")

	var user models.User
	if err := uc.DB.Where("external_id = ?", externalID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "User not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	var courses []models.Course
	uc.DB.Select("id", "title", "thumbnail", "exam_type", "price").
		Joins("JOIN enrollments ON enrollments.course_id = courses.id").
		Where("enrollments.user_id = ? AND enrollments.deleted_at IS NULL", user.ID).
		Find(&courses)

	return c.JSON(fiber.Map{"user": user, "enrolled_courses": courses})
}

func (uc *UserController) UpdateProfile(c *fiber.Ctx) error {
	externalID := c.Params("externalId")

	var input struct {
		Name         string `json:"name"`
		PhoneNumber  string `json:"phone_number"`
		ProfileImage string `json:"profile_image"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	var user models.User
	if err := uc.DB.Where("external_id = ?", externalID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "User not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	if input.Name != "" {
		user.Name = input.Name
	}
	if input.PhoneNumber != "" {
		user.PhoneNumber = input.PhoneNumber
	}
	if input.ProfileImage != "" {
		user.ProfileImage = input.ProfileImage
	}

	if err := uc.DB.Save(&user).Error; err != nil {
		return utils.InternalServerError(c, "Could not update profile")
	}

	return c.JSON(fiber.Map{"user": user})
}

// GetUserProgress lists all ledger entries of a user across courses.
func (uc *UserController) GetUserProgress(c *fiber.Ctx) error {
	userID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid user ID")
	}

	var progress []models.Progress
	if err := uc.DB.Preload("QuizScores").Where("user_id = ?", userID).Find(&progress).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	return c.JSON(fiber.Map{"progress": progress})
}

// GetDashboard godoc
// @Summary Dashboard summary for a user
// @Description Enrolled courses, per-course progress and simple reductions over them
// @Tags users
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /users/{id}/dashboard [get]
func (uc *UserController) GetDashboard(c *fiber.Ctx) error {
	userID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid user ID")
	}

	var user models.User
	if err := uc.DB.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "User not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	var courses []models.Course
	uc.DB.Select("id", "title", "thumbnail", "exam_type", "price").
		Joins("JOIN enrollments ON enrollments.course_id = courses.id").
		Where("enrollments.user_id = ? AND enrollments.deleted_at IS NULL", user.ID).
		Find(&courses)

	var progress []models.Progress
	uc.DB.Preload("QuizScores").Where("user_id = ?", user.ID).Find(&progress)

	// Rough estimate: full completion of a course counts as ten study
	// hours.
	totalStudyHours := 0.0
	testsAttempted := 0
	progressSum := 0
	for _, p := range progress {
		totalStudyHours += float64(p.OverallProgress) / 100 * 10
		testsAttempted += len(p.QuizScores)
		progressSum += p.OverallProgress
	}

	averageProgress := 0
	if len(progress) > 0 {
		averageProgress = int(math.Round(float64(progressSum) / float64(len(progress))))
	}

	return c.JSON(fiber.Map{
		"user":             user,
		"enrolled_courses": courses,
		"progress":         progress,
		"stats": fiber.Map{
			"total_courses":     len(courses),
			"total_study_hours": int(math.Round(totalStudyHours)),
			"tests_attempted":   testsAttempted,
			"average_progress":  averageProgress,
		},
	})
}

// GetAllUsers lists users with optional role and search filters
// (admin only).
func (uc *UserController) GetAllUsers(c *fiber.Ctx) error {
	query := uc.DB.Model(&models.User{})

	if role := c.Query("role"); role != "" {
		query = query.Where("role = ?", role)
	}
	if search := c.Query("search"); search != "" {
		pattern := "%" + search + "%"
		query = query.Where("LOWER(name) LIKE LOWER(?) OR LOWER(email) LIKE LOWER(?)", pattern, pattern)
	}

	var users []models.User
	if err := query.Find(&users).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	return c.JSON(fiber.Map{"users": users})
}

func (uc *UserController) UpdateUserRole(c *fiber.Ctx) error {
	userID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid user ID")
	}

	var input struct {
		Role string `json:"role"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if !models.IsValidRole(input.Role) {
		return utils.BadRequest(c, "Invalid role")
	}

	var user models.User
	if err := uc.DB.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "User not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	user.Role = input.Role
	if err := uc.DB.Save(&user).Error; err != nil {
		return utils.InternalServerError(c, "Could not update role")
	}

	return c.JSON(fiber.Map{"user": user})
}
