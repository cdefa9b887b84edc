package controllers

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/Atri9Ghosh/thinkplus/backend/config"
	"github.com/Atri9Ghosh/thinkplus/backend/engine"
	"github.com/Atri9Ghosh/thinkplus/backend/middleware"
	"github.com/Atri9Ghosh/thinkplus/backend/models"
	"github.com/Atri9Ghosh/thinkplus/backend/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CoursesController struct {
	DB     *gorm.DB
	Cfg    *config.Config
	Engine *engine.Engine
}

func NewCoursesController(db *gorm.DB, cfg *config.Config) *CoursesController {
	return &CoursesController{DB: db, Cfg: cfg, Engine: engine.New(db)}
}

// GetCourses godoc
// @Summary List published courses
// @Description Supports exam type, price range, text search and sorting
// @Tags courses
// @Produce json
// @Param examType query string false "IPMAT, CAT or CLAT"
// @Param priceRange query string false "min-max"
// @Param sort query string false "price-asc, price-desc, rating, popular"
// @Param search query string false "matches title and description"
// @Success 200 {object} map[string]interface{}
// @Router /courses [get]
func (cc *CoursesController) GetCourses(c *fiber.Ctx) error {
	query := cc.DB.Model(&models.Course{}).Where("is_published = ?", true)

	if examType := c.Query("examType"); examType != "" {
		query = query.Where("exam_type = ?", examType)
	}

	if search := c.Query("search"); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}

	if priceRange := c.Query("priceRange"); priceRange != "" {
		parts := strings.SplitN(priceRange, "-", 2)
		min, _ := strconv.ParseFloat(parts[0], 64)
		query = query.Where("price >= ?", min)
		if len(parts) == 2 && parts[1] != "" {
			max, err := strconv.ParseFloat(parts[1], 64)
			if err == nil {
				query = query.Where("price <= ?", max)
			}
		}
	}

	switch c.Query("sort") {
	case "price-asc":
		query = query.Order("price ASC")
	case "price-desc":
		query = query.Order("price DESC")
	case "rating":
		query = query.Order("rating DESC")
	case "popular":
		query = query.Order("enrolled_count DESC")
	default:
		query = query.Order("created_at DESC")
	}

	var courses []models.Course
	if err := query.Preload("Curriculum").Preload("Reviews").Find(&courses).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	return c.JSON(fiber.Map{"courses": courses})
}

func (cc *CoursesController) GetCourse(c *fiber.Ctx) error {
	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	var course models.Course
	err = cc.DB.Preload("Curriculum").Preload("Videos").Preload("Materials").Preload("Reviews").
		First(&course, courseID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Course not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	return c.JSON(fiber.Map{"course": course})
}

type videoInput struct {
	VideoID  string `json:"video_id"`
	Title    string `json:"title" validate:"required"`
	URL      string `json:"url" validate:"required"`
	Duration int    `json:"duration"`
	Order    int    `json:"order"`
	Module   string `json:"module"`
}

type curriculumInput struct {
	ModuleName string   `json:"module_name" validate:"required"`
	Topics     []string `json:"topics"`
}

type materialInput struct {
	Title string `json:"title" validate:"required"`
	Type  string `json:"type" validate:"omitempty,oneof=pdf doc video link"`
	URL   string `json:"url" validate:"required"`
}

type courseInput struct {
	Title           string            `json:"title" validate:"required"`
	Description     string            `json:"description" validate:"required"`
	ExamType        string            `json:"exam_type" validate:"required,oneof=IPMAT CAT CLAT"`
	Duration        string            `json:"duration"`
	Price           float64           `json:"price" validate:"gte=0"`
	DiscountedPrice float64           `json:"discounted_price" validate:"gte=0"`
	Thumbnail       string            `json:"thumbnail"`
	InstructorName  string            `json:"instructor_name"`
	InstructorBio   string            `json:"instructor_bio"`
	InstructorImage string            `json:"instructor_image"`
	IsPublished     *bool             `json:"is_published"`
	Curriculum      []curriculumInput `json:"curriculum" validate:"dive"`
	Videos          []videoInput      `json:"videos" validate:"dive"`
	Materials       []materialInput   `json:"materials" validate:"dive"`
}

// CreateCourse godoc
// @Summary Create a course
// @Description Creates a course with curriculum, videos and materials (admin only)
// @Tags courses
// @Accept json
// @Produce json
// @Success 201 {object} map[string]interface{}
// @Failure 422 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /courses [post]
func (cc *CoursesController) CreateCourse(c *fiber.Ctx) error {
	var input courseInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if err := validate.Struct(input); err != nil {
		return utils.ValidationError(c, validationDetails(err))
	}

	course := courseFromInput(input)
	if err := cc.DB.Create(&course).Error; err != nil {
		return utils.InternalServerError(c, "Could not create course")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"course": course})
}

func (cc *CoursesController) UpdateCourse(c *fiber.Ctx) error {
	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	var input courseInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	var course models.Course
	if err := cc.DB.First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Course not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	if input.Title != "" {
		course.Title = input.Title
	}
	if input.Description != "" {
		course.Description = input.Description
	}
	if input.ExamType != "" {
		if !models.IsValidExamType(input.ExamType) {
			return utils.BadRequest(c, "Invalid exam type")
		}
		course.ExamType = input.ExamType
	}
	if input.Duration != "" {
		course.Duration = input.Duration
	}
	if input.Price > 0 {
		course.Price = input.Price
	}
	if input.DiscountedPrice > 0 {
		course.DiscountedPrice = input.DiscountedPrice
	}
	if input.Thumbnail != "" {
		course.Thumbnail = input.Thumbnail
	}
	if input.InstructorName != "" {
		course.InstructorName = input.InstructorName
	}
	if input.InstructorBio != "" {
		course.InstructorBio = input.InstructorBio
	}
	if input.InstructorImage != "" {
		course.InstructorImage = input.InstructorImage
	}
	if input.IsPublished != nil {
		course.IsPublished = *input.IsPublished
	}

	// Nested lists replace wholesale when supplied. The whole update is
	// one transaction so a failed rewrite cannot leave the course with
	// half a list.
	err = cc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&course).Error; err != nil {
			return err
		}

		if input.Curriculum != nil {
			if err := tx.Where("course_id = ?", course.ID).Delete(&models.CurriculumModule{}).Error; err != nil {
				return err
			}
			for _, m := range input.Curriculum {
				module := models.CurriculumModule{CourseID: course.ID, ModuleName: m.ModuleName}
				module.SetTopicList(m.Topics)
				if err := tx.Create(&module).Error; err != nil {
					return err
				}
			}
		}
		if input.Videos != nil {
			if err := tx.Where("course_id = ?", course.ID).Delete(&models.Video{}).Error; err != nil {
				return err
			}
			for i, v := range input.Videos {
				if err := tx.Create(videoFromInput(course.ID, i, v)).Error; err != nil {
					return err
				}
			}
		}
		if input.Materials != nil {
			if err := tx.Where("course_id = ?", course.ID).Delete(&models.Material{}).Error; err != nil {
				return err
			}
			for _, m := range input.Materials {
				material := models.Material{CourseID: course.ID, Title: m.Title, Type: m.Type, URL: m.URL}
				if material.Type == "" {
					material.Type = "pdf"
				}
				if err := tx.Create(&material).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return utils.InternalServerError(c, "Could not update course")
	}

	return c.JSON(fiber.Map{"course": course})
}

func (cc *CoursesController) DeleteCourse(c *fiber.Ctx) error {
	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	var course models.Course
	if err := cc.DB.First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Course not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	if err := cc.DB.Delete(&course).Error; err != nil {
		return utils.InternalServerError(c, "Could not delete course")
	}

	return c.JSON(fiber.Map{"message": "Course deleted successfully"})
}

// Enroll godoc
// @Summary Enroll in a course
// @Description Adds the caller to the course, bumps the enrolled count and opens the progress ledger
// @Tags courses
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /courses/{id}/enroll [post]
func (cc *CoursesController) Enroll(c *fiber.Ctx) error {
	principal := middleware.GetPrincipal(c)
	if principal == nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	var course models.Course
	if err := cc.DB.First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Course not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	var existing int64
	cc.DB.Model(&models.Enrollment{}).
		Where("user_id = ? AND course_id = ?", principal.UserID, course.ID).
		Count(&existing)
	if existing > 0 {
		return utils.BadRequest(c, "Already enrolled in this course")
	}

	err = cc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&models.Enrollment{UserID: principal.UserID, CourseID: course.ID}).Error; err != nil {
			return err
		}
		return tx.Model(&course).
			UpdateColumn("enrolled_count", gorm.Expr("enrolled_count + ?", 1)).Error
	})
	if err != nil {
		return utils.InternalServerError(c, "Could not enroll in course")
	}

	// Open the progress ledger for the new enrollment.
	if _, err := cc.Engine.EnsureProgress(principal.UserID, course.ID); err != nil {
		return utils.InternalServerError(c, "Could not create progress record")
	}

	return c.JSON(fiber.Map{"message": "Enrolled successfully", "course": course})
}

// GetCourseContent serves the full course to enrolled users only.
func (cc *CoursesController) GetCourseContent(c *fiber.Ctx) error {
	principal := middleware.GetPrincipal(c)
	if principal == nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	var enrolled int64
	cc.DB.Model(&models.Enrollment{}).
		Where("user_id = ? AND course_id = ?", principal.UserID, courseID).
		Count(&enrolled)
	if enrolled == 0 {
		return utils.Forbidden(c, "Not enrolled in this course")
	}

	var course models.Course
	err = cc.DB.Preload("Curriculum").Preload("Videos").Preload("Materials").Preload("Reviews").
		First(&course, courseID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Course not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	return c.JSON(fiber.Map{"course": course})
}

type reviewInput struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment"`
}

// AddReview godoc
// @Summary Review a course
// @Description One review per user per course; reviewing again replaces the earlier entry and the mean rating is recomputed
// @Tags courses
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /courses/{id}/review [post]
func (cc *CoursesController) AddReview(c *fiber.Ctx) error {
	principal := middleware.GetPrincipal(c)
	if principal == nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	var input reviewInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.Rating < 1 || input.Rating > 5 {
		return utils.BadRequest(c, "Invalid rating")
	}

	var course models.Course
	if err := cc.DB.First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Course not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	var enrolled int64
	cc.DB.Model(&models.Enrollment{}).
		Where("user_id = ? AND course_id = ?", principal.UserID, courseID).
		Count(&enrolled)
	if enrolled == 0 {
		return utils.Forbidden(c, "Must be enrolled to review")
	}

	err = cc.DB.Transaction(func(tx *gorm.DB) error {
		// Replace any earlier review from the same user.
		if err := tx.Unscoped().
			Where("course_id = ? AND user_id = ?", course.ID, principal.UserID).
			Delete(&models.Review{}).Error; err != nil {
			return err
		}

		review := models.Review{
			CourseID: course.ID,
			UserID:   principal.UserID,
			Rating:   input.Rating,
			Comment:  input.Comment,
			Date:     time.Now(),
		}
		if err := tx.Create(&review).Error; err != nil {
			return err
		}

		var reviews []models.Review
		if err := tx.Where("course_id = ?", course.ID).Find(&reviews).Error; err != nil {
			return err
		}

		course.Rating = engine.MeanRating(reviews)
		return tx.Model(&course).UpdateColumn("rating", course.Rating).Error
	})
	if err != nil {
		return utils.InternalServerError(c, "Could not add review")
	}

	cc.DB.Preload("Reviews").First(&course, course.ID)
	return c.JSON(fiber.Map{"message": "Review added successfully", "course": course})
}

// GetEnrolledCourses lists the courses a user is enrolled in.
func (cc *CoursesController) GetEnrolledCourses(c *fiber.Ctx) error {
	userID, err := strconv.Atoi(c.Params("userId"))
	if err != nil {
		return utils.BadRequest(c, "Invalid user ID")
	}

	var user models.User
	if err := cc.DB.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "User not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	var courses []models.Course
	err = cc.DB.Joins("JOIN enrollments ON enrollments.course_id = courses.id").
		Where("enrollments.user_id = ? AND enrollments.deleted_at IS NULL", userID).
		Find(&courses).Error
	if err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	return c.JSON(fiber.Map{"courses": courses})
}

func courseFromInput(input courseInput) models.Course {
	course := models.Course{
		Title:           input.Title,
		Description:     input.Description,
		ExamType:        input.ExamType,
		Duration:        input.Duration,
		Price:           input.Price,
		DiscountedPrice: input.DiscountedPrice,
		Thumbnail:       input.Thumbnail,
		InstructorName:  input.InstructorName,
		InstructorBio:   input.InstructorBio,
		InstructorImage: input.InstructorImage,
	}
	if course.Duration == "" {
		course.Duration = "6 months"
	}
	if input.IsPublished != nil {
		course.IsPublished = *input.IsPublished
	}

	for _, m := range input.Curriculum {
		module := models.CurriculumModule{ModuleName: m.ModuleName}
		module.SetTopicList(m.Topics)
		course.Curriculum = append(course.Curriculum, module)
	}
	for i, v := range input.Videos {
		course.Videos = append(course.Videos, *videoFromInput(0, i, v))
	}
	for _, m := range input.Materials {
		material := models.Material{Title: m.Title, Type: m.Type, URL: m.URL}
		if material.Type == "" {
			material.Type = "pdf"
		}
		course.Materials = append(course.Materials, material)
	}

	return course
}

// videoFromInput assigns a stable id to a video when the client did
// not supply one; completion events address videos by this id.
func videoFromInput(courseID uint, index int, input videoInput) *models.Video {
	video := &models.Video{
		CourseID: courseID,
		VideoID:  input.VideoID,
		Title:    input.Title,
		URL:      input.URL,
		Duration: input.Duration,
		Module:   input.Module,
	}
	if video.VideoID == "" {
		video.VideoID = uuid.NewString()
	}
	video.SequenceOrder = input.Order
	if video.SequenceOrder == 0 {
		video.SequenceOrder = index + 1
	}
	return video
}
