package controllers

import (
	"errors"
	"strconv"

	"github.com/Atri9Ghosh/thinkplus/backend/config"
	"github.com/Atri9Ghosh/thinkplus/backend/engine"
	"github.com/Atri9Ghosh/thinkplus/backend/middleware"
	"github.com/Atri9Ghosh/thinkplus/backend/models"
	"github.com/Atri9Ghosh/thinkplus/backend/utils"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type TestsController struct {
	DB     *gorm.DB
	Cfg    *config.Config
	Engine *engine.Engine
}

func NewTestsController(db *gorm.DB, cfg *config.Config) *TestsController {
	return &TestsController{DB: db, Cfg: cfg, Engine: engine.New(db)}
}

// GetCourseTests lists active tests of a course without their
// question bodies.
func (tc *TestsController) GetCourseTests(c *fiber.Ctx) error {
	courseID, err := strconv.Atoi(c.Params("courseId"))
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	var tests []models.Test
	if err := tc.DB.Where("course_id = ? AND is_active = ?", courseID, true).Find(&tests).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	result := make([]fiber.Map, 0, len(tests))
	for _, test := range tests {
		result = append(result, fiber.Map{
			"id":            test.ID,
			"title":         test.Title,
			"description":   test.Description,
			"duration":      test.Duration,
			"total_marks":   test.TotalMarks,
			"passing_marks": test.PassingMarks,
			"created_at":    test.CreatedAt,
		})
	}

	return c.JSON(fiber.Map{"tests": result})
}

// GetTest returns a test for taking: questions are included but the
// correct answers and explanations are stripped.
func (tc *TestsController) GetTest(c *fiber.Ctx) error {
	testID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid test ID")
	}

	var test models.Test
	if err := tc.DB.Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("sequence_order ASC, id ASC")
	}).First(&test, testID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Test not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	questions := make([]fiber.Map, 0, len(test.Questions))
	for _, q := range test.Questions {
		questions = append(questions, fiber.Map{
			"question": q.Question,
			"options":  q.OptionList(),
			"marks":    q.Marks,
			"order":    q.SequenceOrder,
		})
	}

	return c.JSON(fiber.Map{
		"test": fiber.Map{
			"id":            test.ID,
			"course_id":     test.CourseID,
			"title":         test.Title,
			"description":   test.Description,
			"duration":      test.Duration,
			"total_marks":   test.TotalMarks,
			"passing_marks": test.PassingMarks,
			"is_active":     test.IsActive,
			"questions":     questions,
		},
	})
}

type questionInput struct {
	Question      string   `json:"question" validate:"required"`
	Options       []string `json:"options" validate:"required,min=2"`
	CorrectAnswer int      `json:"correct_answer" validate:"gte=0"`
	Marks         int      `json:"marks"`
	Explanation   string   `json:"explanation"`
}

type testInput struct {
	CourseID     *uint           `json:"course_id"`
	Title        string          `json:"title" validate:"required"`
	Description  string          `json:"description"`
	Duration     int             `json:"duration" validate:"required,gt=0"`
	TotalMarks   int             `json:"total_marks"`
	PassingMarks int             `json:"passing_marks" validate:"gte=0"`
	IsActive     *bool           `json:"is_active"`
	Questions    []questionInput `json:"questions" validate:"dive"`
}

// CreateTest godoc
// @Summary Create a test
// @Description Creates a test with its question list (admin only)
// @Tags tests
// @Accept json
// @Produce json
// @Success 201 {object} map[string]interface{}
// @Failure 422 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /tests [post]
func (tc *TestsController) CreateTest(c *fiber.Ctx) error {
	var input testInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if err := validate.Struct(input); err != nil {
		return utils.ValidationError(c, validationDetails(err))
	}

	test := models.Test{
		CourseID:     input.CourseID,
		Title:        input.Title,
		Description:  input.Description,
		Duration:     input.Duration,
		TotalMarks:   input.TotalMarks,
		PassingMarks: input.PassingMarks,
		IsActive:     true,
	}
	if input.IsActive != nil {
		test.IsActive = *input.IsActive
	}

	marksSum := 0
	for i, q := range input.Questions {
		if q.CorrectAnswer >= len(q.Options) {
			return utils.BadRequest(c, "Invalid correct answer index")
		}
		marks := q.Marks
		if marks == 0 {
			marks = 1
		}
		marksSum += marks

		question := models.Question{
			Question:      q.Question,
			CorrectAnswer: q.CorrectAnswer,
			Marks:         marks,
			Explanation:   q.Explanation,
			SequenceOrder: i + 1,
		}
		question.SetOptionList(q.Options)
		test.Questions = append(test.Questions, question)
	}

	// Total marks default to the sum of question marks.
	if test.TotalMarks == 0 {
		test.TotalMarks = marksSum
	}

	if err := tc.DB.Create(&test).Error; err != nil {
		return utils.InternalServerError(c, "Could not create test")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"test": test})
}

func (tc *TestsController) UpdateTest(c *fiber.Ctx) error {
	testID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid test ID")
	}

	var input testInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	var test models.Test
	if err := tc.DB.First(&test, testID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Test not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	if input.Title != "" {
		test.Title = input.Title
	}
	if input.Description != "" {
		test.Description = input.Description
	}
	if input.Duration > 0 {
		test.Duration = input.Duration
	}
	if input.TotalMarks > 0 {
		test.TotalMarks = input.TotalMarks
	}
	if input.PassingMarks > 0 {
		test.PassingMarks = input.PassingMarks
	}
	if input.CourseID != nil {
		test.CourseID = input.CourseID
	}
	if input.IsActive != nil {
		test.IsActive = *input.IsActive
	}

	// Replacement questions pass the same checks as at creation; an
	// update must not be able to make a question unanswerable.
	marksSum := 0
	if input.Questions != nil {
		for _, q := range input.Questions {
			if err := validate.Struct(q); err != nil {
				return utils.ValidationError(c, validationDetails(err))
			}
			if q.CorrectAnswer >= len(q.Options) {
				return utils.BadRequest(c, "Invalid correct answer index")
			}
			marks := q.Marks
			if marks == 0 {
				marks = 1
			}
			marksSum += marks
		}
		if input.TotalMarks == 0 {
			test.TotalMarks = marksSum
		}
	}

	err = tc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&test).Error; err != nil {
			return err
		}

		// Replacing the question list rewrites it wholesale; attempts
		// made against the old list keep their recorded answers.
		if input.Questions == nil {
			return nil
		}
		if err := tx.Where("test_id = ?", test.ID).Delete(&models.Question{}).Error; err != nil {
			return err
		}
		for i, q := range input.Questions {
			marks := q.Marks
			if marks == 0 {
				marks = 1
			}
			question := models.Question{
				TestID:        test.ID,
				Question:      q.Question,
				CorrectAnswer: q.CorrectAnswer,
				Marks:         marks,
				Explanation:   q.Explanation,
				SequenceOrder: i + 1,
			}
			question.SetOptionList(q.Options)
			if err := tx.Create(&question).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return utils.InternalServerError(c, "Could not update test")
	}

	return c.JSON(fiber.Map{"test": test})
}

func (tc *TestsController) DeleteTest(c *fiber.Ctx) error {
	testID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid test ID")
	}

	var test models.Test
	if err := tc.DB.First(&test, testID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Test not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	if err := tc.DB.Delete(&test).Error; err != nil {
		return utils.InternalServerError(c, "Could not delete test")
	}

	return c.JSON(fiber.Map{"message": "Test deleted successfully"})
}

// SubmitTest godoc
// @Summary Submit a test attempt
// @Description Scores the ordered answer list and appends an attempt record
// @Tags tests
// @Accept json
// @Produce json
// @Success 200 {object} engine.SubmitResult
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /tests/{id}/submit [post]
func (tc *TestsController) SubmitTest(c *fiber.Ctx) error {
	principal := middleware.GetPrincipal(c)
	if principal == nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	testID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid test ID")
	}

	var input struct {
		Answers   []int `json:"answers"`
		TimeTaken int   `json:"time_taken"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	result, err := tc.Engine.SubmitTest(principal.UserID, uint(testID), input.Answers, input.TimeTaken)
	if err != nil {
		return engineError(c, err)
	}

	return c.JSON(result)
}

// GetTestResults returns the stored attempt plus test metadata. The
// answer key is not repeated here; the attempt already records
// per-question correctness.
func (tc *TestsController) GetTestResults(c *fiber.Ctx) error {
	userID, err := strconv.Atoi(c.Params("userId"))
	if err != nil {
		return utils.BadRequest(c, "Invalid user ID")
	}
	testID, err := strconv.Atoi(c.Params("testId"))
	if err != nil {
		return utils.BadRequest(c, "Invalid test ID")
	}

	attempt, test, err := tc.Engine.TestResults(uint(userID), uint(testID))
	if err != nil {
		return engineError(c, err)
	}

	questions := make([]fiber.Map, 0, len(test.Questions))
	for _, q := range test.Questions {
		questions = append(questions, fiber.Map{
			"question":    q.Question,
			"options":     q.OptionList(),
			"marks":       q.Marks,
			"explanation": q.Explanation,
			"order":       q.SequenceOrder,
		})
	}

	return c.JSON(fiber.Map{
		"attempt": attempt,
		"test": fiber.Map{
			"title":         test.Title,
			"total_marks":   test.TotalMarks,
			"passing_marks": test.PassingMarks,
			"questions":     questions,
		},
	})
}

// GetTestAnalytics godoc
// @Summary Aggregate attempt statistics for a test
// @Tags tests
// @Produce json
// @Success 200 {object} engine.Analytics
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /tests/analytics/{testId} [get]
func (tc *TestsController) GetTestAnalytics(c *fiber.Ctx) error {
	testID, err := strconv.Atoi(c.Params("testId"))
	if err != nil {
		return utils.BadRequest(c, "Invalid test ID")
	}

	analytics, err := tc.Engine.TestAnalytics(uint(testID))
	if err != nil {
		return engineError(c, err)
	}

	return c.JSON(analytics)
}
