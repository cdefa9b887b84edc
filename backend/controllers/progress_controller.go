package controllers

import (
	"strconv"
	"time"

	"github.com/Atri9Ghosh/thinkplus/backend/config"
	"github.com/Atri9Ghosh/thinkplus/backend/engine"
	"github.com/Atri9Ghosh/thinkplus/backend/models"
	"github.com/Atri9Ghosh/thinkplus/backend/utils"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type ProgressController struct {
	DB     *gorm.DB
	Cfg    *config.Config
	Engine *engine.Engine
}

func NewProgressController(db *gorm.DB, cfg *config.Config) *ProgressController {
	return &ProgressController{DB: db, Cfg: cfg, Engine: engine.New(db)}
}

// GetProgress godoc
// @Summary Get progress for a course
// @Description Returns the caller's ledger entry for the course, creating it on first access
// @Tags progress
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /progress/{userId}/{courseId} [get]
func (pc *ProgressController) GetProgress(c *fiber.Ctx) error {
	userID, courseID, err := progressParams(c)
	if err != nil {
		return utils.BadRequest(c, err.Error())
	}

	progress, err := pc.Engine.GetProgress(userID, courseID)
	if err != nil {
		return engineError(c, err)
	}

	// Attach course context the way the portal expects it. A deleted
	// course degrades to a bare ledger entry.
	var course models.Course
	response := fiber.Map{"progress": progress}
	if err := pc.DB.Preload("Videos").Preload("Curriculum").First(&course, courseID).Error; err == nil {
		response["course"] = fiber.Map{
			"id":         course.ID,
			"title":      course.Title,
			"videos":     course.Videos,
			"curriculum": course.Curriculum,
		}
	}

	return c.JSON(response)
}

// UpdateProgress is the direct override path for client-driven
// progress updates.
func (pc *ProgressController) UpdateProgress(c *fiber.Ctx) error {
	userID, courseID, err := progressParams(c)
	if err != nil {
		return utils.BadRequest(c, err.Error())
	}

	var input struct {
		OverallProgress *int       `json:"overall_progress"`
		LastAccessed    *time.Time `json:"last_accessed"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	progress, err := pc.Engine.UpdateProgress(userID, courseID, input.OverallProgress, input.LastAccessed)
	if err != nil {
		return engineError(c, err)
	}

	return c.JSON(fiber.Map{"progress": progress})
}

// MarkVideoComplete godoc
// @Summary Mark a video as complete
// @Description Adds the video to the completed set and recomputes the overall percentage
// @Tags progress
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /progress/{userId}/{courseId}/video-complete [post]
func (pc *ProgressController) MarkVideoComplete(c *fiber.Ctx) error {
	userID, courseID, err := progressParams(c)
	if err != nil {
		return utils.BadRequest(c, err.Error())
	}

	var input struct {
		VideoID string `json:"video_id"`
	}
	if err := c.BodyParser(&input); err != nil || input.VideoID == "" {
		return utils.BadRequest(c, "video_id is required")
	}

	progress, err := pc.Engine.MarkVideoComplete(userID, courseID, input.VideoID)
	if err != nil {
		return engineError(c, err)
	}

	return c.JSON(fiber.Map{"progress": progress})
}

func (pc *ProgressController) MarkModuleComplete(c *fiber.Ctx) error {
	userID, courseID, err := progressParams(c)
	if err != nil {
		return utils.BadRequest(c, err.Error())
	}

	var input struct {
		ModuleName string `json:"module_name"`
	}
	if err := c.BodyParser(&input); err != nil || input.ModuleName == "" {
		return utils.BadRequest(c, "module_name is required")
	}

	progress, err := pc.Engine.MarkModuleComplete(userID, courseID, input.ModuleName)
	if err != nil {
		return engineError(c, err)
	}

	return c.JSON(fiber.Map{"progress": progress})
}

func progressParams(c *fiber.Ctx) (uint, uint, error) {
	userID, err := strconv.Atoi(c.Params("userId"))
	if err != nil {
		return 0, 0, fiber.NewError(fiber.StatusBadRequest, "Invalid user ID")
	}
	courseID, err := strconv.Atoi(c.Params("courseId"))
	if err != nil {
		return 0, 0, fiber.NewError(fiber.StatusBadRequest, "Invalid course ID")
	}
	return uint(userID), uint(courseID), nil
}
