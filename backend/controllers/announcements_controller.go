package controllers

import (
	"errors"
	"strconv"
	"time"

	"github.com/Atri9Ghosh/thinkplus/backend/config"
	"github.com/Atri9Ghosh/thinkplus/backend/middleware"
	"github.com/Atri9Ghosh/thinkplus/backend/models"
	"github.com/Atri9Ghosh/thinkplus/backend/utils"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type AnnouncementsController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewAnnouncementsController(db *gorm.DB, cfg *config.Config) *AnnouncementsController {
	return &AnnouncementsController{DB: db, Cfg: cfg}
}

// GetAnnouncements lists active, unexpired announcements, highest
// priority first.
func (ac *AnnouncementsController) GetAnnouncements(c *fiber.Ctx) error {
	query := ac.DB.Model(&models.Announcement{}).
		Where("is_active = ?", true).
		Where("expires_at IS NULL OR expires_at > ?", time.Now())

	if audience := c.Query("targetAudience"); audience != "" && audience != "all" {
		query = query.Where("target_audience IN ?", []string{"all", audience})
	}

	var announcements []models.Announcement
	err := query.Order("CASE priority WHEN 'high' THEN 0 WHEN 'medium' THEN 1 ELSE 2 END").
		Order("created_at DESC").
		Find(&announcements).Error
	if err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	return c.JSON(fiber.Map{"announcements": announcements})
}

func (ac *AnnouncementsController) GetAnnouncement(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid announcement ID")
	}

	var announcement models.Announcement
	if err := ac.DB.First(&announcement, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Announcement not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	return c.JSON(fiber.Map{"announcement": announcement})
}

type announcementInput struct {
	Title          string     `json:"title" validate:"required"`
	Content        string     `json:"content" validate:"required"`
	TargetAudience string     `json:"target_audience" validate:"omitempty,oneof=all students instructors"`
	Priority       string     `json:"priority" validate:"omitempty,oneof=low medium high"`
	IsActive       *bool      `json:"is_active"`
	ExpiresAt      *time.Time `json:"expires_at"`
}

func (ac *AnnouncementsController) CreateAnnouncement(c *fiber.Ctx) error {
	principal := middleware.GetPrincipal(c)
	if principal == nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var input announcementInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if err := validate.Struct(input); err != nil {
		return utils.ValidationError(c, validationDetails(err))
	}

	announcement := models.Announcement{
		Title:          input.Title,
		Content:        input.Content,
		TargetAudience: input.TargetAudience,
		Priority:       input.Priority,
		IsActive:       true,
		CreatedBy:      principal.UserID,
		ExpiresAt:      input.ExpiresAt,
	}
	if announcement.TargetAudience == "" {
		announcement.TargetAudience = "all"
	}
	if announcement.Priority == "" {
		announcement.Priority = "medium"
	}
	if input.IsActive != nil {
		announcement.IsActive = *input.IsActive
	}

	if err := ac.DB.Create(&announcement).Error; err != nil {
		return utils.InternalServerError(c, "Could not create announcement")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"announcement": announcement})
}

func (ac *AnnouncementsController) UpdateAnnouncement(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid announcement ID")
	}

	var input announcementInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	var announcement models.Announcement
	if err := ac.DB.First(&announcement, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Announcement not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	if input.Title != "" {
		announcement.Title = input.Title
	}
	if input.Content != "" {
		announcement.Content = input.Content
	}
	if input.TargetAudience != "" {
		announcement.TargetAudience = input.TargetAudience
	}
	if input.Priority != "" {
		announcement.Priority = input.Priority
	}
	if input.IsActive != nil {
		announcement.IsActive = *input.IsActive
	}
	if input.ExpiresAt != nil {
		announcement.ExpiresAt = input.ExpiresAt
	}

	if err := ac.DB.Save(&announcement).Error; err != nil {
		return utils.InternalServerError(c, "Could not update announcement")
	}

	return c.JSON(fiber.Map{"announcement": announcement})
}

func (ac *AnnouncementsController) DeleteAnnouncement(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid announcement ID")
	}

	var announcement models.Announcement
	if err := ac.DB.First(&announcement, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Announcement not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	if err := ac.DB.Delete(&announcement).Error; err != nil {
		return utils.InternalServerError(c, "Could not delete announcement")
	}

	return c.JSON(fiber.Map{"message": "Announcement deleted successfully"})
}
