package controllers

import (
	"errors"
	"strings"

	"github.com/Atri9Ghosh/thinkplus/backend/config"
	"github.com/Atri9Ghosh/thinkplus/backend/models"
	"github.com/Atri9Ghosh/thinkplus/backend/utils"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AuthController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewAuthController(db *gorm.DB, cfg *config.Config) *AuthController {
	return &AuthController{DB: db, Cfg: cfg}
}

type syncInput struct {
	ExternalID   string `json:"external_id" validate:"required"`
	Email        string `json:"email" validate:"required,email"`
	Name         string `json:"name" validate:"required"`
	ProfileImage string `json:"profile_image"`
}

// SyncUser godoc
// @Summary Reconcile an identity-provider user
// @Description Upserts by external key: update when the user exists, create otherwise
// @Tags auth
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Router /auth/sync [post]
func (ac *AuthController) SyncUser(c *fiber.Ctx) error {
	var input syncInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if err := validate.Struct(input); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "Missing required fields", validationDetails(err))
	}

	user, err := ac.upsertUser(input)
	if err != nil {
		return utils.InternalServerError(c, "Failed to sync user")
	}

	return c.JSON(fiber.Map{"user": user})
}

// GetUserByExternalID returns the user resolved from the identity
// provider's id, with their enrolled courses.
func (ac *AuthController) GetUserByExternalID(c *fiber.Ctx) error {
	externalID := c.Params("externalId")

	var user models.User
	if err := ac.DB.Where("external_id = ?", externalID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "User not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	var courses []models.Course
	ac.DB.Select("id", "title", "thumbnail", "exam_type", "price").
		Joins("JOIN enrollments ON enrollments.course_id = courses.id").
		Where("enrollments.user_id = ? AND enrollments.deleted_at IS NULL", user.ID).
		Find(&courses)

	return c.JSON(fiber.Map{"user": user, "enrolled_courses": courses})
}

type webhookEvent struct {
	Type string `json:"type"`
	Data struct {
		ID             string `json:"id"`
		EmailAddresses []struct {
			EmailAddress string `json:"email_address"`
		} `json:"email_addresses"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		ImageURL  string `json:"image_url"`
	} `json:"data"`
}

// Webhook ingests identity-provider events. user.created and
// user.updated both resolve to the same upsert; other event types are
// acknowledged and ignored.
func (ac *AuthController) Webhook(c *fiber.Ctx) error {
	var event webhookEvent
	if err := c.BodyParser(&event); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	if event.Type == "user.created" || event.Type == "user.updated" {
		email := ""
		if len(event.Data.EmailAddresses) > 0 {
			email = event.Data.EmailAddresses[0].EmailAddress
		}

		name := strings.TrimSpace(strings.TrimSpace(event.Data.FirstName) + " " + strings.TrimSpace(event.Data.LastName))
		if name == "" {
			name = email
		}

		_, err := ac.upsertUser(syncInput{
			ExternalID:   event.Data.ID,
			Email:        email,
			Name:         name,
			ProfileImage: event.Data.ImageURL,
		})
		if err != nil {
			return utils.InternalServerError(c, "Webhook processing failed")
		}
	}

	return c.JSON(fiber.Map{"received": true})
}

// upsertUser is the single reconciliation path for external identity
// events: one conditional insert instead of a find-create retry loop.
func (ac *AuthController) upsertUser(input syncInput) (*models.User, error) {
	assignments := []string{"email", "name", "updated_at"}
	if input.ProfileImage != "" {
		assignments = append(assignments, "profile_image")
	}

	user := models.User{
		ExternalID:   input.ExternalID,
		Email:        strings.ToLower(strings.TrimSpace(input.Email)),
		Name:         strings.TrimSpace(input.Name),
		ProfileImage: input.ProfileImage,
		Role:         "student",
	}

	err := ac.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "external_id"}},
		DoUpdates: clause.AssignmentColumns(assignments),
	}).Create(&user).Error
	if err != nil {
		return nil, err
	}

	// Re-read so the caller sees the stored row, including the role of
	// a pre-existing user.
	var stored models.User
	if err := ac.DB.Where("external_id = ?", input.ExternalID).First(&stored).Error; err != nil {
		return nil, err
	}
	return &stored, nil
}
