package middleware

import (
	"github.com/Atri9Ghosh/thinkplus/backend/config"
	"github.com/Atri9Ghosh/thinkplus/backend/models"
	"github.com/Atri9Ghosh/thinkplus/backend/utils"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Principal is the authenticated caller, resolved once per request and
// passed explicitly to handlers via Locals. Handlers never look roles
// up again.
type Principal struct {
	UserID     uint
	ExternalID string
	Email      string
	Role       string
}

const principalKey = "principal"

// GetPrincipal returns the principal attached by RequireAuth or
// OptionalAuth, or nil for anonymous requests.
func GetPrincipal(c *fiber.Ctx) *Principal {
	principal, _ := c.Locals(principalKey).(*Principal)
	return principal
}

// RequireAuth verifies the bearer token and resolves the internal user
// record for the token subject.
func RequireAuth(db *gorm.DB, cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sub, email, err := utils.ExtractSubjectFromToken(c, cfg)
		if err != nil {
			return utils.Unauthorized(c, err.Error())
		}

		var user models.User
		if err := db.Where("external_id = ?", sub).First(&user).Error; err != nil {
			return utils.Unauthorized(c, "Unknown user")
		}

		c.Locals(principalKey, &Principal{
			UserID:     user.ID,
			ExternalID: user.ExternalID,
			Email:      email,
			Role:       user.Role,
		})
		return c.Next()
	}
}

// OptionalAuth attaches a principal when a valid token is present but
// lets anonymous requests through.
func OptionalAuth(db *gorm.DB, cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sub, email, err := utils.ExtractSubjectFromToken(c, cfg)
		if err != nil {
			return c.Next()
		}

		var user models.User
		if err := db.Where("external_id = ?", sub).First(&user).Error; err != nil {
			return c.Next()
		}

		c.Locals(principalKey, &Principal{
			UserID:     user.ID,
			ExternalID: user.ExternalID,
			Email:      email,
			Role:       user.Role,
		})
		return c.Next()
	}
}

// RequireRole gates a route to the given roles. Must run after
// RequireAuth.
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal := GetPrincipal(c)
		if principal == nil {
			return utils.Unauthorized(c, "Unauthorized")
		}

		for _, role := range roles {
			if principal.Role == role {
				return c.Next()
			}
		}

		return utils.Forbidden(c, "Insufficient permissions")
	}
}
