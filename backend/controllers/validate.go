package controllers

import (
	"errors"

	"github.com/Atri9Ghosh/thinkplus/backend/engine"
	"github.com/Atri9Ghosh/thinkplus/backend/utils"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// validationDetails flattens validator errors into field -> rule pairs
// for the response body.
func validationDetails(err error) map[string]string {
	details := make(map[string]string)

	var fieldErrors validator.ValidationErrors
	if errors.As(err, &fieldErrors) {
		for _, fieldError := range fieldErrors {
			details[fieldError.Field()] = fieldError.Tag()
		}
	}
	return details
}

// engineError maps engine failures onto the API error taxonomy.
func engineError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, engine.ErrCourseNotFound),
		errors.Is(err, engine.ErrTestNotFound),
		errors.Is(err, engine.ErrProgressNotFound),
		errors.Is(err, engine.ErrAttemptNotFound):
		return utils.NotFound(c, err.Error())
	case errors.Is(err, engine.ErrNotEnrolled):
		return utils.Forbidden(c, err.Error())
	case errors.Is(err, engine.ErrUnknownVideo),
		errors.Is(err, engine.ErrUnknownModule):
		return utils.BadRequest(c, err.Error())
	default:
		return utils.InternalServerError(c, "Could not query database")
	}
}
