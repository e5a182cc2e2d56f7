package dto

import (
	"github.com/gofiber/fiber/v2"

	apperrors "github.com/acadvisor/acadvisor/internal/pkg/errors"
	"github.com/acadvisor/acadvisor/internal/validator"
)

// ParseAndValidate parses the request body into v and validates it.
// Failures come back as INVALID_INPUT errors with one detail per field.
func ParseAndValidate(c *fiber.Ctx, v any) error {
	if err := c.BodyParser(v); err != nil {
		return apperrors.InvalidInput("invalid request body").WithError(err)
	}

	if err := validator.Validate(v); err != nil {
		appErr := apperrors.InvalidInput("request validation failed")
		if fields, ok := err.(validator.ValidationErrors); ok {
			for _, f := range fields {
				appErr.WithDetail(f.Field, f.Message)
			}
		}
		return appErr
	}

	return nil
}
