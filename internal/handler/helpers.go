package handler

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/acadvisor/acadvisor/internal/dto"
	"github.com/acadvisor/acadvisor/internal/middleware"
	apperrors "github.com/acadvisor/acadvisor/internal/pkg/errors"
)

// errorResponse writes err as a JSON error body with the status it maps to
func errorResponse(c *fiber.Ctx, err error) error {
	body := dto.ErrorResponse{
		Code:    apperrors.CodeInternal,
		Message: "an unexpected error occurred",
	}
	status := apperrors.GetStatusCode(err)

	if appErr := apperrors.GetAppError(err); appErr != nil {
		body.Code = appErr.Code
		body.Message = appErr.Message
		body.Details = appErr.Details
	} else if fe, ok := err.(*fiber.Error); ok {
		status = fe.Code
		body.Code = codeForStatus(fe.Code)
		body.Message = fe.Message
	}
	body.Error = http.StatusText(status)

	return c.Status(status).JSON(body)
}

func codeForStatus(status int) string {
	switch status {
	case fiber.StatusNotFound:
		return apperrors.CodeNotFound
	case fiber.StatusTooManyRequests:
		return apperrors.CodeRateLimited
	case fiber.StatusBadRequest, fiber.StatusUnprocessableEntity, fiber.StatusRequestEntityTooLarge:
		return apperrors.CodeInvalidInput
	default:
		return apperrors.CodeInternal
	}
}

// ErrorHandler is the fiber error handler for the whole app. Domain errors
// are logged at warn level; anything that maps to a 5xx is logged as an error
// and, when reportServerErrors is set, captured by Sentry.
func ErrorHandler(logger *zap.Logger, reportServerErrors bool) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := apperrors.GetStatusCode(err)
		if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
		}

		fields := []zap.Field{
			zap.Int("status", status),
			zap.Error(err),
			zap.String("path", c.Path()),
			zap.String("method", c.Method()),
			zap.String("request_id", middleware.GetRequestID(c)),
		}
		if status >= fiber.StatusInternalServerError {
			logger.Error("request error", fields...)
			if reportServerErrors {
				middleware.CaptureError(c, err)
			}
		} else {
			logger.Warn("request rejected", fields...)
		}

		return errorResponse(c, err)
	}
}
