package serverutils

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// AppError carries an HTTP status alongside a caller-facing message.
// Services return these; the error handler middleware maps them to JSON.
type AppError struct {
	Status  int
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

var ErrUnauthorized = &AppError{Status: fiber.StatusUnauthorized, Code: "UNAUTHORIZED", Message: "Unauthorized"}

func NewValidationError(message string) *AppError {
	return &AppError{Status: fiber.StatusBadRequest, Code: "VALIDATION", Message: message}
}

func NewNotFoundError(message string) *AppError {
	return &AppError{Status: fiber.StatusNotFound, Code: "NOT_FOUND", Message: message}
}

func NewForbiddenError(message string) *AppError {
	return &AppError{Status: fiber.StatusForbidden, Code: "FORBIDDEN", Message: message}
}

func NewConflictError(message string) *AppError {
	return &AppError{Status: fiber.StatusConflict, Code: "CONFLICT", Message: message}
}

func NewLimitExceededError(message string, used, limit int) *AppError {
	return &AppError{
		Status:  fiber.StatusTooManyRequests,
		Code:    "LIMIT_EXCEEDED",
		Message: message,
		Err:     fmt.Errorf("used %d of %d", used, limit),
	}
}

// NewUpstreamError wraps a completion-provider failure. Chat flows degrade
// to a fallback reply instead of surfacing this; it only reaches the client
// from endpoints where no fallback makes sense.
func NewUpstreamError(err error) *AppError {
	return &AppError{Status: fiber.StatusBadGateway, Code: "UPSTREAM", Message: "AI provider unavailable", Err: err}
}

// ErrorHandlerMiddleware converts returned errors into the JSON envelope
// used across the API. Unknown errors become opaque 500s.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var appErr *AppError
		if errors.As(err, &appErr) {
			return ctx.Status(appErr.Status).JSON(fiber.Map{
				"success": false,
				"code":    appErr.Code,
				"message": appErr.Message,
			})
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(fiber.Map{
				"success": false,
				"message": fiberErr.Message,
			})
		}

		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Internal server error",
		})
	}
}
