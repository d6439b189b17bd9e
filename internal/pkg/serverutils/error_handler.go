package serverutils

import (
	"errors"

	"project-echo-be/internal/pkg/logger"
	"project-echo-be/pkg/orchestrator"
	"project-echo-be/pkg/persona"
	"project-echo-be/pkg/session"

	"github.com/gofiber/fiber/v2"
)

// StatusFor maps an error returned by a handler to an HTTP status.
func StatusFor(err error) int {
	var fiberErr *fiber.Error
	var validationErr *ValidationError

	switch {
	case errors.As(err, &fiberErr):
		return fiberErr.Code
	case errors.As(err, &validationErr):
		return fiber.StatusBadRequest
	case errors.Is(err, session.ErrSessionNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, session.ErrTurnInProgress):
		return fiber.StatusConflict
	case errors.Is(err, persona.ErrUnknownPersona),
		errors.Is(err, orchestrator.ErrEmptyPrompt):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

// ErrorHandlerMiddleware turns handler errors into the JSON envelope.
// Internal errors are logged and hidden from the client.
func ErrorHandlerMiddleware(log logger.ILogger) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		code := StatusFor(err)
		message := err.Error()
		if code == fiber.StatusInternalServerError {
			log.Error("http", "unhandled error", map[string]interface{}{
				"method": ctx.Method(),
				"path":   ctx.Path(),
				"error":  err.Error(),
			})
			message = "Internal server error"
		}

		var validationErr *ValidationError
		if errors.As(err, &validationErr) {
			return ctx.Status(code).JSON(ErrorResponseWithData(code, "Validation failed", validationErr.Fields))
		}
		return ctx.Status(code).JSON(ErrorResponse(code, message))
	}
}
