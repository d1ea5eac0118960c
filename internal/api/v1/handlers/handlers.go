package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"monstager/internal/domain"
	"monstager/pkg/logger"
)

func fail(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"message": message,
		"success": false,
		"status":  status,
	})
}

// serviceError maps the typed domain errors onto status codes. Anything
// unrecognized is logged and surfaced as a generic 500.
func serviceError(c *fiber.Ctx, err error) error {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		return fail(c, fiber.StatusBadRequest, ve.Error())
	case errors.Is(err, domain.ErrConflict):
		return fail(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrInvalidCredentials):
		return fail(c, fiber.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, domain.ErrNotFound):
		return fail(c, fiber.StatusNotFound, "Not found")
	case errors.Is(err, domain.ErrInvalidResetToken),
		errors.Is(err, domain.ErrExpiredResetToken):
		return fail(c, fiber.StatusBadRequest, err.Error())
	default:
		logger.ErrorLogger.Error("Unhandled service error", zap.Error(err))
		return fail(c, fiber.StatusInternalServerError, "Internal server error")
	}
}

func accountID(c *fiber.Ctx) string {
	id, _ := c.Locals("accountID").(string)
	return id
}
