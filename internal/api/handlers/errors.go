package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/campus-buddy/backend/internal/complaints"
	"github.com/campus-buddy/backend/pkg/logger"
)

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

// serviceError maps complaint service errors to a status code. Unexpected
// errors are logged and reported as fallback.
func serviceError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, complaints.ErrInvalidInput):
		msg := strings.TrimPrefix(err.Error(), complaints.ErrInvalidInput.Error()+": ")
		return badRequest(c, msg)
	case errors.Is(err, complaints.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You can only change your own complaints"})
	case errors.Is(err, complaints.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Complaint not found"})
	}

	logger.Ctx(c.UserContext()).Error(fallback, zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": fallback})
}

func complaintID(c *fiber.Ctx) (int64, bool) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, false
	}
	return int64(id), true
}
