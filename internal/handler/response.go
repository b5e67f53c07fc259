package handler

import (
	"strconv"

	"go-leather-stock/pkg/apperror"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// getUserID returns the authenticated user's id set by RequireAuth.
func getUserID(c *fiber.Ctx) string {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return "system"
	}
	return userID
}

func parseID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, apperror.Validation("handler.parse_id", "invalid id %q", c.Params("id"))
	}
	return id, nil
}

func queryInt(c *fiber.Ctx, key string, fallback int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

// fail writes err with the status matching its kind. Internal errors are
// already logged by the service layer and are not echoed to the client.
func fail(c *fiber.Ctx, err error) error {
	switch apperror.KindOf(err) {
	case apperror.KindValidation:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": apperror.MessageOf(err)})
	case apperror.KindNotFound:
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": apperror.MessageOf(err)})
	case apperror.KindConflict:
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": apperror.MessageOf(err)})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
	}
}

func invalidJSON(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid JSON"})
}
