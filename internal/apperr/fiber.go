package apperr

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandler renders every error as the JSON envelope
// {"error": code, "message": ...}. Persistence and other unexpected
// failures become an opaque 500.
func ErrorHandler(c *fiber.Ctx, err error) error {
	if e, ok := As(err); ok {
		return c.Status(e.Status).JSON(fiber.Map{"error": e.Code, "message": e.Message})
	}

	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{"error": codeForStatus(fe.Code), "message": fe.Message})
	}

	log.Printf("unexpected error: %v", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error":   CodeServer,
		"message": "internal server error",
	})
}

func codeForStatus(status int) string {
	switch status {
	case fiber.StatusBadRequest:
		return CodeValidation
	case fiber.StatusUnauthorized:
		return "UNAUTHORIZED"
	case fiber.StatusForbidden:
		return CodeAccessDenied
	case fiber.StatusNotFound:
		return CodeNotFound
	case fiber.StatusGone:
		return CodeGone
	default:
		return CodeServer
	}
}
