// handlers/handlers.go - Shared handler state and error mapping
package handlers

import (
	"errors"

	"xmasbingo/models"
	"xmasbingo/services"
	"xmasbingo/storage"

	"github.com/gofiber/fiber/v2"
)

var (
	bingoService *services.BingoService
	blobStore    storage.BlobStore
)

// InitHandlers wires the engine and blob store into the handler
// package. Must run before any route is registered.
func InitHandlers(svc *services.BingoService, blobs storage.BlobStore) {
	bingoService = svc
	blobStore = blobs
}

// respondError maps the typed error taxonomy onto HTTP statuses. The
// message is safe to show: stores wrap driver errors before they get
// here.
func respondError(c *fiber.Ctx, err error) error {
	var (
		validationErr *models.ValidationError
		duplicateErr  *models.DuplicateSubmissionError
		conflictErr   *models.ConflictError
		notFoundErr   *models.NotFoundError
		transportErr  *models.TransportError
	)

	switch {
	case errors.As(err, &validationErr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": validationErr.Reason})
	case errors.As(err, &duplicateErr):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"success": false, "error": "This square already has a submission. Remove it first to resubmit."})
	case errors.As(err, &conflictErr):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"success": false, "error": conflictErr.Error() + ". Please choose another one."})
	case errors.As(err, &notFoundErr):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "error": notFoundErr.Error() + ", refresh and try again"})
	case errors.As(err, &transportErr):
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"success": false, "error": "Storage unavailable. Please try again."})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": "An unexpected error occurred. Please try again."})
	}
}

// GetTasks returns the static 25-square catalog.
// GET /api/tasks
func GetTasks(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success": true,
		"tasks":   models.Tasks,
	})
}
