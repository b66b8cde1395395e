// handlers/submissions.go - Proof upload and submission lifecycle
package handlers

import (
	"context"
	"strconv"

	"xmasbingo/models"
	"xmasbingo/services"
	"xmasbingo/storage"

	"github.com/gofiber/fiber/v2"
)

// UploadProof stores a proof file and returns its public URL. The
// client submits the square afterwards with that URL; if the upload
// times out nothing is recorded and the square stays open.
// POST /api/groups/:name/players/:username/uploads (multipart)
func UploadProof(c *fiber.Ctx) error {
	groupName := c.Params("name")
	username := c.Params("username")

	// Make sure the player exists before accepting bytes.
	if _, err := bingoService.GetPlayer(groupName, username); err != nil {
		return respondError(c, err)
	}

	squareIndex, err := strconv.Atoi(c.FormValue("square_index"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "square_index is required"})
	}
	if _, ok := models.TaskAt(squareIndex); !ok {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "square_index is out of range"})
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "A file is required"})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Could not read uploaded file"})
	}
	defer file.Close()

	key := storage.ObjectKey(groupName, username, squareIndex, fileHeader.Filename)
	url, err := blobStore.Upload(context.Background(), key, file, fileHeader.Size)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(201).JSON(fiber.Map{
		"success": true,
		"url":     url,
	})
}

type CreateSubmissionRequest struct {
	SquareIndex int             `json:"square_index"`
	Answer      services.Answer `json:"answer"`
}

// CreateSubmission records a proof for one square. Non-challenge
// squares are approved immediately and pushed to the live feed;
// challenge squares wait for the admin.
// POST /api/groups/:name/players/:username/submissions
func CreateSubmission(c *fiber.Ctx) error {
	user, err := bingoService.GetPlayer(c.Params("name"), c.Params("username"))
	if err != nil {
		return respondError(c, err)
	}

	var req CreateSubmissionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid request body"})
	}

	sub, err := bingoService.CreateSubmission(user.ID, req.SquareIndex, req.Answer)
	if err != nil {
		return respondError(c, err)
	}

	if sub.ApprovalStatus == models.StatusApproved {
		sub.User = user
		PublishApproved(user.GroupID, sub)
	}

	return c.Status(201).JSON(fiber.Map{
		"success":    true,
		"submission": sub,
	})
}

// RemoveSubmission deletes a player's own submission so the square
// can be redone. Blob cleanup is best-effort inside the engine.
// DELETE /api/groups/:name/players/:username/submissions/:id
func RemoveSubmission(c *fiber.Ctx) error {
	user, err := bingoService.GetPlayer(c.Params("name"), c.Params("username"))
	if err != nil {
		return respondError(c, err)
	}

	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid submission ID"})
	}

	sub, err := bingoService.Submission(uint(id))
	if err != nil {
		return respondError(c, err)
	}
	if sub.UserID != user.ID {
		return c.Status(403).JSON(fiber.Map{"success": false, "error": "You can only remove your own submissions"})
	}

	if err := bingoService.Remove(uint(id)); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Submission removed",
	})
}
