// handlers/admin/submissions.go - Challenge review panel
package admin

import (
	"errors"
	"strconv"

	"xmasbingo/handlers"
	"xmasbingo/models"

	"github.com/gofiber/fiber/v2"
)

// GetChallengeSubmissions lists the group's challenge submissions,
// newest first, optionally filtered by approval status.
// GET /api/groups/:name/admin/submissions?status=pending|approved|rejected|all
func GetChallengeSubmissions(c *fiber.Ctx) error {
	group, err := bingoService.GetGroup(c.Params("name"))
	if err != nil {
		return c.Status(404).JSON(fiber.Map{"success": false, "error": "Group not found"})
	}

	subs, err := bingoService.ChallengeSubmissions(group.ID, c.Query("status", "pending"))
	if err != nil {
		var validationErr *models.ValidationError
		if errors.As(err, &validationErr) {
			return c.Status(400).JSON(fiber.Map{"success": false, "error": validationErr.Reason})
		}
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to load submissions"})
	}

	return c.JSON(fiber.Map{
		"success":     true,
		"submissions": subs,
		"count":       len(subs),
	})
}

// ApproveSubmission approves a submission, including re-approving one
// that was rejected ("approve anyway").
// PUT /api/groups/:name/admin/submissions/:id/approve
func ApproveSubmission(c *fiber.Ctx) error {
	sub, ok := groupSubmission(c)
	if !ok {
		return nil
	}

	approved, err := bingoService.Approve(sub.ID, adminActor(c))
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to approve submission"})
	}

	if sub.User != nil {
		handlers.PublishApproved(sub.User.GroupID, approved)
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"message":    "Challenge approved",
		"submission": approved,
	})
}

// RejectSubmission rejects a submission, including revoking an
// earlier approval.
// PUT /api/groups/:name/admin/submissions/:id/reject
func RejectSubmission(c *fiber.Ctx) error {
	sub, ok := groupSubmission(c)
	if !ok {
		return nil
	}

	rejected, err := bingoService.Reject(sub.ID, adminActor(c))
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to reject submission"})
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"message":    "Challenge rejected",
		"submission": rejected,
	})
}

// groupSubmission resolves the :id submission and checks it belongs
// to the route's group, so a token for one group cannot touch
// another group's board. Writes the error response itself.
func groupSubmission(c *fiber.Ctx) (*models.Submission, bool) {
	group, err := bingoService.GetGroup(c.Params("name"))
	if err != nil {
		c.Status(404).JSON(fiber.Map{"success": false, "error": "Group not found"})
		return nil, false
	}

	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid submission ID"})
		return nil, false
	}

	sub, err := bingoService.Submission(uint(id))
	if err != nil {
		c.Status(404).JSON(fiber.Map{"success": false, "error": "Submission not found, refresh and try again"})
		return nil, false
	}
	if sub.User == nil || sub.User.GroupID != group.ID {
		c.Status(404).JSON(fiber.Map{"success": false, "error": "Submission not found, refresh and try again"})
		return nil, false
	}

	return sub, true
}

func adminActor(c *fiber.Ctx) string {
	if group, ok := c.Locals("adminGroup").(string); ok && group != "" {
		return "admin:" + group
	}
	return "admin"
}
