// handlers/players.go - Player registration, board and gallery views
package handlers

import (
	"xmasbingo/models"
	"xmasbingo/utils"

	"github.com/gofiber/fiber/v2"
)

type RegisterPlayerRequest struct {
	Username string `json:"username" validate:"required,min=2,max=20,handle"`
}

// RegisterPlayer adds a player to a group. Usernames are unique per
// group; a clash surfaces as a conflict, not an error page.
// POST /api/groups/:name/players
func RegisterPlayer(c *fiber.Ctx) error {
	var req RegisterPlayerRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid request body"})
	}
	if err := utils.ValidateStruct(&req); err != nil {
		return respondError(c, err)
	}

	user, err := bingoService.RegisterPlayer(c.Params("name"), req.Username)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(201).JSON(fiber.Map{
		"success": true,
		"player":  user,
	})
}

type boardSquare struct {
	Index      int                `json:"index"`
	Task       models.Task        `json:"task"`
	Submission *models.Submission `json:"submission,omitempty"`
}

// GetBoard merges the static catalog with the player's submissions
// into the 25-square board, plus the approved-count progress.
// GET /api/groups/:name/players/:username/board
func GetBoard(c *fiber.Ctx) error {
	user, err := bingoService.GetPlayer(c.Params("name"), c.Params("username"))
	if err != nil {
		return respondError(c, err)
	}

	subs, err := bingoService.PlayerSubmissions(user.ID)
	if err != nil {
		return respondError(c, err)
	}

	squares := make([]boardSquare, models.BoardSize)
	for i := range squares {
		squares[i] = boardSquare{Index: i, Task: models.Tasks[i]}
	}
	for i := range subs {
		if sub := &subs[i]; sub.SquareIndex >= 0 && sub.SquareIndex < models.BoardSize {
			squares[sub.SquareIndex].Submission = sub
		}
	}

	progress, err := bingoService.Progress(user.ID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"player":   user,
		"squares":  squares,
		"progress": progress,
	})
}

// GetGallery returns only the player's media submissions, the way the
// public profile shows them. Attestations stay private to the board.
// GET /api/groups/:name/players/:username/gallery
func GetGallery(c *fiber.Ctx) error {
	user, err := bingoService.GetPlayer(c.Params("name"), c.Params("username"))
	if err != nil {
		return respondError(c, err)
	}

	subs, err := bingoService.PlayerSubmissions(user.ID)
	if err != nil {
		return respondError(c, err)
	}

	media := make([]models.Submission, 0, len(subs))
	for _, sub := range subs {
		if sub.SubmissionType != models.TypeAttestation && sub.FileURL != nil {
			media = append(media, sub)
		}
	}

	return c.JSON(fiber.Map{
		"success":     true,
		"player":      user,
		"submissions": media,
	})
}
