// handlers/groups.go - Group registration and group page
package handlers

import (
	"crypto/subtle"
	"os"

	"xmasbingo/utils"

	"github.com/gofiber/fiber/v2"
)

type CreateGroupRequest struct {
	Name     string `json:"name" validate:"required,min=3,max=50,handle"`
	Password string `json:"password"`
}

// CreateGroup registers a new group. Creation is gated by the shared
// game password; the group itself is immutable once created.
// POST /api/groups
func CreateGroup(c *fiber.Ctx) error {
	var req CreateGroupRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid request body"})
	}

	gamePassword := os.Getenv("GAME_PASSWORD")
	if gamePassword == "" || subtle.ConstantTimeCompare([]byte(req.Password), []byte(gamePassword)) != 1 {
		return c.Status(401).JSON(fiber.Map{
			"success": false,
			"error":   "Incorrect password. You need the correct password to create a group.",
		})
	}

	if err := utils.ValidateStruct(&req); err != nil {
		return respondError(c, err)
	}

	group, err := bingoService.CreateGroup(req.Name)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(201).JSON(fiber.Map{
		"success": true,
		"group":   group,
	})
}

// GetGroup returns the group and its leaderboard: every player scored
// by approved squares, descending, ties in username order.
// GET /api/groups/:name
func GetGroup(c *fiber.Ctx) error {
	group, err := bingoService.GetGroup(c.Params("name"))
	if err != nil {
		return respondError(c, err)
	}

	leaderboard, err := bingoService.Leaderboard(group.ID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"success":     true,
		"group":       group,
		"leaderboard": leaderboard,
	})
}
