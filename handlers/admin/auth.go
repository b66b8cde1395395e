// handlers/admin/auth.go - Admin session tokens
package admin

import (
	"crypto/subtle"
	"os"
	"time"

	"xmasbingo/services"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var bingoService *services.BingoService

// InitAdminHandlers wires the engine into the admin handler package.
func InitAdminHandlers(svc *services.BingoService) {
	bingoService = svc
}

type LoginRequest struct {
	Password string `json:"password"`
}

type LoginResponse struct {
	Success   bool   `json:"success"`
	Token     string `json:"token"`
	Group     string `json:"group"`
	ExpiresAt int64  `json:"expires_at"`
}

// Login exchanges the admin password for a JWT scoped to one group.
// ADMIN_PASSWORD_HASH (bcrypt) is preferred; ADMIN_PASSWORD is the
// plaintext fallback.
// POST /api/groups/:name/admin/login
func Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid request body"})
	}
	if req.Password == "" {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Password is required"})
	}

	groupName := c.Params("name")
	if _, err := bingoService.GetGroup(groupName); err != nil {
		return c.Status(404).JSON(fiber.Map{"success": false, "error": "Group not found"})
	}

	if !checkAdminPassword(req.Password) {
		return c.Status(401).JSON(fiber.Map{"success": false, "error": "Incorrect password. Please try again."})
	}

	token, expiresAt, err := generateAdminToken(groupName)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to generate token"})
	}

	return c.JSON(LoginResponse{
		Success:   true,
		Token:     token,
		Group:     groupName,
		ExpiresAt: expiresAt,
	})
}

// VerifyToken reports the session the middleware already validated.
// GET /api/groups/:name/admin/verify
func VerifyToken(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"valid":    true,
		"group":    c.Locals("adminGroup"),
		"is_admin": c.Locals("isAdmin"),
	})
}

func checkAdminPassword(password string) bool {
	if hash := os.Getenv("ADMIN_PASSWORD_HASH"); hash != "" {
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
	}
	plain := os.Getenv("ADMIN_PASSWORD")
	if plain == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(password), []byte(plain)) == 1
}

func generateAdminToken(groupName string) (string, int64, error) {
	expiresAt := time.Now().Add(12 * time.Hour)

	claims := jwt.MapClaims{
		"jti":      uuid.New().String(),
		"group":    groupName,
		"is_admin": true,
		"iat":      time.Now().Unix(),
		"exp":      expiresAt.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(os.Getenv("JWT_SECRET")))
	if err != nil {
		return "", 0, err
	}
	return signed, expiresAt.Unix(), nil
}
