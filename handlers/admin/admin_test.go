package admin

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"xmasbingo/middleware"
	"xmasbingo/models"
	"xmasbingo/services"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testAdminPassword = "sleigh-all-day"

func newAdminApp(t *testing.T) (*fiber.App, *services.BingoService) {
	t.Helper()
	t.Setenv("JWT_SECRET", strings.Repeat("0123456789abcdef", 4))
	t.Setenv("ADMIN_PASSWORD", testAdminPassword)
	t.Setenv("ADMIN_PASSWORD_HASH", "")

	users := services.NewMemUserStore()
	svc := services.NewBingoService(services.NewMemGroupStore(), users, services.NewMemSubmissionStore(users), services.NewMemBlobStore())
	InitAdminHandlers(svc)

	app := fiber.New()
	grp := app.Group("/api/groups/:name/admin")
	grp.Post("/login", Login)

	protected := grp.Group("")
	protected.Use(middleware.AdminAuthMiddleware)
	protected.Get("/verify", VerifyToken)
	protected.Get("/submissions", GetChallengeSubmissions)
	protected.Put("/submissions/:id/approve", ApproveSubmission)
	protected.Put("/submissions/:id/reject", RejectSubmission)
	return app, svc
}

func request(t *testing.T, app *fiber.App, method, path, token string, body any) (int, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var parsed map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&parsed))
	return resp.StatusCode, parsed
}

func login(t *testing.T, app *fiber.App, group string) string {
	t.Helper()
	status, body := request(t, app, "POST", "/api/groups/"+group+"/admin/login", "", fiber.Map{"password": testAdminPassword})
	require.Equal(t, 200, status)
	return body["token"].(string)
}

// seedChallenge creates a group, a player and one pending challenge
// submission, returning the submission id.
func seedChallenge(t *testing.T, svc *services.BingoService, group, username string) uint {
	t.Helper()
	if _, err := svc.GetGroup(group); err != nil {
		_, err = svc.CreateGroup(group)
		require.NoError(t, err)
	}
	user, err := svc.RegisterPlayer(group, username)
	require.NoError(t, err)
	sub, err := svc.CreateSubmission(user.ID, 7, services.Answer{FileURL: "https://blobs.test/bingo-uploads/cookie.jpg"})
	require.NoError(t, err)
	require.Equal(t, models.StatusPending, sub.ApprovalStatus)
	return sub.ID
}

func TestLogin(t *testing.T) {
	app, svc := newAdminApp(t)
	_, err := svc.CreateGroup("family")
	require.NoError(t, err)

	status, _ := request(t, app, "POST", "/api/groups/family/admin/login", "", fiber.Map{"password": ""})
	assert.Equal(t, 400, status)

	status, _ = request(t, app, "POST", "/api/groups/family/admin/login", "", fiber.Map{"password": "wrong"})
	assert.Equal(t, 401, status)

	status, _ = request(t, app, "POST", "/api/groups/nowhere/admin/login", "", fiber.Map{"password": testAdminPassword})
	assert.Equal(t, 404, status)

	status, body := request(t, app, "POST", "/api/groups/family/admin/login", "", fiber.Map{"password": testAdminPassword})
	require.Equal(t, 200, status)
	assert.Equal(t, "family", body["group"])
	assert.NotEmpty(t, body["token"])
}

func TestLoginBcryptHash(t *testing.T) {
	app, svc := newAdminApp(t)
	_, err := svc.CreateGroup("family")
	require.NoError(t, err)

	hash, err := bcrypt.GenerateFromPassword([]byte("hashed-secret"), bcrypt.MinCost)
	require.NoError(t, err)
	t.Setenv("ADMIN_PASSWORD_HASH", string(hash))

	// The hash takes precedence over the plaintext variable.
	status, _ := request(t, app, "POST", "/api/groups/family/admin/login", "", fiber.Map{"password": testAdminPassword})
	assert.Equal(t, 401, status)

	status, _ = request(t, app, "POST", "/api/groups/family/admin/login", "", fiber.Map{"password": "hashed-secret"})
	assert.Equal(t, 200, status)
}

func TestVerifyToken(t *testing.T) {
	app, svc := newAdminApp(t)
	_, err := svc.CreateGroup("family")
	require.NoError(t, err)
	token := login(t, app, "family")

	status, body := request(t, app, "GET", "/api/groups/family/admin/verify", token, nil)
	require.Equal(t, 200, status)
	assert.Equal(t, true, body["valid"])
	assert.Equal(t, "family", body["group"])
}

func TestAuthRequired(t *testing.T) {
	app, svc := newAdminApp(t)
	_, err := svc.CreateGroup("family")
	require.NoError(t, err)

	status, _ := request(t, app, "GET", "/api/groups/family/admin/verify", "", nil)
	assert.Equal(t, 401, status)

	status, _ = request(t, app, "GET", "/api/groups/family/admin/verify", "not-a-jwt", nil)
	assert.Equal(t, 401, status)
}

func TestTokenScopedToGroup(t *testing.T) {
	app, svc := newAdminApp(t)
	_, err := svc.CreateGroup("family")
	require.NoError(t, err)
	_, err = svc.CreateGroup("office")
	require.NoError(t, err)

	token := login(t, app, "family")
	status, body := request(t, app, "GET", "/api/groups/office/admin/verify", token, nil)
	assert.Equal(t, 403, status)
	assert.Contains(t, body["error"], "not valid for this group")
}

func TestReviewFlow(t *testing.T) {
	app, svc := newAdminApp(t)
	subID := seedChallenge(t, svc, "family", "alice")
	token := login(t, app, "family")

	// Pending queue has the one challenge.
	status, body := request(t, app, "GET", "/api/groups/family/admin/submissions", token, nil)
	require.Equal(t, 200, status)
	assert.Equal(t, float64(1), body["count"])

	status, body = request(t, app, "PUT", fmt.Sprintf("/api/groups/family/admin/submissions/%d/approve", subID), token, nil)
	require.Equal(t, 200, status)
	sub := body["submission"].(map[string]any)
	assert.Equal(t, string(models.StatusApproved), sub["approval_status"])
	assert.Equal(t, "admin:family", sub["approved_by"])

	status, body = request(t, app, "GET", "/api/groups/family/admin/submissions?status=pending", token, nil)
	require.Equal(t, 200, status)
	assert.Equal(t, float64(0), body["count"])

	// Revoke the approval.
	status, body = request(t, app, "PUT", fmt.Sprintf("/api/groups/family/admin/submissions/%d/reject", subID), token, nil)
	require.Equal(t, 200, status)
	sub = body["submission"].(map[string]any)
	assert.Equal(t, string(models.StatusRejected), sub["approval_status"])

	status, body = request(t, app, "GET", "/api/groups/family/admin/submissions?status=bogus", token, nil)
	assert.Equal(t, 400, status)
	assert.Contains(t, body["error"], "bogus")
}

func TestCrossGroupSubmissionHidden(t *testing.T) {
	app, svc := newAdminApp(t)
	_, err := svc.CreateGroup("family")
	require.NoError(t, err)
	subID := seedChallenge(t, svc, "office", "bob")

	token := login(t, app, "family")
	status, _ := request(t, app, "PUT", fmt.Sprintf("/api/groups/family/admin/submissions/%d/approve", subID), token, nil)
	assert.Equal(t, 404, status)

	// The submission is untouched.
	sub, err := svc.Submission(subID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, sub.ApprovalStatus)
}

func TestApproveMissingSubmission(t *testing.T) {
	app, svc := newAdminApp(t)
	_, err := svc.CreateGroup("family")
	require.NoError(t, err)
	token := login(t, app, "family")

	status, _ := request(t, app, "PUT", "/api/groups/family/admin/submissions/999/approve", token, nil)
	assert.Equal(t, 404, status)
}
