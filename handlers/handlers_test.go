package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"strings"
	"testing"

	"xmasbingo/models"
	"xmasbingo/services"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testGamePassword = "jingle-2025"

func newTestApp(t *testing.T) (*fiber.App, *services.MemBlobStore) {
	t.Helper()
	t.Setenv("GAME_PASSWORD", testGamePassword)

	users := services.NewMemUserStore()
	blobs := services.NewMemBlobStore()
	svc := services.NewBingoService(services.NewMemGroupStore(), users, services.NewMemSubmissionStore(users), blobs)
	InitHandlers(svc, blobs)

	app := fiber.New()
	api := app.Group("/api")
	api.Get("/tasks", GetTasks)
	api.Post("/groups", CreateGroup)
	api.Get("/groups/:name", GetGroup)
	api.Get("/groups/:name/feed", GetFeed)
	api.Post("/groups/:name/players", RegisterPlayer)
	api.Get("/groups/:name/players/:username/board", GetBoard)
	api.Get("/groups/:name/players/:username/gallery", GetGallery)
	api.Post("/groups/:name/players/:username/uploads", UploadProof)
	api.Post("/groups/:name/players/:username/submissions", CreateSubmission)
	api.Delete("/groups/:name/players/:username/submissions/:id", RemoveSubmission)
	return app, blobs
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any) (int, map[string]any) {
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

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var parsed map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&parsed))
	return resp.StatusCode, parsed
}

func seedPlayer(t *testing.T, app *fiber.App, group, username string) {
	t.Helper()
	status, _ := doJSON(t, app, "POST", "/api/groups", fiber.Map{"name": group, "password": testGamePassword})
	if status != 201 && status != 409 {
		t.Fatalf("seed group: unexpected status %d", status)
	}
	status, _ = doJSON(t, app, "POST", "/api/groups/"+group+"/players", fiber.Map{"username": username})
	require.Equal(t, 201, status)
}

func TestGetTasks(t *testing.T) {
	app, _ := newTestApp(t)

	status, body := doJSON(t, app, "GET", "/api/tasks", nil)
	require.Equal(t, 200, status)
	assert.Len(t, body["tasks"], models.BoardSize)
}

func TestCreateGroupPasswordGate(t *testing.T) {
	app, _ := newTestApp(t)

	status, body := doJSON(t, app, "POST", "/api/groups", fiber.Map{"name": "family", "password": "wrong"})
	assert.Equal(t, 401, status)
	assert.Contains(t, body["error"], "Incorrect password")

	status, body = doJSON(t, app, "POST", "/api/groups", fiber.Map{"name": "family", "password": testGamePassword})
	require.Equal(t, 201, status)
	group := body["group"].(map[string]any)
	assert.Equal(t, "family", group["name"])

	// Taken name.
	status, body = doJSON(t, app, "POST", "/api/groups", fiber.Map{"name": "family", "password": testGamePassword})
	assert.Equal(t, 409, status)
	assert.Contains(t, body["error"], "already taken")

	// Bad charset.
	status, _ = doJSON(t, app, "POST", "/api/groups", fiber.Map{"name": "the smiths", "password": testGamePassword})
	assert.Equal(t, 400, status)
}

func TestRegisterPlayer(t *testing.T) {
	app, _ := newTestApp(t)
	seedPlayer(t, app, "family", "alice")

	status, _ := doJSON(t, app, "POST", "/api/groups/family/players", fiber.Map{"username": "alice"})
	assert.Equal(t, 409, status)

	status, _ = doJSON(t, app, "POST", "/api/groups/family/players", fiber.Map{"username": "x"})
	assert.Equal(t, 400, status)

	status, _ = doJSON(t, app, "POST", "/api/groups/nowhere/players", fiber.Map{"username": "alice"})
	assert.Equal(t, 404, status)
}

func TestBoardAndProgress(t *testing.T) {
	app, blobs := newTestApp(t)
	seedPlayer(t, app, "family", "alice")

	status, body := doJSON(t, app, "POST", "/api/groups/family/players/alice/submissions", fiber.Map{
		"square_index": 0,
		"answer":       fiber.Map{"file_url": blobs.BaseURL + "/family/alice/0_1.jpg"},
	})
	require.Equal(t, 201, status)
	sub := body["submission"].(map[string]any)
	assert.Equal(t, string(models.StatusApproved), sub["approval_status"])

	status, body = doJSON(t, app, "GET", "/api/groups/family/players/alice/board", nil)
	require.Equal(t, 200, status)

	squares := body["squares"].([]any)
	require.Len(t, squares, models.BoardSize)
	first := squares[0].(map[string]any)
	assert.NotNil(t, first["submission"])
	second := squares[1].(map[string]any)
	assert.Nil(t, second["submission"])

	progress := body["progress"].(map[string]any)
	assert.Equal(t, float64(1), progress["approvedCount"])
	assert.Equal(t, float64(models.BoardSize), progress["total"])
}

func TestCreateSubmissionConflict(t *testing.T) {
	app, blobs := newTestApp(t)
	seedPlayer(t, app, "family", "alice")

	payload := fiber.Map{
		"square_index": 0,
		"answer":       fiber.Map{"file_url": blobs.BaseURL + "/family/alice/0_1.jpg"},
	}
	status, _ := doJSON(t, app, "POST", "/api/groups/family/players/alice/submissions", payload)
	require.Equal(t, 201, status)

	status, body := doJSON(t, app, "POST", "/api/groups/family/players/alice/submissions", payload)
	assert.Equal(t, 409, status)
	assert.Contains(t, body["error"], "Remove it first")
}

func TestUploadProof(t *testing.T) {
	app, blobs := newTestApp(t)
	seedPlayer(t, app, "family", "alice")

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("square_index", "0"))
	fw, err := w.CreateFormFile("file", "pic.jpg")
	require.NoError(t, err)
	_, err = fw.Write([]byte("jpeg bytes"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/api/groups/family/players/alice/uploads", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, 201, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	url := body["url"].(string)
	assert.True(t, strings.HasPrefix(url, blobs.BaseURL+"/family/alice/0_"))
	assert.True(t, strings.HasSuffix(url, ".jpg"))
	assert.Len(t, blobs.Objects, 1)
}

func TestUploadProofValidation(t *testing.T) {
	app, _ := newTestApp(t)
	seedPlayer(t, app, "family", "alice")

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("square_index", "99"))
	fw, err := w.CreateFormFile("file", "pic.jpg")
	require.NoError(t, err)
	_, err = fw.Write([]byte("jpeg"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/api/groups/family/players/alice/uploads", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, 400, resp.StatusCode)
}

func TestRemoveSubmissionOwnership(t *testing.T) {
	app, blobs := newTestApp(t)
	seedPlayer(t, app, "family", "alice")
	status, _ := doJSON(t, app, "POST", "/api/groups/family/players", fiber.Map{"username": "bob"})
	require.Equal(t, 201, status)

	status, body := doJSON(t, app, "POST", "/api/groups/family/players/alice/submissions", fiber.Map{
		"square_index": 0,
		"answer":       fiber.Map{"file_url": blobs.BaseURL + "/family/alice/0_1.jpg"},
	})
	require.Equal(t, 201, status)
	subID := body["submission"].(map[string]any)["id"].(float64)

	status, body = doJSON(t, app, "DELETE", fmt.Sprintf("/api/groups/family/players/bob/submissions/%d", int(subID)), nil)
	assert.Equal(t, 403, status)
	assert.Contains(t, body["error"], "your own")

	status, _ = doJSON(t, app, "DELETE", fmt.Sprintf("/api/groups/family/players/alice/submissions/%d", int(subID)), nil)
	assert.Equal(t, 200, status)

	status, _ = doJSON(t, app, "DELETE", "/api/groups/family/players/alice/submissions/notanid", nil)
	assert.Equal(t, 400, status)
}

func TestGetFeedEndpoint(t *testing.T) {
	app, blobs := newTestApp(t)
	seedPlayer(t, app, "family", "alice")

	// One media submission and one private attestation.
	status, _ := doJSON(t, app, "POST", "/api/groups/family/players/alice/submissions", fiber.Map{
		"square_index": 0,
		"answer":       fiber.Map{"file_url": blobs.BaseURL + "/family/alice/0_1.jpg"},
	})
	require.Equal(t, 201, status)
	status, _ = doJSON(t, app, "POST", "/api/groups/family/players/alice/submissions", fiber.Map{
		"square_index": 12,
		"answer":       fiber.Map{"acknowledged": true},
	})
	require.Equal(t, 201, status)

	status, body := doJSON(t, app, "GET", "/api/groups/family/feed", nil)
	require.Equal(t, 200, status)

	items := body["items"].([]any)
	require.Len(t, items, 2)
	for _, raw := range items {
		item := raw.(map[string]any)
		assert.Equal(t, "alice", item["username"])
		if item["submission_type"] == string(models.TypeAttestation) {
			_, hasURL := item["file_url"]
			assert.False(t, hasURL)
		}
	}

	status, _ = doJSON(t, app, "GET", "/api/groups/nowhere/feed", nil)
	assert.Equal(t, 404, status)
}

func TestGalleryExcludesAttestations(t *testing.T) {
	app, blobs := newTestApp(t)
	seedPlayer(t, app, "family", "alice")

	status, _ := doJSON(t, app, "POST", "/api/groups/family/players/alice/submissions", fiber.Map{
		"square_index": 0,
		"answer":       fiber.Map{"file_url": blobs.BaseURL + "/family/alice/0_1.jpg"},
	})
	require.Equal(t, 201, status)
	status, _ = doJSON(t, app, "POST", "/api/groups/family/players/alice/submissions", fiber.Map{
		"square_index": 12,
		"answer":       fiber.Map{"acknowledged": true},
	})
	require.Equal(t, 201, status)

	status, body := doJSON(t, app, "GET", "/api/groups/family/players/alice/gallery", nil)
	require.Equal(t, 200, status)

	subs := body["submissions"].([]any)
	require.Len(t, subs, 1)
	assert.Equal(t, float64(0), subs[0].(map[string]any)["square_index"])
}
