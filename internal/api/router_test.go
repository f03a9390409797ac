package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gatherly/server/internal/api"
	"github.com/gatherly/server/internal/config"
	"github.com/gatherly/server/internal/storage/sqlite"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type testServer struct {
	handler    http.Handler
	uploadsDir string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, sqlite.MigrateUp(db))

	uploadsDir := t.TempDir()
	cfg := config.Config{
		Auth: config.AuthConfig{
			JWTSecret:  "router-test-secret",
			JWTExpiry:  time.Hour,
			Issuer:     "gatherly",
			BcryptCost: bcrypt.MinCost,
		},
		Uploads: config.UploadsConfig{
			Dir:      uploadsDir,
			MaxBytes: 1 << 20,
		},
		Environment: "test",
	}

	handler, err := api.NewRouter(cfg, zerolog.Nop(), db)
	require.NoError(t, err)

	return &testServer{handler: handler, uploadsDir: uploadsDir}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
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

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var payload map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload), "body: %s", rec.Body.String())
	return payload
}

func (s *testServer) signup(t *testing.T, username, email string) string {
	t.Helper()
	rec := s.do(t, "POST", "/api/v1/users/signup", "", map[string]string{
		"username": username,
		"email":    email,
		"password": "hunter22",
	})
	require.Equal(t, http.StatusCreated, rec.Code, "signup body: %s", rec.Body.String())
	return decodeBody(t, rec)["token"].(string)
}

func (s *testServer) createEvent(t *testing.T, token, title string) int64 {
	t.Helper()
	rec := s.do(t, "POST", "/api/v1/events", token, map[string]string{
		"title": title,
		"date":  "2026-10-01T19:00:00Z",
	})
	require.Equal(t, http.StatusCreated, rec.Code, "create body: %s", rec.Body.String())
	event := decodeBody(t, rec)["event"].(map[string]any)
	return int64(event["id"].(float64))
}

func TestSignupLoginMe(t *testing.T) {
	server := newTestServer(t)

	token := server.signup(t, "ada", "ada@example.com")
	require.NotEmpty(t, token)

	rec := server.do(t, "POST", "/api/v1/users/login", "", map[string]string{
		"email":    "ada@example.com",
		"password": "hunter22",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	payload := decodeBody(t, rec)
	user := payload["user"].(map[string]any)
	assert.Equal(t, "ada", user["username"])
	assert.NotContains(t, rec.Body.String(), "password")

	rec = server.do(t, "GET", "/api/v1/users/me", payload["token"].(string), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	me := decodeBody(t, rec)["user"].(map[string]any)
	assert.Equal(t, "ada@example.com", me["email"])
}

func TestSignupRejections(t *testing.T) {
	server := newTestServer(t)
	server.signup(t, "ada", "ada@example.com")

	rec := server.do(t, "POST", "/api/v1/users/signup", "", map[string]string{
		"username": "impostor",
		"email":    "ada@example.com",
		"password": "password",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = server.do(t, "POST", "/api/v1/users/signup", "", map[string]string{
		"username": "  ",
		"email":    "new@example.com",
		"password": "x",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	errs := decodeBody(t, rec)["errors"].(map[string]any)
	assert.Contains(t, errs, "username")
	assert.Contains(t, errs, "password")

	rec = server.do(t, "POST", "/api/v1/users/signup", "", map[string]string{
		"username": "carol",
		"email":    "not-an-email",
		"password": "hunter22",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	errs = decodeBody(t, rec)["errors"].(map[string]any)
	assert.Contains(t, errs, "email")
}

func TestLoginWrongPassword(t *testing.T) {
	server := newTestServer(t)
	server.signup(t, "ada", "ada@example.com")

	rec := server.do(t, "POST", "/api/v1/users/login", "", map[string]string{
		"email":    "ada@example.com",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/problem+json")
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	server := newTestServer(t)

	for _, route := range []struct{ method, path string }{
		{"GET", "/api/v1/users/me"},
		{"GET", "/api/v1/events"},
		{"POST", "/api/v1/events"},
		{"PUT", "/api/v1/events/1"},
		{"DELETE", "/api/v1/events/1"},
		{"POST", "/api/v1/events/1/register"},
		{"GET", "/api/v1/events/1/registrations"},
		{"GET", "/api/v1/users/me/registrations"},
		{"DELETE", "/api/v1/registrations/1"},
	} {
		rec := server.do(t, route.method, route.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", route.method, route.path)
	}
}

func TestEventLifecycle(t *testing.T) {
	server := newTestServer(t)
	ada := server.signup(t, "ada", "ada@example.com")
	bob := server.signup(t, "bob", "bob@example.com")

	eventID := server.createEvent(t, ada, "gopher meetup")

	// Single event is publicly readable.
	rec := server.do(t, "GET", fmt.Sprintf("/api/v1/events/%d", eventID), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	event := decodeBody(t, rec)["event"].(map[string]any)
	assert.Equal(t, "gopher meetup", event["title"])

	// mine=true scopes the list to the caller.
	server.createEvent(t, bob, "bob's party")
	rec = server.do(t, "GET", "/api/v1/events?mine=true", ada, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), decodeBody(t, rec)["total"])

	rec = server.do(t, "GET", "/api/v1/events", ada, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(2), decodeBody(t, rec)["total"])

	// Only the owner may update.
	update := map[string]string{"title": "renamed", "date": "2026-10-02T19:00:00Z"}
	rec = server.do(t, "PUT", fmt.Sprintf("/api/v1/events/%d", eventID), bob, update)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = server.do(t, "PUT", fmt.Sprintf("/api/v1/events/%d", eventID), ada, update)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "renamed", decodeBody(t, rec)["event"].(map[string]any)["title"])

	// Missing event is 404 before the ownership gate.
	rec = server.do(t, "PUT", "/api/v1/events/9999", ada, update)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Only the owner may delete.
	rec = server.do(t, "DELETE", fmt.Sprintf("/api/v1/events/%d", eventID), bob, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = server.do(t, "DELETE", fmt.Sprintf("/api/v1/events/%d", eventID), ada, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = server.do(t, "GET", fmt.Sprintf("/api/v1/events/%d", eventID), "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEventImageUploadAndCleanup(t *testing.T) {
	server := newTestServer(t)
	ada := server.signup(t, "ada", "ada@example.com")

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	require.NoError(t, writer.WriteField("title", "with poster"))
	require.NoError(t, writer.WriteField("date", "2026-10-01"))
	part, err := writer.CreatePart(map[string][]string{
		"Content-Disposition": {`form-data; name="image"; filename="poster.png"`},
		"Content-Type":        {"image/png"},
	})
	require.NoError(t, err)
	_, err = part.Write([]byte("png-bytes"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", "/api/v1/events", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+ada)
	rec := httptest.NewRecorder()
	server.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, "body: %s", rec.Body.String())

	event := decodeBody(t, rec)["event"].(map[string]any)
	image := event["image"].(string)
	require.NotEmpty(t, image)

	stored, err := os.ReadFile(filepath.Join(server.uploadsDir, image))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(stored))

	// The image is served back over HTTP.
	rec = server.do(t, "GET", "/uploads/"+image, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "png-bytes", rec.Body.String())

	// Deleting the event releases the file.
	eventID := int64(event["id"].(float64))
	rec = server.do(t, "DELETE", fmt.Sprintf("/api/v1/events/%d", eventID), ada, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	_, err = os.Stat(filepath.Join(server.uploadsDir, image))
	assert.True(t, os.IsNotExist(err))
}

func TestRegistrationLifecycle(t *testing.T) {
	server := newTestServer(t)
	ada := server.signup(t, "ada", "ada@example.com")
	bob := server.signup(t, "bob", "bob@example.com")
	eventID := server.createEvent(t, ada, "gopher meetup")

	registerPath := fmt.Sprintf("/api/v1/events/%d/register", eventID)

	rec := server.do(t, "POST", registerPath, bob, nil)
	require.Equal(t, http.StatusCreated, rec.Code, "body: %s", rec.Body.String())
	registration := decodeBody(t, rec)["registration"].(map[string]any)
	registrationID := int64(registration["id"].(float64))
	assert.Equal(t, "registered", registration["status"])

	// Registering twice conflicts.
	rec = server.do(t, "POST", registerPath, bob, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Registering for a missing event is 404.
	rec = server.do(t, "POST", "/api/v1/events/9999/register", bob, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Attendee list carries user fields.
	rec = server.do(t, "GET", fmt.Sprintf("/api/v1/events/%d/registrations", eventID), ada, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	attendees := decodeBody(t, rec)
	assert.Equal(t, float64(1), attendees["total"])
	first := attendees["attendees"].([]any)[0].(map[string]any)
	assert.Equal(t, "bob", first["username"])

	// The registrant sees the event fields on their own list.
	rec = server.do(t, "GET", "/api/v1/users/me/registrations", bob, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	mine := decodeBody(t, rec)["registrations"].([]any)[0].(map[string]any)
	assert.Equal(t, "gopher meetup", mine["eventTitle"])

	// Only the registrant may cancel.
	cancelPath := fmt.Sprintf("/api/v1/registrations/%d", registrationID)
	rec = server.do(t, "DELETE", cancelPath, ada, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = server.do(t, "DELETE", cancelPath, bob, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = server.do(t, "DELETE", cancelPath, bob, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Cancellation freed the slot.
	rec = server.do(t, "POST", registerPath, bob, nil)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestMethodNotAllowed(t *testing.T) {
	server := newTestServer(t)

	rec := server.do(t, "PATCH", "/api/v1/events", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Contains(t, rec.Header().Get("Allow"), "GET")
	assert.Contains(t, rec.Header().Get("Allow"), "POST")
}

func TestHealthAndMetricsEndpoints(t *testing.T) {
	server := newTestServer(t)

	for _, path := range []string{"/healthz", "/readyz", "/metrics"} {
		rec := server.do(t, "GET", path, "", nil)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}
