package test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	v1 "monstager/internal/api/v1"
	"monstager/internal/api/v1/handlers"
	"monstager/internal/auth"
	"monstager/internal/mailer"
	"monstager/internal/middleware"
	"monstager/internal/store"
	"monstager/internal/tasks"
	"monstager/pkg/logger"
)

func TestMain(m *testing.M) {
	os.Setenv("GO_ENV", "test")
	logger.InitLoggers()
	code := m.Run()
	logger.SyncLoggers()
	os.Exit(code)
}

type testEnv struct {
	App    *fiber.App
	Store  *store.Memory
	Mailer *mailer.Recorder
	Issuer *auth.TokenIssuer
}

// newTestEnv builds the full HTTP stack over the in-memory store, so every
// endpoint test runs without Postgres, Redis or an SMTP server.
func newTestEnv() *testEnv {
	st := store.NewMemory()
	rec := &mailer.Recorder{}
	issuer := auth.NewTokenIssuer([]byte("test-secret"), time.Hour, 7*24*time.Hour)
	authService := auth.NewService(st, rec, "http://localhost:3000", nil)
	taskService := tasks.NewService(st)

	app := fiber.New()
	app.Use(middleware.ErrorHandler())
	v1.RegisterRoutes(app,
		handlers.NewAuthHandler(authService, issuer),
		handlers.NewTaskHandler(taskService, nil),
		issuer,
	)
	return &testEnv{App: app, Store: st, Mailer: rec, Issuer: issuer}
}

// doJSON performs one request and decodes the JSON response body.
func doJSON(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Error encoding request body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil && err != io.EOF {
		t.Fatalf("Error decoding response from %s %s: %v", method, path, err)
	}
	return resp.StatusCode, result
}

// registerUser registers a fresh user and returns the access token, refresh
// token and account id.
func registerUser(t *testing.T, env *testEnv, username string) (string, string, string) {
	t.Helper()

	status, result := doJSON(t, env.App, http.MethodPost, "/auth/register", "", map[string]string{
		"username": username,
		"email":    fmt.Sprintf("%s@example.com", username),
		"password": "secret123",
	})
	if status != http.StatusCreated {
		t.Fatalf("Expected status %d registering %s but got %d (%v)", http.StatusCreated, username, status, result)
	}
	data, ok := result["data"].(map[string]interface{})
	if !ok {
		t.Fatalf("Expected data field in register response")
	}
	access, _ := data["access_token"].(string)
	refresh, _ := data["refresh_token"].(string)
	user, _ := data["user"].(map[string]interface{})
	id, _ := user["id"].(string)
	if access == "" || refresh == "" || id == "" {
		t.Fatalf("Incomplete register response: %v", data)
	}
	return access, refresh, id
}
