package test

import (
	"net/http"
	"strings"
	"testing"
	"time"
)

func TestRegister(t *testing.T) {
	env := newTestEnv()

	status, result := doJSON(t, env.App, http.MethodPost, "/auth/register", "", map[string]string{
		"username": "alice",
		"email":    "Alice@Example.com",
		"password": "secret123",
	})
	if status != http.StatusCreated {
		t.Fatalf("Expected status %d but got %d (%v)", http.StatusCreated, status, result)
	}
	data := result["data"].(map[string]interface{})
	user := data["user"].(map[string]interface{})
	if user["email"] != "alice@example.com" {
		t.Errorf("Expected normalized email, got %v", user["email"])
	}
	if _, exposed := user["password"]; exposed {
		t.Errorf("Password material must never appear in responses")
	}

	// Same username again: 400 and no second account.
	status, _ = doJSON(t, env.App, http.MethodPost, "/auth/register", "", map[string]string{
		"username": "alice",
		"email":    "other@example.com",
		"password": "secret123",
	})
	if status != http.StatusBadRequest {
		t.Errorf("Expected status %d for duplicate username but got %d", http.StatusBadRequest, status)
	}
}

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv()

	bad := []map[string]string{
		{"username": "al", "email": "a@example.com", "password": "secret123"},
		{"username": "alice", "email": "not-an-email", "password": "secret123"},
		{"username": "alice", "email": "a@example.com", "password": "123"},
		{"username": "alice", "email": "a@example.com"},
	}
	for _, body := range bad {
		status, _ := doJSON(t, env.App, http.MethodPost, "/auth/register", "", body)
		if status != http.StatusBadRequest {
			t.Errorf("Expected status %d for %v but got %d", http.StatusBadRequest, body, status)
		}
	}
}

func TestLogin(t *testing.T) {
	env := newTestEnv()
	registerUser(t, env, "alice")

	// By username.
	status, result := doJSON(t, env.App, http.MethodPost, "/auth/login", "", map[string]string{
		"username": "alice",
		"password": "secret123",
	})
	if status != http.StatusOK {
		t.Fatalf("Expected status %d but got %d (%v)", http.StatusOK, status, result)
	}
	data := result["data"].(map[string]interface{})
	if data["access_token"] == nil || data["refresh_token"] == nil {
		t.Errorf("Expected token pair in login response")
	}

	// By email: the identifier field doubles for both.
	status, _ = doJSON(t, env.App, http.MethodPost, "/auth/login", "", map[string]string{
		"username": "alice@example.com",
		"password": "secret123",
	})
	if status != http.StatusOK {
		t.Errorf("Expected status %d logging in by email but got %d", http.StatusOK, status)
	}
}

func TestLoginFailureIsOpaque(t *testing.T) {
	env := newTestEnv()
	registerUser(t, env, "alice")

	statusWrongPass, wrongPass := doJSON(t, env.App, http.MethodPost, "/auth/login", "", map[string]string{
		"username": "alice", "password": "wrongpass",
	})
	statusUnknown, unknown := doJSON(t, env.App, http.MethodPost, "/auth/login", "", map[string]string{
		"username": "nobody", "password": "secret123",
	})

	if statusWrongPass != http.StatusUnauthorized || statusUnknown != http.StatusUnauthorized {
		t.Fatalf("Expected 401 for both failures, got %d and %d", statusWrongPass, statusUnknown)
	}
	if wrongPass["message"] != unknown["message"] {
		t.Errorf("Failure responses must be indistinguishable: %v vs %v", wrongPass["message"], unknown["message"])
	}
}

func TestRefresh(t *testing.T) {
	env := newTestEnv()
	access, refresh, _ := registerUser(t, env, "alice")

	status, result := doJSON(t, env.App, http.MethodPost, "/auth/refresh", "", map[string]string{
		"refresh_token": refresh,
	})
	if status != http.StatusOK {
		t.Fatalf("Expected status %d but got %d (%v)", http.StatusOK, status, result)
	}
	newAccess := result["data"].(map[string]interface{})["access_token"].(string)

	// The minted token works at a protected endpoint.
	status, _ = doJSON(t, env.App, http.MethodGet, "/auth/profile", newAccess, nil)
	if status != http.StatusOK {
		t.Errorf("Expected refreshed token to be accepted, got %d", status)
	}

	// An access token is not a refresh token.
	status, _ = doJSON(t, env.App, http.MethodPost, "/auth/refresh", "", map[string]string{
		"refresh_token": access,
	})
	if status != http.StatusUnauthorized {
		t.Errorf("Expected status %d refreshing with an access token but got %d", http.StatusUnauthorized, status)
	}

	status, _ = doJSON(t, env.App, http.MethodPost, "/auth/refresh", "", map[string]string{
		"refresh_token": "garbage",
	})
	if status != http.StatusUnauthorized {
		t.Errorf("Expected status %d for a garbage refresh token but got %d", http.StatusUnauthorized, status)
	}
}

func TestProfile(t *testing.T) {
	env := newTestEnv()
	access, _, id := registerUser(t, env, "alice")

	status, result := doJSON(t, env.App, http.MethodGet, "/auth/profile", access, nil)
	if status != http.StatusOK {
		t.Fatalf("Expected status %d but got %d (%v)", http.StatusOK, status, result)
	}
	data := result["data"].(map[string]interface{})
	if data["id"] != id || data["username"] != "alice" {
		t.Errorf("Unexpected profile payload: %v", data)
	}

	status, _ = doJSON(t, env.App, http.MethodGet, "/auth/profile", "", nil)
	if status != http.StatusUnauthorized {
		t.Errorf("Expected status %d without a token but got %d", http.StatusUnauthorized, status)
	}
}

func TestPasswordResetFlow(t *testing.T) {
	env := newTestEnv()
	registerUser(t, env, "alice")

	// Unknown and known addresses get the same generic answer.
	statusUnknown, unknown := doJSON(t, env.App, http.MethodPost, "/auth/request-password-reset", "", map[string]string{
		"email": "ghost@example.com",
	})
	statusKnown, known := doJSON(t, env.App, http.MethodPost, "/auth/request-password-reset", "", map[string]string{
		"email": "alice@example.com",
	})
	if statusUnknown != http.StatusOK || statusKnown != http.StatusOK {
		t.Fatalf("Expected 200 for both reset requests, got %d and %d", statusUnknown, statusKnown)
	}
	if unknown["message"] != known["message"] {
		t.Errorf("Reset responses must be indistinguishable: %v vs %v", unknown["message"], known["message"])
	}

	// Only the real account got mail; pull the token out of the link.
	var token string
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if msgs := env.Mailer.Messages(); len(msgs) > 0 {
			body := msgs[0].Body
			i := strings.Index(body, "token=")
			if i < 0 {
				t.Fatalf("No token in reset mail: %q", body)
			}
			token = body[i+len("token="):]
			if j := strings.IndexAny(token, " \n"); j >= 0 {
				token = token[:j]
			}
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if token == "" {
		t.Fatal("Reset mail never arrived")
	}
	if len(env.Mailer.Messages()) != 1 {
		t.Errorf("Expected exactly one mail, got %d", len(env.Mailer.Messages()))
	}

	// Weak replacement password is rejected without burning the token.
	status, _ := doJSON(t, env.App, http.MethodPost, "/auth/reset-password", "", map[string]string{
		"token": token, "new_password": "123",
	})
	if status != http.StatusBadRequest {
		t.Errorf("Expected status %d for a weak password but got %d", http.StatusBadRequest, status)
	}

	status, _ = doJSON(t, env.App, http.MethodPost, "/auth/reset-password", "", map[string]string{
		"token": token, "new_password": "newsecret456",
	})
	if status != http.StatusOK {
		t.Fatalf("Expected status %d consuming the token but got %d", http.StatusOK, status)
	}

	// New password works, old one does not.
	status, _ = doJSON(t, env.App, http.MethodPost, "/auth/login", "", map[string]string{
		"username": "alice", "password": "newsecret456",
	})
	if status != http.StatusOK {
		t.Errorf("Expected login with the new password to succeed, got %d", status)
	}
	status, _ = doJSON(t, env.App, http.MethodPost, "/auth/login", "", map[string]string{
		"username": "alice", "password": "secret123",
	})
	if status != http.StatusUnauthorized {
		t.Errorf("Expected the old password to be rejected, got %d", status)
	}

	// The token is single-use.
	status, _ = doJSON(t, env.App, http.MethodPost, "/auth/reset-password", "", map[string]string{
		"token": token, "new_password": "thirdsecret789",
	})
	if status != http.StatusBadRequest {
		t.Errorf("Expected status %d reusing the token but got %d", http.StatusBadRequest, status)
	}
}
