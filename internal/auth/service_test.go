package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"monstager/internal/domain"
	"monstager/internal/mailer"
	"monstager/internal/store"
)

func newTestService() (*Service, *store.Memory, *mailer.Recorder) {
	st := store.NewMemory()
	rec := &mailer.Recorder{}
	return NewService(st, rec, "http://localhost:3000", nil), st, rec
}

func TestRegisterAndAuthenticate(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	account, err := svc.Register(ctx, "alice", "  Alice@Example.COM ", "secret123")
	require.NoError(t, err)
	assert.NotEmpty(t, account.ID)
	assert.Equal(t, "alice", account.Username)
	assert.Equal(t, "alice@example.com", account.Email, "email should be trimmed and lower-cased")
	assert.NotEqual(t, "secret123", account.PasswordHash)

	// By username.
	got, err := svc.Authenticate(ctx, "alice", "secret123")
	require.NoError(t, err)
	assert.Equal(t, account.ID, got.ID)

	// By email, any casing.
	got, err = svc.Authenticate(ctx, "ALICE@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, account.ID, got.ID)
}

func TestRegisterValidation(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	cases := []struct {
		name     string
		username string
		email    string
		password string
	}{
		{"short username", "ab", "a@example.com", "secret123"},
		{"long username", "abcdefghijklmnopqrstu", "a@example.com", "secret123"},
		{"username with symbol", "ali ce!", "a@example.com", "secret123"},
		{"bad email", "alice", "not-an-email", "secret123"},
		{"short password", "alice", "a@example.com", "12345"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tc.username, tc.email, tc.password)
			assert.True(t, domain.IsValidation(err), "expected validation error, got %v", err)
		})
	}

	// Nothing was persisted.
	_, err := svc.Authenticate(ctx, "alice", "secret123")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestRegisterDuplicate(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "alice@example.com", "secret123")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "alice", "other@example.com", "secret123")
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = svc.Register(ctx, "alice2", "alice@example.com", "secret123")
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestAuthenticateOpaqueFailure(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "alice@example.com", "secret123")
	require.NoError(t, err)

	// Wrong password and unknown identifier produce the identical error.
	_, wrongPass := svc.Authenticate(ctx, "alice", "wrongpass")
	_, unknownUser := svc.Authenticate(ctx, "nosuchuser", "secret123")
	_, unknownEmail := svc.Authenticate(ctx, "ghost@example.com", "secret123")

	assert.ErrorIs(t, wrongPass, domain.ErrInvalidCredentials)
	assert.Equal(t, wrongPass, unknownUser)
	assert.Equal(t, wrongPass, unknownEmail)
}

func TestVerifyPasswordMalformedHash(t *testing.T) {
	assert.False(t, VerifyPassword("secret123", "not-a-bcrypt-hash"))
	assert.False(t, VerifyPassword("secret123", ""))
}

func TestHashPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("secret123")
	require.NoError(t, err)
	assert.True(t, VerifyPassword("secret123", hash))
	assert.False(t, VerifyPassword("secret124", hash))
}

func TestProfileUnknownAccount(t *testing.T) {
	svc, _, _ := newTestService()
	_, err := svc.Profile(context.Background(), "no-such-id")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}
