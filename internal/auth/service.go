package auth

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"monstager/internal/domain"
	"monstager/internal/mailer"
	"monstager/internal/models"
	"monstager/internal/store"
)

// MinPasswordLength applies to registration and to reset consumption alike.
const MinPasswordLength = 6

const resetTokenTTL = time.Hour

var (
	usernameRe = regexp.MustCompile(`^[A-Za-z0-9_]{3,20}$`)
	emailRe    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

// Service owns the credential lifecycle: registration, login and the
// password-reset flow.
type Service struct {
	store  store.Store
	mailer mailer.Mailer
	log    *zap.Logger

	// baseURL is the public frontend address embedded in reset links.
	baseURL string

	// now is swapped out in tests to exercise token expiry.
	now func() time.Time
}

func NewService(s store.Store, m mailer.Mailer, baseURL string, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		store:   s,
		mailer:  m,
		log:     log,
		baseURL: baseURL,
		now:     time.Now,
	}
}

// HashPassword wraps bcrypt with its default cost.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword reports whether password matches hash. A malformed hash is a
// mismatch, never an error.
func VerifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// NormalizeEmail trims surrounding whitespace and lower-cases the address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return domain.Invalid("password", fmt.Sprintf("must be at least %d characters long", MinPasswordLength))
	}
	return nil
}

// Register validates the triple, hashes the password and persists the account.
// Uniqueness is left to the store's constraints so concurrent duplicates race
// there, not here.
func (s *Service) Register(ctx context.Context, username, email, password string) (*models.Account, error) {
	email = NormalizeEmail(email)

	if !usernameRe.MatchString(username) {
		return nil, domain.Invalid("username", "must be 3-20 characters long and contain only letters, numbers, and underscores")
	}
	if !emailRe.MatchString(email) {
		return nil, domain.Invalid("email", "invalid email format")
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	account := &models.Account{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.store.CreateAccount(ctx, account); err != nil {
		return nil, err
	}

	s.log.Info("account registered", zap.String("account_id", account.ID))
	return account, nil
}

// Authenticate resolves identifier to an account by email when it contains
// "@", by username otherwise, and verifies the password. The error is the
// same whether the identifier is unknown or the password wrong.
func (s *Service) Authenticate(ctx context.Context, identifier, password string) (*models.Account, error) {
	var account *models.Account
	var err error
	if strings.Contains(identifier, "@") {
		account, err = s.store.AccountByEmail(ctx, NormalizeEmail(identifier))
	} else {
		account, err = s.store.AccountByUsername(ctx, identifier)
	}
	if err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	if !VerifyPassword(password, account.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}
	return account, nil
}

// Profile returns the account for a resolved identity.
func (s *Service) Profile(ctx context.Context, accountID string) (*models.Account, error) {
	return s.store.AccountByID(ctx, accountID)
}
