package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"monstager/internal/domain"
	"monstager/internal/models"
)

func generateResetToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// RequestReset starts the reset flow for email. It succeeds whether or not the
// address matches an account, and the mail is sent fire-and-forget, so the
// caller can never distinguish registered from unregistered addresses.
func (s *Service) RequestReset(ctx context.Context, email string) error {
	account, err := s.store.AccountByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return err
	}

	secret, err := generateResetToken()
	if err != nil {
		return err
	}
	token := &models.PasswordResetToken{
		ID:        uuid.NewString(),
		AccountID: account.ID,
		Token:     secret,
		ExpiresAt: s.now().UTC().Add(resetTokenTTL),
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.CreateResetToken(ctx, token); err != nil {
		return err
	}

	link := fmt.Sprintf("%s/reset-password?token=%s", s.baseURL, secret)
	body := fmt.Sprintf("Hi %s,\n\nUse the link below to reset your password. It expires in 1 hour.\n\n%s\n\nIf you did not request this, you can ignore this email.\n", account.Username, link)
	go func() {
		if err := s.mailer.Send(account.Email, "Reset your password", body); err != nil {
			s.log.Error("reset email delivery failed", zap.Error(err), zap.String("account_id", account.ID))
		}
	}()

	s.log.Info("reset token issued", zap.String("account_id", account.ID))
	return nil
}

// ConsumeReset exchanges an unused, unexpired token for a new password. The
// password change and the used flag commit in one store transaction.
func (s *Service) ConsumeReset(ctx context.Context, token, newPassword string) error {
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	record, err := s.store.UnusedResetToken(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrInvalidResetToken
		}
		return err
	}
	if record.IsExpired(s.now()) {
		return domain.ErrExpiredResetToken
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.store.ConsumeResetToken(ctx, record.ID, record.AccountID, hash); err != nil {
		return err
	}

	s.log.Info("password reset", zap.String("account_id", record.AccountID))
	return nil
}
