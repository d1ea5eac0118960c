package store

import (
	"context"

	"monstager/internal/models"
)

// Store is the storage collaborator behind the credential service, the reset
// flow and the task manager. Implementations must enforce uniqueness of
// username, email and reset-token value at the storage boundary, and must make
// ConsumeResetToken atomic: the password change and the used flag commit
// together or not at all.
//
// Lookup errors are domain.ErrNotFound; uniqueness violations are wrapped
// domain.ErrConflict.
type Store interface {
	CreateAccount(ctx context.Context, account *models.Account) error
	AccountByID(ctx context.Context, id string) (*models.Account, error)
	AccountByUsername(ctx context.Context, username string) (*models.Account, error)
	AccountByEmail(ctx context.Context, email string) (*models.Account, error)
	// DeleteAccount removes the account together with its tasks and reset
	// tokens: ownership is exclusive, children do not outlive the aggregate.
	DeleteAccount(ctx context.Context, id string) error

	CreateTask(ctx context.Context, task *models.Task) error
	TasksByAccount(ctx context.Context, accountID string) ([]models.Task, error)
	// TaskByID scopes the lookup to the owner: a task that exists but belongs
	// to another account yields domain.ErrNotFound.
	TaskByID(ctx context.Context, accountID, taskID string) (*models.Task, error)
	UpdateTask(ctx context.Context, task *models.Task) error
	DeleteTask(ctx context.Context, accountID, taskID string) error

	CreateResetToken(ctx context.Context, token *models.PasswordResetToken) error
	// UnusedResetToken finds a token record by secret value with used=false.
	UnusedResetToken(ctx context.Context, token string) (*models.PasswordResetToken, error)
	// ConsumeResetToken sets the account's password hash and marks the token
	// used in a single transaction.
	ConsumeResetToken(ctx context.Context, tokenID, accountID, passwordHash string) error
}
