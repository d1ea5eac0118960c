package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"monstager/internal/domain"
	"monstager/internal/models"
)

// Postgres implements Store on database/sql with the lib/pq driver.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// conflictErr maps a unique-violation (23505) onto domain.ErrConflict, naming
// the offending field from the constraint.
func conflictErr(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		field := "record"
		switch pqErr.Constraint {
		case "accounts_username_key":
			field = "username"
		case "accounts_email_key":
			field = "email"
		case "password_reset_tokens_token_key":
			field = "token"
		}
		return fmt.Errorf("%s: %w", field, domain.ErrConflict)
	}
	return err
}

func (p *Postgres) CreateAccount(ctx context.Context, account *models.Account) error {
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO accounts (id, username, email, password, created_at) VALUES ($1, $2, $3, $4, $5)`,
		account.ID, account.Username, account.Email, account.PasswordHash, account.CreatedAt,
	)
	if err != nil {
		return conflictErr(err)
	}
	return nil
}

func (p *Postgres) accountBy(ctx context.Context, where, arg string) (*models.Account, error) {
	var a models.Account
	err := p.db.QueryRowContext(ctx,
		`SELECT id, username, email, password, created_at FROM accounts WHERE `+where+` = $1`, arg,
	).Scan(&a.ID, &a.Username, &a.Email, &a.PasswordHash, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (p *Postgres) AccountByID(ctx context.Context, id string) (*models.Account, error) {
	return p.accountBy(ctx, "id", id)
}

func (p *Postgres) AccountByUsername(ctx context.Context, username string) (*models.Account, error) {
	return p.accountBy(ctx, "username", username)
}

func (p *Postgres) AccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	return p.accountBy(ctx, "email", email)
}

func (p *Postgres) DeleteAccount(ctx context.Context, id string) error {
	// Tasks and reset tokens go with it via ON DELETE CASCADE.
	res, err := p.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (p *Postgres) CreateTask(ctx context.Context, task *models.Task) error {
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO tasks (id, account_id, task, priority, status, completed, due_date, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		task.ID, task.AccountID, task.Text, task.Priority, task.Status, task.Completed, task.DueDate, task.CreatedAt,
	)
	return err
}

func (p *Postgres) TasksByAccount(ctx context.Context, accountID string) ([]models.Task, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT id, account_id, task, priority, status, completed, due_date, created_at
		 FROM tasks WHERE account_id = $1 ORDER BY created_at`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		var t models.Task
		var due sql.NullTime
		if err := rows.Scan(&t.ID, &t.AccountID, &t.Text, &t.Priority, &t.Status, &t.Completed, &due, &t.CreatedAt); err != nil {
			return nil, err
		}
		if due.Valid {
			d := due.Time
			t.DueDate = &d
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (p *Postgres) TaskByID(ctx context.Context, accountID, taskID string) (*models.Task, error) {
	var t models.Task
	var due sql.NullTime
	err := p.db.QueryRowContext(ctx,
		`SELECT id, account_id, task, priority, status, completed, due_date, created_at
		 FROM tasks WHERE id = $1 AND account_id = $2`, taskID, accountID,
	).Scan(&t.ID, &t.AccountID, &t.Text, &t.Priority, &t.Status, &t.Completed, &due, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if due.Valid {
		d := due.Time
		t.DueDate = &d
	}
	return &t, nil
}

func (p *Postgres) UpdateTask(ctx context.Context, task *models.Task) error {
	res, err := p.db.ExecContext(ctx,
		`UPDATE tasks SET task = $1, priority = $2, status = $3, completed = $4, due_date = $5
		 WHERE id = $6 AND account_id = $7`,
		task.Text, task.Priority, task.Status, task.Completed, task.DueDate, task.ID, task.AccountID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (p *Postgres) DeleteTask(ctx context.Context, accountID, taskID string) error {
	res, err := p.db.ExecContext(ctx,
		`DELETE FROM tasks WHERE id = $1 AND account_id = $2`, taskID, accountID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (p *Postgres) CreateResetToken(ctx context.Context, token *models.PasswordResetToken) error {
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO password_reset_tokens (id, account_id, token, expires_at, used, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		token.ID, token.AccountID, token.Token, token.ExpiresAt, token.Used, token.CreatedAt,
	)
	if err != nil {
		return conflictErr(err)
	}
	return nil
}

func (p *Postgres) UnusedResetToken(ctx context.Context, token string) (*models.PasswordResetToken, error) {
	var t models.PasswordResetToken
	err := p.db.QueryRowContext(ctx,
		`SELECT id, account_id, token, expires_at, used, created_at
		 FROM password_reset_tokens WHERE token = $1 AND used = FALSE`, token,
	).Scan(&t.ID, &t.AccountID, &t.Token, &t.ExpiresAt, &t.Used, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (p *Postgres) ConsumeResetToken(ctx context.Context, tokenID, accountID, passwordHash string) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Guard used = FALSE inside the transaction so two concurrent consumers
	// of the same token cannot both succeed.
	res, err := tx.ExecContext(ctx,
		`UPDATE password_reset_tokens SET used = TRUE WHERE id = $1 AND used = FALSE`, tokenID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrInvalidResetToken
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE accounts SET password = $1 WHERE id = $2`, passwordHash, accountID); err != nil {
		return err
	}

	return tx.Commit()
}
