package models

import "time"

type Account struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Task JSON field names follow the client contract: the task text is "task",
// the owner is "userId" and timestamps are camelCase.
type Task struct {
	ID        string     `json:"id"`
	AccountID string     `json:"userId"`
	Text      string     `json:"task"`
	Priority  string     `json:"priority"`
	Status    string     `json:"status"`
	Completed bool       `json:"completed"`
	DueDate   *time.Time `json:"dueDate,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

// PasswordResetToken is single-use and time-bounded. Token is the high-entropy
// secret mailed to the user; ID is the record identity.
type PasswordResetToken struct {
	ID        string    `json:"id"`
	AccountID string    `json:"user_id"`
	Token     string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
	Used      bool      `json:"used"`
	CreatedAt time.Time `json:"created_at"`
}

func (t *PasswordResetToken) IsExpired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
