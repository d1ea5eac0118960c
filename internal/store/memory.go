package store

import (
	"context"
	"fmt"
	"sync"

	"monstager/internal/domain"
	"monstager/internal/models"
)

// Memory is an in-process Store used in tests and as a mail-less dev backend.
// A single mutex stands in for the row-level constraints Postgres gives us:
// uniqueness checks and the reset consumption happen under one critical
// section, so the concurrency guarantees match the SQL implementation.
type Memory struct {
	mu          sync.Mutex
	accounts    map[string]*models.Account
	tasks       map[string]*models.Task
	taskOrder   []string
	resetTokens map[string]*models.PasswordResetToken
}

func NewMemory() *Memory {
	return &Memory{
		accounts:    make(map[string]*models.Account),
		tasks:       make(map[string]*models.Task),
		resetTokens: make(map[string]*models.PasswordResetToken),
	}
}

func (m *Memory) CreateAccount(ctx context.Context, account *models.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.accounts {
		if a.Username == account.Username {
			return fmt.Errorf("username: %w", domain.ErrConflict)
		}
		if a.Email == account.Email {
			return fmt.Errorf("email: %w", domain.ErrConflict)
		}
	}
	cp := *account
	m.accounts[account.ID] = &cp
	return nil
}

func (m *Memory) AccountByID(ctx context.Context, id string) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *Memory) AccountByUsername(ctx context.Context, username string) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.accounts {
		if a.Username == username {
			cp := *a
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *Memory) AccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.accounts {
		if a.Email == email {
			cp := *a
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *Memory) DeleteAccount(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.accounts, id)
	// Cascade: the aggregate owns its tasks and reset tokens.
	remaining := m.taskOrder[:0]
	for _, taskID := range m.taskOrder {
		if m.tasks[taskID].AccountID == id {
			delete(m.tasks, taskID)
			continue
		}
		remaining = append(remaining, taskID)
	}
	m.taskOrder = remaining
	for tokenID, t := range m.resetTokens {
		if t.AccountID == id {
			delete(m.resetTokens, tokenID)
		}
	}
	return nil
}

func (m *Memory) CreateTask(ctx context.Context, task *models.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *task
	m.tasks[task.ID] = &cp
	m.taskOrder = append(m.taskOrder, task.ID)
	return nil
}

func (m *Memory) TasksByAccount(ctx context.Context, accountID string) ([]models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tasks := []models.Task{}
	for _, id := range m.taskOrder {
		if t := m.tasks[id]; t.AccountID == accountID {
			tasks = append(tasks, *t)
		}
	}
	return tasks, nil
}

func (m *Memory) TaskByID(ctx context.Context, accountID, taskID string) (*models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[taskID]
	if !ok || t.AccountID != accountID {
		return nil, domain.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *Memory) UpdateTask(ctx context.Context, task *models.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[task.ID]
	if !ok || t.AccountID != task.AccountID {
		return domain.ErrNotFound
	}
	cp := *task
	m.tasks[task.ID] = &cp
	return nil
}

func (m *Memory) DeleteTask(ctx context.Context, accountID, taskID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[taskID]
	if !ok || t.AccountID != accountID {
		return domain.ErrNotFound
	}
	delete(m.tasks, taskID)
	for i, id := range m.taskOrder {
		if id == taskID {
			m.taskOrder = append(m.taskOrder[:i], m.taskOrder[i+1:]...)
			break
		}
	}
	return nil
}

func (m *Memory) CreateResetToken(ctx context.Context, token *models.PasswordResetToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.resetTokens {
		if t.Token == token.Token {
			return fmt.Errorf("token: %w", domain.ErrConflict)
		}
	}
	cp := *token
	m.resetTokens[token.ID] = &cp
	return nil
}

func (m *Memory) UnusedResetToken(ctx context.Context, token string) (*models.PasswordResetToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.resetTokens {
		if t.Token == token && !t.Used {
			cp := *t
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *Memory) ConsumeResetToken(ctx context.Context, tokenID, accountID, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.resetTokens[tokenID]
	if !ok || t.Used {
		return domain.ErrInvalidResetToken
	}
	a, ok := m.accounts[accountID]
	if !ok {
		return domain.ErrNotFound
	}
	t.Used = true
	a.PasswordHash = passwordHash
	return nil
}
