package tasks

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"monstager/internal/domain"
	"monstager/internal/models"
	"monstager/internal/store"
)

const (
	DefaultPriority = "medium"
	DefaultStatus   = "To Do"
)

// validPriority is the closed enumeration; status stays free-form on purpose.
func validPriority(priority string) bool {
	switch priority {
	case "low", "medium", "high":
		return true
	default:
		return false
	}
}

// parseDueDate accepts RFC 3339 (which covers the trailing-Z form) and a
// zone-less ISO stamp interpreted as UTC.
func parseDueDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), nil
	}
	return time.Parse("2006-01-02T15:04:05", value)
}

// Service is the task manager: validated CRUD scoped to the owning account.
type Service struct {
	store store.Store
	now   func() time.Time
}

func NewService(s store.Store) *Service {
	return &Service{store: s, now: time.Now}
}

// CreateInput is the task-add request after JSON decoding; zero values mean
// the field was omitted.
type CreateInput struct {
	Text     string
	Priority string
	Status   string
	DueDate  string
}

// Patch holds a partial update; nil means the field is untouched.
type Patch struct {
	Text      *string
	Priority  *string
	Status    *string
	Completed *bool
	DueDate   *string
}

func (s *Service) List(ctx context.Context, accountID string) ([]models.Task, error) {
	return s.store.TasksByAccount(ctx, accountID)
}

func (s *Service) Get(ctx context.Context, accountID, taskID string) (*models.Task, error) {
	return s.store.TaskByID(ctx, accountID, taskID)
}

func (s *Service) Create(ctx context.Context, accountID string, in CreateInput) (*models.Task, error) {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, domain.Invalid("task", "cannot be empty")
	}

	priority := in.Priority
	if priority == "" {
		priority = DefaultPriority
	}
	if !validPriority(priority) {
		return nil, domain.Invalid("priority", "must be one of low, medium, high")
	}

	status := in.Status
	if status == "" {
		status = DefaultStatus
	}

	task := &models.Task{
		ID:        uuid.NewString(),
		AccountID: accountID,
		Text:      text,
		Priority:  priority,
		Status:    status,
		CreatedAt: s.now().UTC(),
	}
	if in.DueDate != "" {
		due, err := parseDueDate(in.DueDate)
		if err != nil {
			return nil, domain.Invalid("dueDate", "invalid date format")
		}
		task.DueDate = &due
	}

	if err := s.store.CreateTask(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// Update merges patch into the stored task and re-validates the result before
// anything is written, so a failed validation leaves the record untouched.
// The ownership check is part of the lookup: a foreign task is ErrNotFound.
func (s *Service) Update(ctx context.Context, accountID, taskID string, patch Patch) (*models.Task, error) {
	task, err := s.store.TaskByID(ctx, accountID, taskID)
	if err != nil {
		return nil, err
	}

	if patch.Text != nil {
		task.Text = strings.TrimSpace(*patch.Text)
	}
	if patch.Priority != nil {
		task.Priority = *patch.Priority
	}
	if patch.Status != nil {
		task.Status = *patch.Status
	}
	if patch.Completed != nil {
		task.Completed = *patch.Completed
	}
	if patch.DueDate != nil {
		if *patch.DueDate == "" {
			task.DueDate = nil
		} else {
			due, err := parseDueDate(*patch.DueDate)
			if err != nil {
				return nil, domain.Invalid("dueDate", "invalid date format")
			}
			task.DueDate = &due
		}
	}

	if task.Text == "" {
		return nil, domain.Invalid("task", "cannot be empty")
	}
	if !validPriority(task.Priority) {
		return nil, domain.Invalid("priority", "must be one of low, medium, high")
	}

	if err := s.store.UpdateTask(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *Service) Delete(ctx context.Context, accountID, taskID string) error {
	return s.store.DeleteTask(ctx, accountID, taskID)
}
