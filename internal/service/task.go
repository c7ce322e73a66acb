package service

import (
	"context"
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/BuzzLyutic/lifesync/internal/model"
	"github.com/BuzzLyutic/lifesync/internal/repo"
)

type TaskService struct {
	repo repo.TaskRepository
	now  Clock
}

func NewTaskService(repo repo.TaskRepository, now Clock) *TaskService {
	return &TaskService{repo: repo, now: now}
}

// Publish creates or overwrites a task outside of a device sync.
func (s *TaskService) Publish(ctx context.Context, owner string, t model.Task) (model.Task, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if err := validateTask(t); err != nil {
		return t, err
	}

	now := s.now()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now
	return s.repo.Upsert(ctx, owner, t)
}

// Update replaces an existing task. Unknown ids are reported as not found.
func (s *TaskService) Update(ctx context.Context, owner string, t model.Task) (model.Task, error) {
	if err := validateTask(t); err != nil {
		return t, err
	}
	t.UpdatedAt = s.now()
	return s.repo.Replace(ctx, owner, t)
}

func (s *TaskService) Get(ctx context.Context, owner, id string) (model.Task, error) {
	return s.repo.Get(ctx, owner, id)
}

func (s *TaskService) List(ctx context.Context, owner string, filter model.TaskFilter, limit int) ([]model.Task, error) {
	return s.repo.List(ctx, owner, filter, clampLimit(limit))
}

func validateTask(t model.Task) error {
	if strings.TrimSpace(t.ID) == "" {
		return invalid("task id is required")
	}
	if strings.TrimSpace(t.Title) == "" {
		return invalid("task %s: title is required", t.ID)
	}
	if !t.Priority.Valid() {
		return invalid("task %s: priority must be 1, 2 or 3", t.ID)
	}
	if math.IsNaN(t.Progress) || t.Progress < 0 || t.Progress > 1 {
		return invalid("task %s: progress must be within [0, 1]", t.ID)
	}
	if !t.IsCompleted && t.CompletedAt != nil {
		return invalid("task %s: completed_at set on an open task", t.ID)
	}
	return nil
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > 100 {
		return 20
	}
	return limit
}
