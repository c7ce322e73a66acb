package service

import (
	"context"
	"strings"

	"github.com/BuzzLyutic/lifesync/internal/model"
	"github.com/BuzzLyutic/lifesync/internal/repo"
)

const maxPostLength = 500

type PostService struct {
	repo repo.PostRepository
	now  Clock
}

func NewPostService(repo repo.PostRepository, now Clock) *PostService {
	return &PostService{repo: repo, now: now}
}

// Create stores a post. A repeated idempotency key returns the post created
// by the first request instead of a new one.
func (s *PostService) Create(ctx context.Context, owner string, p model.Post, idempKey string) (model.Post, error) {
	p.Content = strings.TrimSpace(p.Content)
	if err := validateContent(p.Content); err != nil {
		return p, err
	}
	p.CreatedAt = s.now()
	p.UpdatedAt = p.CreatedAt

	if idempKey != "" {
		return s.repo.CreateOnce(ctx, owner, idempKey, p)
	}
	return s.repo.Create(ctx, owner, p)
}

func (s *PostService) List(ctx context.Context, owner string, limit int) ([]model.Post, error) {
	return s.repo.List(ctx, owner, clampLimit(limit))
}

func (s *PostService) Update(ctx context.Context, owner string, id int64, upd model.PostUpdate) (model.Post, error) {
	if upd.Content != nil {
		content := strings.TrimSpace(*upd.Content)
		if err := validateContent(content); err != nil {
			return model.Post{}, err
		}
		upd.Content = &content
	}
	return s.repo.Update(ctx, owner, id, upd, s.now())
}

// Delete hides the post. The row is kept with deleted_at set.
func (s *PostService) Delete(ctx context.Context, owner string, id int64) error {
	return s.repo.SoftDelete(ctx, owner, id, s.now())
}

func validateContent(content string) error {
	if content == "" {
		return invalid("content is required")
	}
	if len([]rune(content)) > maxPostLength {
		return invalid("content is longer than %d characters", maxPostLength)
	}
	return nil
}
