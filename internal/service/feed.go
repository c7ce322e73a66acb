package service

import (
	"context"
	"errors"

	"github.com/BuzzLyutic/lifesync/internal/model"
	"github.com/BuzzLyutic/lifesync/internal/repo"
	"github.com/BuzzLyutic/lifesync/internal/status"
)

type FeedService struct {
	feed     repo.FeedRepository
	tasks    repo.TaskRepository
	posts    repo.PostRepository
	statuses *StatusService
	owner    string
	limit    int
}

// NewFeedService builds the public feed for owner. An empty owner falls
// back to whichever owner wrote most recently, which only makes sense for
// a single-tenant deployment.
func NewFeedService(feed repo.FeedRepository, tasks repo.TaskRepository, posts repo.PostRepository, statuses *StatusService, owner string, limit int) *FeedService {
	return &FeedService{
		feed:     feed,
		tasks:    tasks,
		posts:    posts,
		statuses: statuses,
		owner:    owner,
		limit:    clampLimit(limit),
	}
}

func (s *FeedService) Feed(ctx context.Context) (model.Feed, error) {
	empty := model.Feed{
		Status: model.StatusView{Primary: status.Offline(), Sources: []model.StatusSource{}},
		Posts:  []model.Post{},
		Tasks:  []model.Task{},
	}

	owner, err := s.resolveOwner(ctx)
	if errors.Is(err, repo.ErrorNotFound) {
		return empty, nil
	}
	if err != nil {
		return empty, err
	}

	view, err := s.statuses.Current(ctx, owner)
	if err != nil {
		return empty, err
	}
	posts, err := s.posts.ListPublic(ctx, owner, s.limit)
	if err != nil {
		return empty, err
	}
	tasks, err := s.tasks.ListPublic(ctx, owner, s.limit)
	if err != nil {
		return empty, err
	}

	return model.Feed{Status: view, Posts: posts, Tasks: tasks}, nil
}

func (s *FeedService) resolveOwner(ctx context.Context) (string, error) {
	if s.owner != "" {
		return s.owner, nil
	}
	return s.feed.MostActiveOwner(ctx)
}
