package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/BuzzLyutic/lifesync/internal/model"
)

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

type MockTaskRepository struct {
	mock.Mock
}

// SyncBatch records the time the clock reads, which stands in for the
// moment the owner lock is taken.
func (m *MockTaskRepository) SyncBatch(ctx context.Context, owner string, tasks []model.Task, clock func() time.Time, since *time.Time) (time.Time, []model.Task, error) {
	now := clock()
	args := m.Called(ctx, owner, tasks, now, since)
	return now, args.Get(0).([]model.Task), args.Error(1)
}

func (m *MockTaskRepository) Upsert(ctx context.Context, owner string, t model.Task) (model.Task, error) {
	args := m.Called(ctx, owner, t)
	return args.Get(0).(model.Task), args.Error(1)
}

func (m *MockTaskRepository) Replace(ctx context.Context, owner string, t model.Task) (model.Task, error) {
	args := m.Called(ctx, owner, t)
	return args.Get(0).(model.Task), args.Error(1)
}

func (m *MockTaskRepository) Get(ctx context.Context, owner, id string) (model.Task, error) {
	args := m.Called(ctx, owner, id)
	return args.Get(0).(model.Task), args.Error(1)
}

func (m *MockTaskRepository) List(ctx context.Context, owner string, filter model.TaskFilter, limit int) ([]model.Task, error) {
	args := m.Called(ctx, owner, filter, limit)
	return args.Get(0).([]model.Task), args.Error(1)
}

func (m *MockTaskRepository) ListPublic(ctx context.Context, owner string, limit int) ([]model.Task, error) {
	args := m.Called(ctx, owner, limit)
	return args.Get(0).([]model.Task), args.Error(1)
}

func (m *MockTaskRepository) ListChangedSince(ctx context.Context, owner string, since time.Time) ([]model.Task, error) {
	args := m.Called(ctx, owner, since)
	return args.Get(0).([]model.Task), args.Error(1)
}

type MockClientRepository struct {
	mock.Mock
}

func (m *MockClientRepository) Get(ctx context.Context, owner string) (model.Client, error) {
	args := m.Called(ctx, owner)
	return args.Get(0).(model.Client), args.Error(1)
}

type MockStatusRepository struct {
	mock.Mock
}

func (m *MockStatusRepository) Publish(ctx context.Context, owner string, src model.StatusSource, eventID string, now time.Time) (model.StatusSource, error) {
	args := m.Called(ctx, owner, src, eventID, now)
	return args.Get(0).(model.StatusSource), args.Error(1)
}

func (m *MockStatusRepository) ListSources(ctx context.Context, owner string) ([]model.StatusSource, error) {
	args := m.Called(ctx, owner)
	return args.Get(0).([]model.StatusSource), args.Error(1)
}

func (m *MockStatusRepository) ListEvents(ctx context.Context, owner, source string, limit int) ([]model.StatusEvent, error) {
	args := m.Called(ctx, owner, source, limit)
	return args.Get(0).([]model.StatusEvent), args.Error(1)
}

type MockPostRepository struct {
	mock.Mock
}

func (m *MockPostRepository) Create(ctx context.Context, owner string, p model.Post) (model.Post, error) {
	args := m.Called(ctx, owner, p)
	return args.Get(0).(model.Post), args.Error(1)
}

func (m *MockPostRepository) Get(ctx context.Context, owner string, id int64) (model.Post, error) {
	args := m.Called(ctx, owner, id)
	return args.Get(0).(model.Post), args.Error(1)
}

func (m *MockPostRepository) List(ctx context.Context, owner string, limit int) ([]model.Post, error) {
	args := m.Called(ctx, owner, limit)
	return args.Get(0).([]model.Post), args.Error(1)
}

func (m *MockPostRepository) ListPublic(ctx context.Context, owner string, limit int) ([]model.Post, error) {
	args := m.Called(ctx, owner, limit)
	return args.Get(0).([]model.Post), args.Error(1)
}

func (m *MockPostRepository) Update(ctx context.Context, owner string, id int64, upd model.PostUpdate, now time.Time) (model.Post, error) {
	args := m.Called(ctx, owner, id, upd, now)
	return args.Get(0).(model.Post), args.Error(1)
}

func (m *MockPostRepository) SoftDelete(ctx context.Context, owner string, id int64, now time.Time) error {
	args := m.Called(ctx, owner, id, now)
	return args.Error(0)
}

func (m *MockPostRepository) CreateOnce(ctx context.Context, owner, key string, p model.Post) (model.Post, error) {
	args := m.Called(ctx, owner, key, p)
	return args.Get(0).(model.Post), args.Error(1)
}

type MockFeedRepository struct {
	mock.Mock
}

func (m *MockFeedRepository) MostActiveOwner(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}
