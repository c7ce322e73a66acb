package repo

import (
	"context"
	"time"

	"github.com/BuzzLyutic/lifesync/internal/model"
)

// Every method is scoped by an explicit owner token. No query ever reads
// or writes rows of another owner.

// TaskRepository is the remote task store.
type TaskRepository interface {
	// SyncBatch overwrites every task of the batch with updated_at = now,
	// records the client's sync time and returns now together with the
	// rows changed after since. All of it happens in one transaction that
	// holds the owner's lock; clock is read once the lock is taken. A nil
	// since returns no rows.
	SyncBatch(ctx context.Context, owner string, tasks []model.Task, clock func() time.Time, since *time.Time) (time.Time, []model.Task, error)
	Upsert(ctx context.Context, owner string, t model.Task) (model.Task, error)
	Replace(ctx context.Context, owner string, t model.Task) (model.Task, error)
	Get(ctx context.Context, owner, id string) (model.Task, error)
	List(ctx context.Context, owner string, filter model.TaskFilter, limit int) ([]model.Task, error)
	ListPublic(ctx context.Context, owner string, limit int) ([]model.Task, error)
	ListChangedSince(ctx context.Context, owner string, since time.Time) ([]model.Task, error)
}

type ClientRepository interface {
	Get(ctx context.Context, owner string) (model.Client, error)
}

// StatusRepository is the status source store plus its event log.
type StatusRepository interface {
	Publish(ctx context.Context, owner string, src model.StatusSource, eventID string, now time.Time) (model.StatusSource, error)
	ListSources(ctx context.Context, owner string) ([]model.StatusSource, error)
	ListEvents(ctx context.Context, owner, source string, limit int) ([]model.StatusEvent, error)
}

type PostRepository interface {
	Create(ctx context.Context, owner string, p model.Post) (model.Post, error)
	Get(ctx context.Context, owner string, id int64) (model.Post, error)
	List(ctx context.Context, owner string, limit int) ([]model.Post, error)
	ListPublic(ctx context.Context, owner string, limit int) ([]model.Post, error)
	Update(ctx context.Context, owner string, id int64, upd model.PostUpdate, now time.Time) (model.Post, error)
	SoftDelete(ctx context.Context, owner string, id int64, now time.Time) error
	// CreateOnce creates p unless key was already used by owner, in which
	// case the post created with that key is returned.
	CreateOnce(ctx context.Context, owner, key string, p model.Post) (model.Post, error)
}

type FeedRepository interface {
	// MostActiveOwner returns the owner that most recently wrote any row.
	MostActiveOwner(ctx context.Context) (string, error)
}
