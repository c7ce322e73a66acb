package syncer

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/lifesync/internal/localstore"
	"github.com/BuzzLyutic/lifesync/internal/model"
	"github.com/BuzzLyutic/lifesync/internal/remote"
)

var t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

type MockRemote struct {
	mock.Mock
}

func (m *MockRemote) Sync(ctx context.Context, tasks []model.Task, cursor *time.Time) (model.SyncResponse, error) {
	args := m.Called(ctx, tasks, cursor)
	return args.Get(0).(model.SyncResponse), args.Error(1)
}

func openStore(t *testing.T) *localstore.Store {
	t.Helper()
	s, err := localstore.Open(filepath.Join(t.TempDir(), "lifesync.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestEngine_FirstSyncSetsCursor(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	_, err := store.Put(ctx, model.Task{ID: "a", Title: "Local"})
	require.NoError(t, err)

	rm := new(MockRemote)
	rm.On("Sync", mock.Anything, mock.MatchedBy(func(tasks []model.Task) bool {
		return len(tasks) == 1 && tasks[0].ID == "a"
	}), (*time.Time)(nil)).Return(model.SyncResponse{Success: true, ServerTime: t0, UpdatedTasks: []model.Task{}}, nil)

	res, err := NewEngine(store, rm, zap.NewNop()).SyncOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Pushed)
	assert.Zero(t, res.Pulled)
	assert.True(t, t0.Equal(res.Cursor))

	cursor, err := store.Cursor(ctx)
	require.NoError(t, err)
	require.NotNil(t, cursor)
	assert.True(t, t0.Equal(*cursor))
	rm.AssertExpectations(t)
}

func TestEngine_AppliesDeltaAndSendsCursor(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	_, err := store.ApplySync(ctx, nil, t0, nil)
	require.NoError(t, err)

	next := t0.Add(30 * time.Minute)
	phone := model.Task{ID: "phone", Title: "From phone", Priority: model.PriorityLow, CreatedAt: t0, UpdatedAt: next}

	rm := new(MockRemote)
	rm.On("Sync", mock.Anything, []model.Task{}, mock.MatchedBy(func(c *time.Time) bool {
		return c != nil && c.Equal(t0)
	})).Return(model.SyncResponse{Success: true, ServerTime: next, UpdatedTasks: []model.Task{phone}}, nil)

	res, err := NewEngine(store, rm, zap.NewNop()).SyncOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Pulled)
	assert.Equal(t, 1, res.Applied)

	got, err := store.Get(ctx, "phone")
	require.NoError(t, err)
	assert.Equal(t, "From phone", got.Title)
	rm.AssertExpectations(t)
}

func TestEngine_FailureKeepsCursor(t *testing.T) {
	tests := []struct {
		name string
		resp model.SyncResponse
		err  error
		want error
	}{
		{"transport", model.SyncResponse{}, remote.ErrTransport, remote.ErrTransport},
		{"rejected", model.SyncResponse{}, &remote.RejectedError{Code: 403}, remote.ErrRejected},
		{"not successful", model.SyncResponse{Success: false, ServerTime: t0.Add(time.Hour)}, nil, ErrServerRefused},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			store := openStore(t)
			_, err := store.ApplySync(ctx, nil, t0, nil)
			require.NoError(t, err)
			_, err = store.Put(ctx, model.Task{ID: "pending", Title: "Keep me"})
			require.NoError(t, err)

			rm := new(MockRemote)
			rm.On("Sync", mock.Anything, mock.Anything, mock.Anything).Return(tt.resp, tt.err)

			_, err = NewEngine(store, rm, zap.NewNop()).SyncOnce(ctx)
			assert.ErrorIs(t, err, tt.want)

			cursor, err := store.Cursor(ctx)
			require.NoError(t, err)
			require.NotNil(t, cursor)
			assert.True(t, t0.Equal(*cursor))

			_, err = store.Get(ctx, "pending")
			assert.NoError(t, err, "local edits survive a failed sync")
		})
	}
}

func TestEngine_ServerClockBehindCursor(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	_, err := store.ApplySync(ctx, nil, t0, nil)
	require.NoError(t, err)

	earlier := t0.Add(-time.Minute)
	rm := new(MockRemote)
	rm.On("Sync", mock.Anything, mock.Anything, mock.Anything).
		Return(model.SyncResponse{Success: true, ServerTime: earlier}, nil)

	res, err := NewEngine(store, rm, zap.NewNop()).SyncOnce(ctx)
	require.NoError(t, err)
	assert.True(t, t0.Equal(res.Cursor))

	cursor, err := store.Cursor(ctx)
	require.NoError(t, err)
	assert.True(t, t0.Equal(*cursor))
}

type failingStore struct {
	*localstore.Store
}

func (f failingStore) ApplySync(context.Context, []model.Task, time.Time, localstore.Revisions) (int, error) {
	return 0, errors.New("disk full")
}

func TestEngine_ApplyFailure(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)

	rm := new(MockRemote)
	rm.On("Sync", mock.Anything, mock.Anything, mock.Anything).
		Return(model.SyncResponse{Success: true, ServerTime: t0}, nil)

	_, err := NewEngine(failingStore{store}, rm, zap.NewNop()).SyncOnce(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "apply sync")

	cursor, err := store.Cursor(ctx)
	require.NoError(t, err)
	assert.Nil(t, cursor)
}
