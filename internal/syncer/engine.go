// Package syncer runs one reconciliation round trip between the device
// store and the server.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/lifesync/internal/localstore"
	"github.com/BuzzLyutic/lifesync/internal/model"
)

var ErrServerRefused = errors.New("server reported sync failure")

type LocalStore interface {
	Snapshot(ctx context.Context) ([]model.Task, localstore.Revisions, error)
	Cursor(ctx context.Context) (*time.Time, error)
	ApplySync(ctx context.Context, tasks []model.Task, serverTime time.Time, pushed localstore.Revisions) (int, error)
}

type Remote interface {
	Sync(ctx context.Context, tasks []model.Task, cursor *time.Time) (model.SyncResponse, error)
}

// Result describes a completed round trip.
type Result struct {
	Pushed  int
	Pulled  int
	Applied int
	Cursor  time.Time
}

type Engine struct {
	local  LocalStore
	remote Remote
	logger *zap.Logger
}

func NewEngine(local LocalStore, remote Remote, logger *zap.Logger) *Engine {
	return &Engine{
		local:  local,
		remote: remote,
		logger: logger,
	}
}

// SyncOnce pushes every local task, then applies the returned delta and
// the new cursor. Any error leaves the cursor where it was.
func (e *Engine) SyncOnce(ctx context.Context) (Result, error) {
	tasks, revs, err := e.local.Snapshot(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("read local tasks: %w", err)
	}
	cursor, err := e.local.Cursor(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("read cursor: %w", err)
	}

	resp, err := e.remote.Sync(ctx, tasks, cursor)
	if err != nil {
		return Result{}, err
	}
	if !resp.Success || resp.ServerTime.IsZero() {
		return Result{}, ErrServerRefused
	}

	if cursor != nil && resp.ServerTime.Before(*cursor) {
		e.logger.Warn("server time behind local cursor, keeping cursor",
			zap.Time("cursor", *cursor),
			zap.Time("server_time", resp.ServerTime),
		)
	}

	applied, err := e.local.ApplySync(ctx, resp.UpdatedTasks, resp.ServerTime, revs)
	if err != nil {
		return Result{}, fmt.Errorf("apply sync: %w", err)
	}

	res := Result{
		Pushed:  len(tasks),
		Pulled:  len(resp.UpdatedTasks),
		Applied: applied,
		Cursor:  resp.ServerTime,
	}
	if cursor != nil && resp.ServerTime.Before(*cursor) {
		res.Cursor = *cursor
	}

	e.logger.Info("sync complete",
		zap.Int("pushed", res.Pushed),
		zap.Int("pulled", res.Pulled),
		zap.Int("applied", res.Applied),
		zap.Time("cursor", res.Cursor),
	)
	return res, nil
}
