// Package worker decides when the device syncs with the server.
package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/avast/retry-go"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/BuzzLyutic/lifesync/internal/remote"
	"github.com/BuzzLyutic/lifesync/internal/syncer"
)

var ErrNotConfigured = errors.New("server url and credentials are not configured")

type Syncer interface {
	SyncOnce(ctx context.Context) (syncer.Result, error)
}

// Policy holds the user preferences the background trigger obeys.
type Policy struct {
	Enabled    bool
	Configured bool
	WifiOnly   bool
	// Metered reports whether the current connection is metered. Nil means
	// never metered.
	Metered func() bool

	Interval       time.Duration
	MaxAttempts    uint
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// Scheduler runs background syncs on a ticker and serves manual ones.
// At most one sync is in flight at a time.
type Scheduler struct {
	syncer Syncer
	policy Policy
	logger *zap.Logger

	group    singleflight.Group
	inFlight atomic.Bool

	wg     sync.WaitGroup
	stop   chan struct{}
	cancel context.CancelFunc
}

func NewScheduler(s Syncer, policy Policy, logger *zap.Logger) *Scheduler {
	if policy.MaxAttempts == 0 {
		policy.MaxAttempts = 1
	}
	return &Scheduler{
		syncer: s,
		policy: policy,
		logger: logger,
		stop:   make(chan struct{}),
	}
}

func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.logger.Info("Starting sync scheduler",
		zap.Duration("interval", s.policy.Interval),
		zap.Bool("enabled", s.policy.Enabled),
		zap.Bool("wifi_only", s.policy.WifiOnly),
	)

	s.wg.Add(1)
	go s.loop(ctx)
}

// Stop cancels the loop context and blocks until the loop exits. An
// interrupted round trip leaves the cursor untouched.
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping sync scheduler...")
	close(s.stop)
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	s.logger.Info("Sync scheduler stopped")
}

func (s *Scheduler) loop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.policy.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runBackground(ctx)
		}
	}
}

// Allowed reports whether the background trigger may fire right now.
func (s *Scheduler) Allowed() bool {
	if !s.policy.Enabled || !s.policy.Configured {
		return false
	}
	if s.policy.WifiOnly && s.policy.Metered != nil && s.policy.Metered() {
		return false
	}
	return true
}

func (s *Scheduler) runBackground(ctx context.Context) {
	if !s.Allowed() {
		s.logger.Debug("background sync skipped by policy")
		return
	}
	if s.inFlight.Load() {
		s.logger.Debug("background sync skipped, another sync in flight")
		return
	}

	err := retry.Do(
		func() error {
			_, err := s.attempt(ctx)
			if isPermanent(err) {
				return retry.Unrecoverable(err)
			}
			return err
		},
		retry.Context(ctx),
		retry.Attempts(s.policy.MaxAttempts),
		retry.Delay(s.policy.InitialBackoff),
		retry.MaxDelay(s.policy.MaxBackoff),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			s.logger.Warn("background sync failed",
				zap.Uint("attempt", n+1),
				zap.Error(err),
			)
		}),
	)
	if err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Error("background sync gave up", zap.Error(err))
	}
}

// TriggerManual runs a sync now regardless of the enabled and wifi_only
// preferences. Its error is returned once and never retried. A call made
// while a sync is in flight shares that sync's result.
func (s *Scheduler) TriggerManual(ctx context.Context) (syncer.Result, error) {
	if !s.policy.Configured {
		return syncer.Result{}, ErrNotConfigured
	}
	return s.attempt(ctx)
}

func (s *Scheduler) attempt(ctx context.Context) (syncer.Result, error) {
	v, err, _ := s.group.Do("sync", func() (interface{}, error) {
		s.inFlight.Store(true)
		defer s.inFlight.Store(false)
		return s.syncer.SyncOnce(ctx)
	})
	res, _ := v.(syncer.Result)
	return res, err
}

// isPermanent is true for answers that will not change on retry, such as
// bad credentials or a rejected payload.
func isPermanent(err error) bool {
	var rejected *remote.RejectedError
	return errors.As(err, &rejected) && !rejected.Temporary()
}
