package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/lifesync/internal/remote"
	"github.com/BuzzLyutic/lifesync/internal/syncer"
	"github.com/BuzzLyutic/lifesync/internal/testutil"
)

type fakeSyncer struct {
	calls   atomic.Int32
	block   chan struct{}
	results []error
	mu      sync.Mutex
}

func (f *fakeSyncer) SyncOnce(ctx context.Context) (syncer.Result, error) {
	n := f.calls.Add(1)
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if int(n) <= len(f.results) && f.results[n-1] != nil {
		return syncer.Result{}, f.results[n-1]
	}
	return syncer.Result{Pushed: int(n)}, nil
}

func basePolicy() Policy {
	return Policy{
		Enabled:        true,
		Configured:     true,
		Interval:       10 * time.Millisecond,
		MaxAttempts:    3,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
	}
}

func TestScheduler_Allowed(t *testing.T) {
	metered := func() bool { return true }
	unmetered := func() bool { return false }

	tests := []struct {
		name   string
		modify func(p *Policy)
		want   bool
	}{
		{"all guards hold", func(p *Policy) {}, true},
		{"disabled", func(p *Policy) { p.Enabled = false }, false},
		{"not configured", func(p *Policy) { p.Configured = false }, false},
		{"wifi only on metered", func(p *Policy) { p.WifiOnly = true; p.Metered = metered }, false},
		{"wifi only on wifi", func(p *Policy) { p.WifiOnly = true; p.Metered = unmetered }, true},
		{"metered without wifi only", func(p *Policy) { p.Metered = metered }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := basePolicy()
			tt.modify(&p)
			assert.Equal(t, tt.want, NewScheduler(&fakeSyncer{}, p, zap.NewNop()).Allowed())
		})
	}
}

func TestScheduler_BackgroundTicks(t *testing.T) {
	fs := &fakeSyncer{}
	s := NewScheduler(fs, basePolicy(), zap.NewNop())
	s.Start(context.Background())

	ok := testutil.WaitForCondition(t, 2*time.Second, func() bool {
		return fs.calls.Load() >= 2
	})
	s.Stop()
	assert.True(t, ok, "scheduler should sync on every tick")
}

func TestScheduler_BackgroundSkippedByPolicy(t *testing.T) {
	fs := &fakeSyncer{}
	p := basePolicy()
	p.Enabled = false
	s := NewScheduler(fs, p, zap.NewNop())
	s.Start(context.Background())

	time.Sleep(50 * time.Millisecond)
	s.Stop()
	assert.Zero(t, fs.calls.Load())
}

func TestScheduler_BackgroundRetries(t *testing.T) {
	fs := &fakeSyncer{results: []error{remote.ErrTransport, remote.ErrTransport}}
	s := NewScheduler(fs, basePolicy(), zap.NewNop())

	s.runBackground(context.Background())
	assert.EqualValues(t, 3, fs.calls.Load())
}

func TestScheduler_BackgroundGivesUp(t *testing.T) {
	fs := &fakeSyncer{results: []error{remote.ErrTransport, remote.ErrTransport, remote.ErrTransport, nil}}
	s := NewScheduler(fs, basePolicy(), zap.NewNop())

	s.runBackground(context.Background())
	assert.EqualValues(t, 3, fs.calls.Load())
}

func TestScheduler_PermanentErrorNotRetried(t *testing.T) {
	fs := &fakeSyncer{results: []error{&remote.RejectedError{Code: 403, Message: "authentication invalid"}}}
	s := NewScheduler(fs, basePolicy(), zap.NewNop())

	s.runBackground(context.Background())
	assert.EqualValues(t, 1, fs.calls.Load())
}

func TestScheduler_ManualErrorSurfacedOnce(t *testing.T) {
	fs := &fakeSyncer{results: []error{remote.ErrTransport}}
	s := NewScheduler(fs, basePolicy(), zap.NewNop())

	_, err := s.TriggerManual(context.Background())
	assert.ErrorIs(t, err, remote.ErrTransport)
	assert.EqualValues(t, 1, fs.calls.Load())
}

func TestScheduler_ManualIgnoresPreferences(t *testing.T) {
	fs := &fakeSyncer{}
	p := basePolicy()
	p.Enabled = false
	p.WifiOnly = true
	p.Metered = func() bool { return true }
	s := NewScheduler(fs, p, zap.NewNop())

	res, err := s.TriggerManual(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Pushed)
}

func TestScheduler_ManualNeedsConfiguration(t *testing.T) {
	p := basePolicy()
	p.Configured = false
	s := NewScheduler(&fakeSyncer{}, p, zap.NewNop())

	_, err := s.TriggerManual(context.Background())
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestScheduler_SingleFlight(t *testing.T) {
	fs := &fakeSyncer{block: make(chan struct{})}
	s := NewScheduler(fs, basePolicy(), zap.NewNop())
	ctx := context.Background()

	var wg sync.WaitGroup
	results := make([]syncer.Result, 2)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := s.TriggerManual(ctx)
			assert.NoError(t, err)
			results[i] = res
		}(i)
	}

	require.True(t, testutil.WaitForCondition(t, time.Second, func() bool {
		return s.inFlight.Load()
	}))

	// A background tick during the sync is dropped, not queued.
	s.runBackground(ctx)
	time.Sleep(20 * time.Millisecond)

	close(fs.block)
	wg.Wait()

	assert.EqualValues(t, 1, fs.calls.Load())
	assert.Equal(t, results[0], results[1])
}

func TestScheduler_StopInterruptsBackoff(t *testing.T) {
	fs := &fakeSyncer{results: []error{errors.New("boom"), errors.New("boom"), errors.New("boom")}}
	p := basePolicy()
	p.InitialBackoff = time.Hour
	p.MaxBackoff = time.Hour
	s := NewScheduler(fs, p, zap.NewNop())
	s.Start(context.Background())

	require.True(t, testutil.WaitForCondition(t, time.Second, func() bool {
		return fs.calls.Load() >= 1
	}))

	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop while waiting to retry")
	}
}
