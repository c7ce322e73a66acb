package status

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BuzzLyutic/lifesync/internal/model"
)

var base = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func src(name, status string, observed, expires time.Duration) model.StatusSource {
	return model.StatusSource{
		Source:     name,
		Status:     status,
		ObservedAt: base.Add(observed),
		ExpiresAt:  base.Add(expires),
	}
}

func TestAggregate(t *testing.T) {
	tests := []struct {
		name        string
		rows        []model.StatusSource
		now         time.Time
		wantSource  string
		wantStatus  string
		wantOffline bool
		wantLive    int
	}{
		{
			name:        "no rows",
			rows:        nil,
			now:         base,
			wantSource:  "system",
			wantStatus:  "Offline",
			wantOffline: true,
		},
		{
			name: "manual wins over more recent automated source",
			rows: []model.StatusSource{
				src("manual", "Busy", -10*time.Minute, 5*time.Minute),
				src("auto", "Idle", -1*time.Minute, 30*time.Minute),
			},
			now:        base,
			wantSource: "manual",
			wantStatus: "Busy",
			wantLive:   2,
		},
		{
			name: "most recent automated source without manual",
			rows: []model.StatusSource{
				src("calendar", "Meeting", -20*time.Minute, time.Hour),
				src("music", "Listening", -2*time.Minute, time.Hour),
			},
			now:        base,
			wantSource: "music",
			wantStatus: "Listening",
			wantLive:   2,
		},
		{
			name: "expired manual falls back to automated",
			rows: []model.StatusSource{
				src("manual", "Busy", -30*time.Minute, -1*time.Minute),
				src("auto", "Idle", -5*time.Minute, 10*time.Minute),
			},
			now:        base,
			wantSource: "auto",
			wantStatus: "Idle",
			wantLive:   1,
		},
		{
			name: "expires_at equal to now is expired",
			rows: []model.StatusSource{
				src("manual", "Busy", -15*time.Minute, 0),
			},
			now:         base,
			wantSource:  "system",
			wantStatus:  "Offline",
			wantOffline: true,
		},
		{
			name: "all expired",
			rows: []model.StatusSource{
				src("a", "x", -time.Hour, -30*time.Minute),
				src("b", "y", -time.Hour, -time.Second),
			},
			now:         base,
			wantSource:  "system",
			wantStatus:  "Offline",
			wantOffline: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view := Aggregate(tt.rows, tt.now)

			assert.Equal(t, tt.wantSource, view.Primary.Source)
			assert.Equal(t, tt.wantStatus, view.Primary.Status)
			assert.Equal(t, tt.wantOffline, view.Primary.Offline)
			assert.Len(t, view.Sources, tt.wantLive)
		})
	}
}

func TestAggregate_OfflineSentinelIsExact(t *testing.T) {
	view := Aggregate(nil, base)

	assert.Equal(t, model.PrimaryStatus{Source: "system", Status: "Offline", Offline: true}, view.Primary)
	assert.Nil(t, view.Primary.ObservedAt)
	assert.Nil(t, view.Primary.ExpiresAt)
	assert.Empty(t, view.Sources)
}

func TestAggregate_PublishThenReadScenario(t *testing.T) {
	observed := base
	rows := []model.StatusSource{{
		Source:     "manual",
		Status:     "Coding",
		ObservedAt: observed,
		ExpiresAt:  observed.Add(900000 * time.Millisecond),
	}}

	view := Aggregate(rows, observed.Add(100*time.Millisecond))
	assert.Equal(t, "manual", view.Primary.Source)
	assert.Equal(t, "Coding", view.Primary.Status)
	require.NotNil(t, view.Primary.ExpiresAt)
	assert.True(t, view.Primary.ExpiresAt.Equal(observed.Add(15*time.Minute)))

	view = Aggregate(rows, observed.Add(900001*time.Millisecond))
	assert.True(t, view.Primary.Offline)
	assert.Equal(t, "Offline", view.Primary.Status)
}

func TestLive_OrderAndPurity(t *testing.T) {
	rows := []model.StatusSource{
		src("b", "second", -5*time.Minute, time.Hour),
		src("a", "first", -1*time.Minute, time.Hour),
		src("c", "tie", -5*time.Minute, time.Hour),
	}
	snapshot := append([]model.StatusSource(nil), rows...)

	live := Live(rows, base)

	require.Len(t, live, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{live[0].Source, live[1].Source, live[2].Source})
	assert.Equal(t, snapshot, rows, "input must not be reordered")
}

func TestNormalizeSource(t *testing.T) {
	assert.Equal(t, "manual", NormalizeSource("  Manual "))
	assert.Equal(t, "spotify", NormalizeSource("SPOTIFY"))
	assert.Equal(t, "", NormalizeSource("   "))
}
