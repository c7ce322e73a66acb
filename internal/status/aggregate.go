// Package status computes the current status of an owner from the
// latest observation of every status source.
package status

import (
	"sort"
	"strings"
	"time"

	"github.com/BuzzLyutic/lifesync/internal/model"
)

// Offline is the primary status reported when no source is live.
func Offline() model.PrimaryStatus {
	return model.PrimaryStatus{
		Source:  model.SourceSystem,
		Status:  model.StatusOffline,
		Offline: true,
	}
}

// Live returns the rows with expires_at strictly after now, most recently
// observed first. The input slice is not modified.
func Live(rows []model.StatusSource, now time.Time) []model.StatusSource {
	live := make([]model.StatusSource, 0, len(rows))
	for _, r := range rows {
		if r.ExpiresAt.After(now) {
			live = append(live, r)
		}
	}

	sort.SliceStable(live, func(i, j int) bool {
		if !live[i].ObservedAt.Equal(live[j].ObservedAt) {
			return live[i].ObservedAt.After(live[j].ObservedAt)
		}
		return live[i].Source < live[j].Source
	})
	return live
}

// Aggregate picks the primary status: a live manual entry always wins,
// otherwise the most recent live observation, otherwise Offline.
func Aggregate(rows []model.StatusSource, now time.Time) model.StatusView {
	live := Live(rows, now)

	view := model.StatusView{
		Primary: Offline(),
		Sources: live,
	}
	if len(live) == 0 {
		return view
	}

	primary := live[0]
	for _, r := range live {
		if r.Source == model.SourceManual {
			primary = r
			break
		}
	}
	view.Primary = fromSource(primary)
	return view
}

// NormalizeSource is the key under which a source is stored.
func NormalizeSource(source string) string {
	return strings.ToLower(strings.TrimSpace(source))
}

func fromSource(s model.StatusSource) model.PrimaryStatus {
	observed, expires := s.ObservedAt, s.ExpiresAt
	return model.PrimaryStatus{
		Source:     s.Source,
		Status:     s.Status,
		ObservedAt: &observed,
		ExpiresAt:  &expires,
		Meta:       s.Meta,
	}
}
