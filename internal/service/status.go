package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/BuzzLyutic/lifesync/internal/model"
	"github.com/BuzzLyutic/lifesync/internal/repo"
	"github.com/BuzzLyutic/lifesync/internal/status"
)

const DefaultStatusTTL = 15 * time.Minute

type StatusService struct {
	repo  repo.StatusRepository
	ttl   time.Duration
	now   Clock
	newID func() string
}

func NewStatusService(repo repo.StatusRepository, ttl time.Duration, now Clock) *StatusService {
	if ttl <= 0 {
		ttl = DefaultStatusTTL
	}
	return &StatusService{
		repo:  repo,
		ttl:   ttl,
		now:   now,
		newID: uuid.NewString,
	}
}

// Publish stores the observation as the live row of its source.
func (s *StatusService) Publish(ctx context.Context, owner string, p model.StatusPublish) (model.StatusSource, error) {
	src, err := s.normalize(p)
	if err != nil {
		return src, err
	}
	return s.repo.Publish(ctx, owner, src, s.newID(), s.now())
}

// Current recomputes the owner's status from the stored rows on every
// call. Nothing is cached.
func (s *StatusService) Current(ctx context.Context, owner string) (model.StatusView, error) {
	rows, err := s.repo.ListSources(ctx, owner)
	if err != nil {
		return model.StatusView{}, err
	}
	return status.Aggregate(rows, s.now()), nil
}

func (s *StatusService) Events(ctx context.Context, owner, source string, limit int) ([]model.StatusEvent, error) {
	return s.repo.ListEvents(ctx, owner, status.NormalizeSource(source), clampLimit(limit))
}

func (s *StatusService) normalize(p model.StatusPublish) (model.StatusSource, error) {
	src := model.StatusSource{
		Source: status.NormalizeSource(p.Source),
		Status: strings.TrimSpace(p.Status),
		Meta:   p.Meta,
	}
	if src.Source == "" {
		return src, invalid("source is required")
	}
	if src.Source == model.SourceSystem {
		return src, invalid("source %q is reserved", model.SourceSystem)
	}
	if src.Status == "" {
		return src, invalid("status is required")
	}
	if len(p.Meta) > 0 && !json.Valid(p.Meta) {
		return src, invalid("meta is not valid JSON")
	}

	src.ObservedAt = s.now()
	if p.ObservedAt != nil {
		src.ObservedAt = p.ObservedAt.UTC().Truncate(time.Microsecond)
	}
	src.ExpiresAt = src.ObservedAt.Add(s.ttl)
	if p.ExpiresAt != nil {
		src.ExpiresAt = p.ExpiresAt.UTC().Truncate(time.Microsecond)
	}
	if !src.ExpiresAt.After(src.ObservedAt) {
		return src, invalid("expires_at must be after observed_at")
	}
	return src, nil
}
