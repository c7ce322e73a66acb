package model

import (
	"encoding/json"
	"time"
)

const (
	SourceManual = "manual"
	SourceSystem = "system"

	StatusOffline = "Offline"
)

// StatusSource is the latest observation of one named source for an owner.
type StatusSource struct {
	Source     string          `json:"source"`
	Status     string          `json:"status"`
	ObservedAt time.Time       `json:"observed_at"`
	ExpiresAt  time.Time       `json:"expires_at"`
	Meta       json.RawMessage `json:"meta,omitempty"`
}

// StatusPublish is the inbound publish payload. Missing timestamps are
// filled in by the service.
type StatusPublish struct {
	Source     string          `json:"source"`
	Status     string          `json:"status"`
	ObservedAt *time.Time      `json:"observed_at,omitempty"`
	ExpiresAt  *time.Time      `json:"expires_at,omitempty"`
	Meta       json.RawMessage `json:"meta,omitempty"`
}

// StatusEvent is one entry of the append-only publish log.
type StatusEvent struct {
	ID         string          `json:"id"`
	Source     string          `json:"source"`
	Status     string          `json:"status"`
	ObservedAt time.Time       `json:"observed_at"`
	ExpiresAt  time.Time       `json:"expires_at"`
	Meta       json.RawMessage `json:"meta,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// PrimaryStatus is the status shown to feed readers. Timestamps are nil
// for the offline sentinel.
type PrimaryStatus struct {
	Source     string          `json:"source"`
	Status     string          `json:"status"`
	ObservedAt *time.Time      `json:"observed_at,omitempty"`
	ExpiresAt  *time.Time      `json:"expires_at,omitempty"`
	Meta       json.RawMessage `json:"meta,omitempty"`
	Offline    bool            `json:"offline"`
}

type StatusView struct {
	Primary PrimaryStatus  `json:"primary"`
	Sources []StatusSource `json:"sources"`
}
