package model

import "time"

type Priority int

const (
	PriorityLow    Priority = 1
	PriorityMedium Priority = 2
	PriorityHigh   Priority = 3
)

func (p Priority) Valid() bool {
	return p >= PriorityLow && p <= PriorityHigh
}

// Task is the unit of work shared between a device and the server.
// ID is assigned by the device and never changes.
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	StartTime   *time.Time `json:"start_time,omitempty"`
	Deadline    *time.Time `json:"deadline,omitempty"`
	IsCompleted bool       `json:"is_completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Progress    float64    `json:"progress"`
	Priority    Priority   `json:"priority"`
	IsPublic    bool       `json:"is_public"`
	Tags        string     `json:"tags"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type TaskFilter struct {
	Completed *bool
}
