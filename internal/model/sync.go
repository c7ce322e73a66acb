package model

import "time"

type SyncRequest struct {
	Tasks    []Task     `json:"tasks"`
	LastSync *time.Time `json:"last_sync,omitempty"`
}

type SyncResponse struct {
	Success      bool      `json:"success"`
	ServerTime   time.Time `json:"server_time"`
	UpdatedTasks []Task    `json:"updated_tasks"`
}

// Client records when a device owner was first seen and last synced.
type Client struct {
	OwnerToken string    `json:"-"`
	CreatedAt  time.Time `json:"created_at"`
	LastSyncAt time.Time `json:"last_sync_at"`
}
