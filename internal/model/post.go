package model

import "time"

type Post struct {
	ID        int64      `json:"id"`
	Content   string     `json:"content"`
	IsPublic  bool       `json:"is_public"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// PostUpdate carries the fields a PATCH may change. Nil means unchanged.
type PostUpdate struct {
	Content  *string `json:"content,omitempty"`
	IsPublic *bool   `json:"is_public,omitempty"`
}
