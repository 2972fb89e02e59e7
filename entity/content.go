package entity

import "time"

type Prize struct {
	ID      int64  `json:"id"`
	URL     string `json:"url,omitempty"`
	Enabled bool   `json:"enabled"`
}

// Notification is displayed on the public page, ordered by DisplayOrder.
type Notification struct {
	ID           int64     `json:"id,omitempty"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	VideoURL     string    `json:"video_url,omitempty"`
	IsEnabled    bool      `json:"is_enabled"`
	DisplayOrder int       `json:"display_order"`
	CreatedAt    time.Time `json:"created_at,omitempty"`
}
