package models

import "time"

// Notification is one entry of the append-only, most-recent-first log.
// Only the read flag is ever mutated after creation.
type Notification struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Read      bool      `json:"read"`
}
