package model

import "time"

// TrackedEntry records one stopwatch session whose seconds were saved to a
// task on the server.
type TrackedEntry struct {
	ID        string    `json:"id" db:"id"`
	TaskID    string    `json:"task_id" db:"task_id"`
	TaskTitle string    `json:"task_title" db:"task_title"`
	Seconds   int       `json:"seconds" db:"seconds"`
	UserID    string    `json:"user_id" db:"user_id"`
	SavedAt   time.Time `json:"saved_at" db:"saved_at"`
}
