package store

import (
	"context"
	"time"

	"github.com/nhle/task-tracker/internal/model"
)

// EntryFilter narrows journal queries.
type EntryFilter struct {
	UserID string
	TaskID string
	Since  time.Time
	Limit  int
}

// Store is the local journal of saved tracking sessions. It is a history
// of what this machine saved to the server, not a cache of tasks.
type Store interface {
	RecordEntry(ctx context.Context, entry model.TrackedEntry) (model.TrackedEntry, error)
	GetEntries(ctx context.Context, filter EntryFilter) ([]model.TrackedEntry, error)
	TotalSeconds(ctx context.Context, filter EntryFilter) (int, error)
	DeleteEntriesForTask(ctx context.Context, taskID string) error
	Close() error
}
