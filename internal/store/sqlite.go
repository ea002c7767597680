package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/nhle/task-tracker/internal/model"
)

// SQLiteStore implements the Store interface using a local SQLite database.
type SQLiteStore struct {
	db *sqlx.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath,
// enables WAL mode, and runs any pending schema migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// A single connection keeps ":memory:" databases coherent and
	// serializes the few writes this journal sees.
	db.SetMaxOpenConns(1)

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *SQLiteStore) runMigrations() error {
	currentVersion := 0

	// Check if schema_version table exists.
	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// RecordEntry stores a saved tracking session. It generates an ID and a
// SavedAt time when they are empty.
func (s *SQLiteStore) RecordEntry(ctx context.Context, entry model.TrackedEntry) (model.TrackedEntry, error) {
	if entry.TaskID == "" {
		return entry, fmt.Errorf("tracked entry needs a task id")
	}
	if entry.Seconds <= 0 {
		return entry, fmt.Errorf("tracked entry needs a positive duration, got %d", entry.Seconds)
	}
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.SavedAt.IsZero() {
		entry.SavedAt = time.Now()
	}
	entry.SavedAt = entry.SavedAt.UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tracked_entries (
			id, task_id, task_title, seconds, user_id, saved_at
		) VALUES (?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.TaskID, entry.TaskTitle, entry.Seconds, entry.UserID, entry.SavedAt,
	)
	if err != nil {
		return entry, fmt.Errorf("recording entry for task %s: %w", entry.TaskID, err)
	}
	return entry, nil
}

// where renders the filter as a WHERE clause.
func (f EntryFilter) where() (string, []interface{}) {
	var conditions []string
	var args []interface{}

	if f.UserID != "" {
		conditions = append(conditions, "user_id = ?")
		args = append(args, f.UserID)
	}
	if f.TaskID != "" {
		conditions = append(conditions, "task_id = ?")
		args = append(args, f.TaskID)
	}
	if !f.Since.IsZero() {
		conditions = append(conditions, "saved_at >= ?")
		args = append(args, f.Since.UTC())
	}

	if len(conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

// GetEntries returns journal entries, newest first.
func (s *SQLiteStore) GetEntries(ctx context.Context, filter EntryFilter) ([]model.TrackedEntry, error) {
	where, args := filter.where()
	query := "SELECT id, task_id, task_title, seconds, user_id, saved_at FROM tracked_entries" +
		where + " ORDER BY saved_at DESC, rowid DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	var entries []model.TrackedEntry
	if err := s.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, fmt.Errorf("querying entries: %w", err)
	}
	return entries, nil
}

// TotalSeconds sums the seconds of matching entries.
func (s *SQLiteStore) TotalSeconds(ctx context.Context, filter EntryFilter) (int, error) {
	where, args := filter.where()

	var total int
	err := s.db.GetContext(ctx, &total,
		"SELECT COALESCE(SUM(seconds), 0) FROM tracked_entries"+where, args...)
	if err != nil {
		return 0, fmt.Errorf("summing entries: %w", err)
	}
	return total, nil
}

// DeleteEntriesForTask forgets the history of a deleted task.
func (s *SQLiteStore) DeleteEntriesForTask(ctx context.Context, taskID string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM tracked_entries WHERE task_id = ?", taskID); err != nil {
		return fmt.Errorf("deleting entries for task %s: %w", taskID, err)
	}
	return nil
}

// StartOfDay returns local midnight of t.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
