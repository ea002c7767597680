package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS tracked_entries (
	id         TEXT PRIMARY KEY,
	task_id    TEXT NOT NULL,
	task_title TEXT NOT NULL DEFAULT '',
	seconds    INTEGER NOT NULL CHECK (seconds > 0),
	saved_at   DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_tracked_entries_saved_at ON tracked_entries(saved_at);
CREATE INDEX IF NOT EXISTS idx_tracked_entries_task_id ON tracked_entries(task_id);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
	{
		version: 2,
		sql: `
ALTER TABLE tracked_entries ADD COLUMN user_id TEXT NOT NULL DEFAULT '';

CREATE INDEX IF NOT EXISTS idx_tracked_entries_user_saved
	ON tracked_entries(user_id, saved_at);

INSERT INTO schema_version (version) VALUES (2);
`,
	},
}
