// Package db implements the experiment store: durable persistence and
// retrieval of runs and metric points in a single local SQLite file, with
// referential integrity between the two.
package db

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/banshee-data/exptrack/internal/timeutil"
)

// DB wraps the SQLite handle for the experiment store.
type DB struct {
	*sql.DB
	clock timeutil.Clock
}

const schemaSQL = `
	CREATE TABLE IF NOT EXISTS runs (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		name        TEXT NOT NULL,
		created_at  TEXT NOT NULL,
		tags        TEXT NOT NULL DEFAULT '',
		notes       TEXT NOT NULL DEFAULT '',
		config_json TEXT NOT NULL DEFAULT '{}'
	);
	CREATE TABLE IF NOT EXISTS metrics (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id      INTEGER NOT NULL,
		name        TEXT NOT NULL,
		step        INTEGER NOT NULL,
		value       REAL NOT NULL,
		created_at  TEXT NOT NULL,
		FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_metrics_run_name_step
	ON metrics(run_id, name, step);
`

// NewDB opens (or creates) the database file at path. Foreign-key
// enforcement is enabled on every connection via the DSN pragma; SQLite
// defaults to it being off.
func NewDB(path string) (*DB, error) {
	return NewDBWithClock(path, timeutil.RealClock{})
}

// NewDBWithClock opens the database with an explicit time source for
// created_at stamps. Tests use this with a timeutil.MockClock.
func NewDBWithClock(path string, clock timeutil.Clock) (*DB, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", path)
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, &StorageError{Op: "open " + path, Err: err}
	}

	// Single local writer: collapse the pool to one connection and let
	// database/sql serialise access to it. Cross-process contention is left
	// to SQLite's own file locking plus the busy timeout.
	sqlDB.SetMaxOpenConns(1)

	return &DB{DB: sqlDB, clock: clock}, nil
}

// Init idempotently ensures the schema exists. Safe to call on an already
// populated database file.
func (db *DB) Init() error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return &StorageError{Op: "init schema", Err: err}
	}
	return nil
}

// Backup writes an online snapshot of the database to path using VACUUM
// INTO. The snapshot is a standalone database file.
func (db *DB) Backup(path string) error {
	if _, err := db.Exec("VACUUM INTO ?", path); err != nil {
		return &StorageError{Op: "backup to " + path, Err: err}
	}
	return nil
}

// now returns the current UTC time truncated to whole seconds, in sortable
// RFC 3339 form with a Z suffix. Second precision keeps the on-disk
// representation stable and lexically sortable.
func (db *DB) now() string {
	return db.clock.Now().UTC().Truncate(time.Second).Format(time.RFC3339)
}
