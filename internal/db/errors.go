package db

import (
	"errors"
	"fmt"

	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// StorageError reports a failure of the backing database file: I/O error,
// corruption, locking, disk full. Failures are surfaced to the caller
// unmodified; the store never retries internally.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// ReferentialIntegrityError reports a foreign-key violation, such as logging
// a metric against a run id that does not exist (or was deleted).
type ReferentialIntegrityError struct {
	RunID int64
	Err   error
}

func (e *ReferentialIntegrityError) Error() string {
	return fmt.Sprintf("run %d does not exist: %v", e.RunID, e.Err)
}

func (e *ReferentialIntegrityError) Unwrap() error { return e.Err }

// SerializationError reports a run config that could not be serialized to
// JSON for storage.
type SerializationError struct {
	Err error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("serialize config: %v", e.Err)
}

func (e *SerializationError) Unwrap() error { return e.Err }

// isForeignKeyViolation reports whether err is a SQLite foreign-key
// constraint failure.
func isForeignKeyViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	code := se.Code()
	return code == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY || code == sqlite3.SQLITE_CONSTRAINT
}
