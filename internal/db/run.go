package db

import (
	"database/sql"
	"encoding/json"
	"fmt"
)

// Run represents one recorded experiment execution. Runs are read-only after
// creation except for deletion, which cascades to their metric points.
type Run struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	CreatedAt  string `json:"created_at"`
	Tags       string `json:"tags"`
	Notes      string `json:"notes"`
	ConfigJSON string `json:"config_json"`
}

// Config deserializes the stored config blob back into a structured value.
func (r *Run) Config() (map[string]any, error) {
	var cfg map[string]any
	if err := json.Unmarshal([]byte(r.ConfigJSON), &cfg); err != nil {
		return nil, fmt.Errorf("decode config for run %d: %w", r.ID, err)
	}
	return cfg, nil
}

// CreateRun records a new run and returns its store-assigned id. The config
// map is serialized to canonical JSON before storage (Go's encoding/json
// emits map keys in sorted order, so equal configs serialize identically);
// a nil config is stored as an empty object.
func (db *DB) CreateRun(name, tags, notes string, config map[string]any) (int64, error) {
	if name == "" {
		return 0, fmt.Errorf("run name must not be empty")
	}
	if config == nil {
		config = map[string]any{}
	}
	configJSON, err := json.Marshal(config)
	if err != nil {
		return 0, &SerializationError{Err: err}
	}

	result, err := db.Exec(
		"INSERT INTO runs (name, created_at, tags, notes, config_json) VALUES (?, ?, ?, ?, ?)",
		name, db.now(), tags, notes, string(configJSON),
	)
	if err != nil {
		return 0, &StorageError{Op: "create run", Err: err}
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, &StorageError{Op: "read run insert id", Err: err}
	}
	return id, nil
}

// ListRuns returns up to limit runs, most recently created first (descending
// by id). An empty database yields an empty slice, not an error.
func (db *DB) ListRuns(limit int) ([]Run, error) {
	rows, err := db.Query(
		"SELECT id, name, created_at, tags, notes, config_json FROM runs ORDER BY id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, &StorageError{Op: "list runs", Err: err}
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.Name, &r.CreatedAt, &r.Tags, &r.Notes, &r.ConfigJSON); err != nil {
			return nil, &StorageError{Op: "scan run", Err: err}
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, &StorageError{Op: "list runs", Err: err}
	}
	return runs, nil
}

// GetRun returns the run with the given id, or (nil, nil) if no such run
// exists. Absence is a result state, not an error.
func (db *DB) GetRun(id int64) (*Run, error) {
	var r Run
	err := db.QueryRow(
		"SELECT id, name, created_at, tags, notes, config_json FROM runs WHERE id = ?",
		id,
	).Scan(&r.ID, &r.Name, &r.CreatedAt, &r.Tags, &r.Notes, &r.ConfigJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, &StorageError{Op: fmt.Sprintf("get run %d", id), Err: err}
	}
	return &r, nil
}

// DeleteRun removes the run and, through the cascading foreign key, all of
// its metric points in one atomic statement. It reports whether a run with
// that id existed.
func (db *DB) DeleteRun(id int64) (bool, error) {
	result, err := db.Exec("DELETE FROM runs WHERE id = ?", id)
	if err != nil {
		return false, &StorageError{Op: fmt.Sprintf("delete run %d", id), Err: err}
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, &StorageError{Op: fmt.Sprintf("delete run %d", id), Err: err}
	}
	return n > 0, nil
}
