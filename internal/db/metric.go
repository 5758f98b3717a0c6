package db

import (
	"fmt"

	"github.com/banshee-data/exptrack/internal/series"
)

// MetricPoint is one observation of a named metric within a run. Points are
// append-only; they are destroyed only when their run is deleted.
type MetricPoint struct {
	ID        int64   `json:"id"`
	RunID     int64   `json:"run_id"`
	Name      string  `json:"name"`
	Step      int64   `json:"step"`
	Value     float64 `json:"value"`
	CreatedAt string  `json:"created_at"`
}

// LogMetric appends one metric point and returns its store-assigned id.
// Repeated (run_id, name, step) combinations each produce a distinct stored
// point. Logging against a run id that does not exist fails with a
// ReferentialIntegrityError.
func (db *DB) LogMetric(runID int64, name string, step int64, value float64) (int64, error) {
	result, err := db.Exec(
		"INSERT INTO metrics (run_id, name, step, value, created_at) VALUES (?, ?, ?, ?, ?)",
		runID, name, step, value, db.now(),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return 0, &ReferentialIntegrityError{RunID: runID, Err: err}
		}
		return 0, &StorageError{Op: fmt.Sprintf("log metric %s for run %d", name, runID), Err: err}
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, &StorageError{Op: "read metric insert id", Err: err}
	}
	return id, nil
}

// ListMetricNames returns the distinct metric names logged under a run, in
// ascending lexical order.
func (db *DB) ListMetricNames(runID int64) ([]string, error) {
	rows, err := db.Query(
		"SELECT DISTINCT name FROM metrics WHERE run_id = ? ORDER BY name ASC",
		runID,
	)
	if err != nil {
		return nil, &StorageError{Op: fmt.Sprintf("list metric names for run %d", runID), Err: err}
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, &StorageError{Op: "scan metric name", Err: err}
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, &StorageError{Op: fmt.Sprintf("list metric names for run %d", runID), Err: err}
	}
	return names, nil
}

// GetMetricSeries returns the (step, value) series for one run and metric
// name, ascending by step with insertion order breaking ties. No matching
// points yields an empty series, not an error.
func (db *DB) GetMetricSeries(runID int64, name string) (series.Series, error) {
	rows, err := db.Query(
		"SELECT step, value FROM metrics WHERE run_id = ? AND name = ? ORDER BY step ASC, id ASC",
		runID, name,
	)
	if err != nil {
		return nil, &StorageError{Op: fmt.Sprintf("get series %s for run %d", name, runID), Err: err}
	}
	defer rows.Close()

	s := series.Series{}
	for rows.Next() {
		var p series.Point
		if err := rows.Scan(&p.Step, &p.Value); err != nil {
			return nil, &StorageError{Op: "scan series point", Err: err}
		}
		s = append(s, p)
	}
	if err := rows.Err(); err != nil {
		return nil, &StorageError{Op: fmt.Sprintf("get series %s for run %d", name, runID), Err: err}
	}
	return s, nil
}

// ListMetricPoints returns every metric point under a run, ordered by metric
// name then step.
func (db *DB) ListMetricPoints(runID int64) ([]MetricPoint, error) {
	rows, err := db.Query(
		"SELECT id, run_id, name, step, value, created_at FROM metrics WHERE run_id = ? ORDER BY name ASC, step ASC, id ASC",
		runID,
	)
	if err != nil {
		return nil, &StorageError{Op: fmt.Sprintf("list metric points for run %d", runID), Err: err}
	}
	defer rows.Close()

	points := []MetricPoint{}
	for rows.Next() {
		var p MetricPoint
		if err := rows.Scan(&p.ID, &p.RunID, &p.Name, &p.Step, &p.Value, &p.CreatedAt); err != nil {
			return nil, &StorageError{Op: "scan metric point", Err: err}
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, &StorageError{Op: fmt.Sprintf("list metric points for run %d", runID), Err: err}
	}
	return points, nil
}
