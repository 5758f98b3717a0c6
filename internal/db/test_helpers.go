package db

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/banshee-data/exptrack/internal/timeutil"
)

// testEpoch is the fixed instant test databases stamp created_at with.
var testEpoch = time.Date(2025, 3, 15, 10, 30, 0, 0, time.UTC)

// setupTestDB creates an initialized store in a per-test temp directory with
// a mock clock pinned to testEpoch.
func setupTestDB(t *testing.T) (*DB, *timeutil.MockClock) {
	t.Helper()

	clock := timeutil.NewMockClock(testEpoch)
	db, err := NewDBWithClock(filepath.Join(t.TempDir(), "exptrack.db"), clock)
	if err != nil {
		t.Fatalf("NewDBWithClock failed: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("closing test db: %v", err)
		}
	})

	if err := db.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	return db, clock
}

// createTestRun creates a run with boilerplate metadata and returns its id.
func createTestRun(t *testing.T, db *DB, name string) int64 {
	t.Helper()

	id, err := db.CreateRun(name, "smoke", "", map[string]any{"lr": 0.01})
	if err != nil {
		t.Fatalf("CreateRun(%q) failed: %v", name, err)
	}
	return id
}
