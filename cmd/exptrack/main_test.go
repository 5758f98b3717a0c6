package main

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
)

func TestRunDispatchUnknownCommand(t *testing.T) {
	if code := run("frobnicate", nil); code != 1 {
		t.Errorf("unknown command exit code = %d, want 1", code)
	}
}

func TestInitCreatesDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "exptrack.db")

	if code := run("init", []string{"--db", dbPath}); code != 0 {
		t.Fatalf("init exit code = %d", code)
	}
	if _, err := os.Stat(dbPath); err != nil {
		t.Errorf("database file missing after init: %v", err)
	}
}

func TestCreateLogExportWorkflow(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "exptrack.db")
	csvPath := filepath.Join(dir, "loss.csv")

	if code := run("run", []string{"create", "--db", dbPath, "--name", "trial", "--config", `{"epochs":2}`}); code != 0 {
		t.Fatalf("run create exit code = %d", code)
	}

	// ids are store-assigned starting from 1 in a fresh file
	for _, args := range [][]string{
		{"log", "--db", dbPath, "--run", "1", "--name", "loss", "--step", "1", "--value", "0.9"},
		{"log", "--db", dbPath, "--run", "1", "--name", "loss", "--step", "2", "--value", "0.7"},
	} {
		if code := run("metric", args); code != 0 {
			t.Fatalf("metric log exit code = %d", code)
		}
	}

	if code := run("metric", []string{"export", "--db", dbPath, "--run", "1", "--name", "loss", "--out", csvPath}); code != 0 {
		t.Fatalf("metric export exit code = %d", code)
	}

	f, err := os.Open(csvPath)
	if err != nil {
		t.Fatalf("opening exported CSV: %v", err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("parsing exported CSV: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("exported CSV has %d rows, want header + 2", len(rows))
	}
	if rows[0][0] != "step" || rows[0][1] != "value" {
		t.Errorf("CSV header = %v", rows[0])
	}
}

func TestNotFoundExitCodes(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "exptrack.db")
	if code := run("init", []string{"--db", dbPath}); code != 0 {
		t.Fatalf("init exit code = %d", code)
	}

	if code := run("run", []string{"show", "--db", dbPath, "--run", "99"}); code != 2 {
		t.Errorf("run show on missing run = %d, want 2", code)
	}
	if code := run("run", []string{"delete", "--db", dbPath, "--run", "99"}); code != 2 {
		t.Errorf("run delete on missing run = %d, want 2", code)
	}
	if code := run("metric", []string{"log", "--db", dbPath, "--run", "99", "--name", "loss", "--step", "0", "--value", "1"}); code != 2 {
		t.Errorf("metric log on missing run = %d, want 2", code)
	}
	if code := run("metric", []string{"export", "--db", dbPath, "--run", "99", "--name", "loss", "--out", filepath.Join(t.TempDir(), "x.csv")}); code != 2 {
		t.Errorf("metric export with no data = %d, want 2", code)
	}
}

func TestMetricPlotPNG(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "exptrack.db")
	pngPath := filepath.Join(dir, "loss.png")

	if code := run("run", []string{"create", "--db", dbPath, "--name", "plotme"}); code != 0 {
		t.Fatalf("run create exit code = %d", code)
	}
	for _, step := range []string{"1", "2", "3", "4"} {
		if code := run("metric", []string{"log", "--db", dbPath, "--run", "1", "--name", "loss", "--step", step, "--value", "0.5"}); code != 0 {
			t.Fatalf("metric log exit code = %d", code)
		}
	}

	if code := run("metric", []string{"plot", "--db", dbPath, "--run", "1", "--name", "loss", "--sma", "2", "--out", pngPath}); code != 0 {
		t.Fatalf("metric plot exit code = %d", code)
	}
	info, err := os.Stat(pngPath)
	if err != nil || info.Size() == 0 {
		t.Errorf("plot output missing or empty: %v", err)
	}
}

func TestBackupCommand(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "exptrack.db")
	backupPath := filepath.Join(dir, "snapshot.db")

	if code := run("run", []string{"create", "--db", dbPath, "--name", "keep"}); code != 0 {
		t.Fatalf("run create exit code = %d", code)
	}
	if code := run("backup", []string{"--db", dbPath, "--out", backupPath}); code != 0 {
		t.Fatalf("backup exit code = %d", code)
	}
	if _, err := os.Stat(backupPath); err != nil {
		t.Errorf("backup file missing: %v", err)
	}
}
