package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/banshee-data/exptrack/internal/db"
	"github.com/banshee-data/exptrack/internal/series"
)

// setupTestServer creates a store with one run and a short loss series,
// returning the test server and the run id.
func setupTestServer(t *testing.T) (*httptest.Server, int64) {
	t.Helper()

	store, err := db.NewDB(filepath.Join(t.TempDir(), "exptrack.db"))
	if err != nil {
		t.Fatalf("NewDB failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	if err := store.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	runID, err := store.CreateRun("api-test", "http", "", map[string]any{"epochs": 3})
	if err != nil {
		t.Fatalf("CreateRun failed: %v", err)
	}
	for step, value := range []float64{10, 20, 30} {
		if _, err := store.LogMetric(runID, "loss", int64(step), value); err != nil {
			t.Fatalf("LogMetric failed: %v", err)
		}
	}

	ts := httptest.NewServer(LoggingMiddleware(NewServer(store).ServeMux()))
	t.Cleanup(ts.Close)
	return ts, runID
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()

	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s failed: %v", url, err)
	}
	defer resp.Body.Close()

	if out != nil && resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decoding %s: %v", url, err)
		}
	}
	return resp.StatusCode
}

func TestListRuns(t *testing.T) {
	ts, runID := setupTestServer(t)

	var runs []db.Run
	if status := getJSON(t, ts.URL+"/api/runs", &runs); status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if len(runs) != 1 || runs[0].ID != runID || runs[0].Name != "api-test" {
		t.Errorf("runs = %+v", runs)
	}
}

func TestListRunsBadLimit(t *testing.T) {
	ts, _ := setupTestServer(t)

	if status := getJSON(t, ts.URL+"/api/runs?limit=zero", nil); status != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", status)
	}
}

func TestShowRun(t *testing.T) {
	ts, runID := setupTestServer(t)

	var detail struct {
		db.Run
		Metrics []string `json:"metrics"`
	}
	url := fmt.Sprintf("%s/api/run?id=%d", ts.URL, runID)
	if status := getJSON(t, url, &detail); status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if detail.Name != "api-test" {
		t.Errorf("detail.Name = %q", detail.Name)
	}
	if len(detail.Metrics) != 1 || detail.Metrics[0] != "loss" {
		t.Errorf("detail.Metrics = %v", detail.Metrics)
	}
}

func TestShowRunNotFound(t *testing.T) {
	ts, _ := setupTestServer(t)

	if status := getJSON(t, ts.URL+"/api/run?id=9999", nil); status != http.StatusNotFound {
		t.Errorf("status = %d, want 404", status)
	}
}

func TestShowSeries(t *testing.T) {
	ts, runID := setupTestServer(t)

	var s series.Series
	url := fmt.Sprintf("%s/api/series?run=%d&name=loss", ts.URL, runID)
	if status := getJSON(t, url, &s); status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	want := series.Series{{Step: 0, Value: 10}, {Step: 1, Value: 20}, {Step: 2, Value: 30}}
	if len(s) != len(want) {
		t.Fatalf("series = %v", s)
	}
	for i := range want {
		if s[i] != want[i] {
			t.Errorf("s[%d] = %v, want %v", i, s[i], want[i])
		}
	}
}

func TestShowSeriesSmoothed(t *testing.T) {
	ts, runID := setupTestServer(t)

	var s series.Series
	url := fmt.Sprintf("%s/api/series?run=%d&name=loss&sma=2", ts.URL, runID)
	if status := getJSON(t, url, &s); status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	want := series.Series{{Step: 0, Value: 10}, {Step: 1, Value: 15}, {Step: 2, Value: 25}}
	for i := range want {
		if s[i] != want[i] {
			t.Errorf("s[%d] = %v, want %v", i, s[i], want[i])
		}
	}
}

func TestShowSeriesNoData(t *testing.T) {
	ts, runID := setupTestServer(t)

	url := fmt.Sprintf("%s/api/series?run=%d&name=unknown", ts.URL, runID)
	if status := getJSON(t, url, nil); status != http.StatusNotFound {
		t.Errorf("status = %d, want 404", status)
	}
}

func TestChartPage(t *testing.T) {
	ts, runID := setupTestServer(t)

	resp, err := http.Get(fmt.Sprintf("%s/chart?run=%d&name=loss&sma=2", ts.URL, runID))
	if err != nil {
		t.Fatalf("GET /chart failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	ts, _ := setupTestServer(t)

	resp, err := http.Post(ts.URL+"/api/runs", "application/json", nil)
	if err != nil {
		t.Fatalf("POST failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", resp.StatusCode)
	}
}
