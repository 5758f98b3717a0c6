package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/banshee-data/exptrack/internal/chart"
	"github.com/banshee-data/exptrack/internal/db"
	"github.com/banshee-data/exptrack/internal/series"
)

func dispatchMetric(args []string) int {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: exptrack metric <log|export|plot> [options]")
		return 1
	}
	switch args[0] {
	case "log":
		return cmdMetricLog(args[1:])
	case "export":
		return cmdMetricExport(args[1:])
	case "plot":
		return cmdMetricPlot(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown metric command: %s\n", args[0])
		return 1
	}
}

func cmdMetricLog(args []string) int {
	fs := flag.NewFlagSet("metric log", flag.ExitOnError)
	dbPath := fs.String("db", "exptrack.db", "Path to SQLite DB file")
	runID := fs.Int64("run", 0, "Run id (required)")
	name := fs.String("name", "", "Metric name (required)")
	step := fs.Int64("step", 0, "Step index")
	value := fs.Float64("value", 0, "Metric value")
	fs.Parse(args)

	if *name == "" {
		fmt.Fprintln(os.Stderr, "[ERR] --name is required")
		return 1
	}

	store, err := openStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[ERR] %v\n", err)
		return 1
	}
	defer store.Close()

	metricID, err := store.LogMetric(*runID, *name, *step, *value)
	if err != nil {
		var rerr *db.ReferentialIntegrityError
		if errors.As(err, &rerr) {
			fmt.Fprintln(os.Stderr, "[ERR] Run not found")
			return 2
		}
		fmt.Fprintf(os.Stderr, "[ERR] %v\n", err)
		return 1
	}
	fmt.Printf("[OK] metric_id=%d run=%d %s@%d=%v\n", metricID, *runID, *name, *step, *value)
	return 0
}

// loadSeries fetches and optionally smooths one series for export/plot
// commands. A missing or empty series is reported and returns ok=false.
func loadSeries(dbPath string, runID int64, name string, window int) (series.Series, bool) {
	store, err := openStore(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[ERR] %v\n", err)
		return nil, false
	}
	defer store.Close()

	s, err := store.GetMetricSeries(runID, name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[ERR] %v\n", err)
		return nil, false
	}
	if len(s) == 0 {
		fmt.Fprintln(os.Stderr, "[ERR] No data for that metric")
		return nil, false
	}
	if window > 1 {
		s = series.SmoothMovingAverage(s, window)
	}
	return s, true
}

func cmdMetricExport(args []string) int {
	fs := flag.NewFlagSet("metric export", flag.ExitOnError)
	dbPath := fs.String("db", "exptrack.db", "Path to SQLite DB file")
	runID := fs.Int64("run", 0, "Run id (required)")
	name := fs.String("name", "", "Metric name (required)")
	out := fs.String("out", "", "Destination CSV path (required)")
	fs.Parse(args)

	if *name == "" || *out == "" {
		fmt.Fprintln(os.Stderr, "[ERR] --name and --out are required")
		return 1
	}

	s, ok := loadSeries(*dbPath, *runID, *name, 1)
	if !ok {
		return 2
	}
	if err := series.ExportCSV(s, *out); err != nil {
		fmt.Fprintf(os.Stderr, "[ERR] %v\n", err)
		return 1
	}
	fmt.Printf("[OK] Exported to %s\n", *out)
	return 0
}

func cmdMetricPlot(args []string) int {
	fs := flag.NewFlagSet("metric plot", flag.ExitOnError)
	dbPath := fs.String("db", "exptrack.db", "Path to SQLite DB file")
	runID := fs.Int64("run", 0, "Run id (required)")
	name := fs.String("name", "", "Metric name (required)")
	sma := fs.Int("sma", 1, "Simple moving average window")
	out := fs.String("out", "", "Destination chart path (required)")
	format := fs.String("format", "png", "Chart format: png or html")
	fs.Parse(args)

	if *name == "" || *out == "" {
		fmt.Fprintln(os.Stderr, "[ERR] --name and --out are required")
		return 1
	}

	s, ok := loadSeries(*dbPath, *runID, *name, *sma)
	if !ok {
		return 2
	}

	title := fmt.Sprintf("run=%d metric=%s", *runID, *name)
	switch *format {
	case "png":
		if err := chart.RenderPNG(s, title, *name, *out); err != nil {
			fmt.Fprintf(os.Stderr, "[ERR] %v\n", err)
			return 2
		}
	case "html":
		f, err := os.Create(*out)
		if err != nil {
			fmt.Fprintf(os.Stderr, "[ERR] %v\n", err)
			return 2
		}
		defer f.Close()
		if err := chart.RenderHTML(f, title, *name, s); err != nil {
			fmt.Fprintf(os.Stderr, "[ERR] %v\n", err)
			return 2
		}
	default:
		fmt.Fprintf(os.Stderr, "[ERR] unknown format %q (want png or html)\n", *format)
		return 1
	}
	fmt.Printf("[OK] Plotted to %s\n", *out)
	return 0
}
