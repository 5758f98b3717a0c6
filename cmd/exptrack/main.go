// Command exptrack is a minimal experiment tracker backed by a single local
// SQLite file. It records runs and per-run metric series, and can export,
// plot, and serve them.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/banshee-data/exptrack/internal/db"
)

const version = "0.1.0"

func main() {
	flag.Usage = printUsage
	flag.Parse()

	if flag.NArg() < 1 {
		printUsage()
		os.Exit(1)
	}

	os.Exit(run(flag.Arg(0), flag.Args()[1:]))
}

// run dispatches a top-level command and returns the process exit code:
// 0 success, 1 usage or storage failure, 2 not found / no data.
func run(command string, args []string) int {
	switch command {
	case "init":
		return cmdInit(args)
	case "run":
		return dispatchRun(args)
	case "metric":
		return dispatchMetric(args)
	case "serve":
		return cmdServe(args)
	case "backup":
		return cmdBackup(args)
	case "version":
		fmt.Printf("exptrack version %s\n", version)
		return 0
	case "help":
		printUsage()
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		return 1
	}
}

// openStore opens the database at path and idempotently ensures the schema.
func openStore(path string) (*db.DB, error) {
	store, err := db.NewDB(path)
	if err != nil {
		return nil, err
	}
	if err := store.Init(); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}

func cmdInit(args []string) int {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	dbPath := fs.String("db", "exptrack.db", "Path to SQLite DB file")
	fs.Parse(args)

	store, err := openStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[ERR] %v\n", err)
		return 1
	}
	defer store.Close()

	fmt.Printf("[OK] Initialized database: %s\n", *dbPath)
	return 0
}

func cmdBackup(args []string) int {
	fs := flag.NewFlagSet("backup", flag.ExitOnError)
	dbPath := fs.String("db", "exptrack.db", "Path to SQLite DB file")
	out := fs.String("out", "", "Destination path for the snapshot (required)")
	fs.Parse(args)

	if *out == "" {
		fmt.Fprintln(os.Stderr, "[ERR] --out is required")
		return 1
	}

	store, err := openStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[ERR] %v\n", err)
		return 1
	}
	defer store.Close()

	if err := store.Backup(*out); err != nil {
		fmt.Fprintf(os.Stderr, "[ERR] %v\n", err)
		return 1
	}
	fmt.Printf("[OK] Backup written to %s\n", *out)
	return 0
}

func printUsage() {
	fmt.Println(`exptrack - minimal experiment tracker (SQLite)

Usage: exptrack <command> [options]

Commands:
  init           Initialize the database
  run create     Create a new run (--name, --tags, --notes, --config)
  run list       List runs (--limit)
  run show       Show run details (--run)
  run delete     Delete a run and its metrics (--run)
  metric log     Log a metric point (--run, --name, --step, --value)
  metric export  Export a metric series to CSV (--run, --name, --out)
  metric plot    Plot a metric series (--run, --name, --sma, --out, --format)
  serve          Serve the HTTP viewer (--listen)
  backup         Snapshot the database (--out)
  version        Show exptrack version
  help           Show this help message

Common Flags:
  --db <file>    Path to the SQLite DB file (default: exptrack.db)`)
}
