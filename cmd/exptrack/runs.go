package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
)

func dispatchRun(args []string) int {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: exptrack run <create|list|show|delete> [options]")
		return 1
	}
	switch args[0] {
	case "create":
		return cmdRunCreate(args[1:])
	case "list":
		return cmdRunList(args[1:])
	case "show":
		return cmdRunShow(args[1:])
	case "delete":
		return cmdRunDelete(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown run command: %s\n", args[0])
		return 1
	}
}

func cmdRunCreate(args []string) int {
	fs := flag.NewFlagSet("run create", flag.ExitOnError)
	dbPath := fs.String("db", "exptrack.db", "Path to SQLite DB file")
	name := fs.String("name", "", "Run name (required)")
	tags := fs.String("tags", "", "Free-form tags")
	notes := fs.String("notes", "", "Free-form notes")
	configJSON := fs.String("config", "{}", `JSON object with config (e.g. '{"epochs":100}')`)
	fs.Parse(args)

	if *name == "" {
		fmt.Fprintln(os.Stderr, "[ERR] --name is required")
		return 1
	}

	var config map[string]any
	if err := json.Unmarshal([]byte(*configJSON), &config); err != nil {
		fmt.Fprintf(os.Stderr, "[ERR] invalid --config JSON: %v\n", err)
		return 1
	}

	store, err := openStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[ERR] %v\n", err)
		return 1
	}
	defer store.Close()

	runID, err := store.CreateRun(*name, *tags, *notes, config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[ERR] %v\n", err)
		return 1
	}
	fmt.Printf("[OK] Created run id=%d name=%s\n", runID, *name)
	return 0
}

func cmdRunList(args []string) int {
	fs := flag.NewFlagSet("run list", flag.ExitOnError)
	dbPath := fs.String("db", "exptrack.db", "Path to SQLite DB file")
	limit := fs.Int("limit", 50, "Maximum number of runs to list")
	fs.Parse(args)

	store, err := openStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[ERR] %v\n", err)
		return 1
	}
	defer store.Close()

	runs, err := store.ListRuns(*limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[ERR] %v\n", err)
		return 1
	}
	if len(runs) == 0 {
		fmt.Println("(no runs)")
		return 0
	}
	for _, r := range runs {
		fmt.Printf("- id=%d | %s | %s | tags=%s\n", r.ID, r.CreatedAt, r.Name, r.Tags)
	}
	return 0
}

func cmdRunShow(args []string) int {
	fs := flag.NewFlagSet("run show", flag.ExitOnError)
	dbPath := fs.String("db", "exptrack.db", "Path to SQLite DB file")
	runID := fs.Int64("run", 0, "Run id (required)")
	fs.Parse(args)

	store, err := openStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[ERR] %v\n", err)
		return 1
	}
	defer store.Close()

	r, err := store.GetRun(*runID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[ERR] %v\n", err)
		return 1
	}
	if r == nil {
		fmt.Fprintln(os.Stderr, "[ERR] Run not found")
		return 2
	}

	names, err := store.ListMetricNames(r.ID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[ERR] %v\n", err)
		return 1
	}

	fmt.Printf("id: %d\n", r.ID)
	fmt.Printf("name: %s\n", r.Name)
	fmt.Printf("created_at: %s\n", r.CreatedAt)
	fmt.Printf("tags: %s\n", r.Tags)
	fmt.Printf("notes: %s\n", r.Notes)
	fmt.Printf("config: %s\n", r.ConfigJSON)
	if len(names) == 0 {
		fmt.Println("metrics: (none)")
	} else {
		fmt.Printf("metrics: %s\n", strings.Join(names, ", "))
	}
	return 0
}

func cmdRunDelete(args []string) int {
	fs := flag.NewFlagSet("run delete", flag.ExitOnError)
	dbPath := fs.String("db", "exptrack.db", "Path to SQLite DB file")
	runID := fs.Int64("run", 0, "Run id (required)")
	fs.Parse(args)

	store, err := openStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[ERR] %v\n", err)
		return 1
	}
	defer store.Close()

	deleted, err := store.DeleteRun(*runID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[ERR] %v\n", err)
		return 1
	}
	if !deleted {
		fmt.Fprintln(os.Stderr, "[ERR] Run not found")
		return 2
	}
	fmt.Println("[OK] deleted")
	return 0
}
