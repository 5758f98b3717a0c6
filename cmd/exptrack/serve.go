package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/banshee-data/exptrack/internal/api"
	"github.com/banshee-data/exptrack/internal/monitoring"
)

func cmdServe(args []string) int {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	dbPath := fs.String("db", "exptrack.db", "Path to SQLite DB file")
	listen := fs.String("listen", ":8080", "Listen address")
	fs.Parse(args)

	if *listen == "" {
		fmt.Fprintln(os.Stderr, "[ERR] --listen is required")
		return 1
	}

	store, err := openStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[ERR] %v\n", err)
		return 1
	}
	defer store.Close()

	server := api.NewServer(store)
	monitoring.Logf("serving %s on %s", *dbPath, *listen)
	if err := http.ListenAndServe(*listen, api.LoggingMiddleware(server.ServeMux())); err != nil {
		fmt.Fprintf(os.Stderr, "[ERR] %v\n", err)
		return 1
	}
	return 0
}
