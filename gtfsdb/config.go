package gtfsdb

import (
	"log/slog"

	"transitanalysis.onebusaway.org/internal/appconf"
)

// Config holds configuration options for the Client
type Config struct {
	// Database configuration
	DBPath  string // Path to SQLite database file
	Env     appconf.Environment
	Logger  *slog.Logger
	verbose bool // Verbose logging
}

func NewConfig(dbPath string, env appconf.Environment, verbose bool) Config {
	config := Config{
		DBPath:  dbPath,
		Env:     env,
		verbose: verbose,
	}

	return config
}
