package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"transitanalysis.onebusaway.org/gtfsdb"
	"transitanalysis.onebusaway.org/internal/appconf"
	"transitanalysis.onebusaway.org/internal/logging"
)

func runImport(ctx context.Context, args []string, stdout, stderr io.Writer) (err error) {
	fs, common := newFlagSet("import", stderr)
	dbPath := fs.String("db", "", "SQLite schedule store to build")

	pos, err := parseArgs(fs, args, 1, "gtfs.zip|URL")
	if err != nil {
		return err
	}

	rt, err := common.start(stderr, func(cfg *appconf.Config) {
		if *dbPath != "" {
			cfg.DBPath = *dbPath
		}
	})
	if err != nil {
		return err
	}
	defer rt.Close()

	config := gtfsdb.NewConfig(rt.cfg.DBPath, rt.cfg.Env, rt.cfg.Verbose)
	config.Logger = rt.logger

	client, err := gtfsdb.NewClient(config)
	if err != nil {
		return err
	}
	defer logging.HandleDeferredError(&err, client.Close, rt.logger, "close_schedule_store")

	source := pos[0]
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		err = client.DownloadAndStore(ctx, source)
	} else {
		err = client.ImportFromFile(ctx, source)
	}
	if err != nil {
		return err
	}

	return reportImport(ctx, client, rt.cfg.DBPath, stdout, rt.logger)
}

// reportImport summarizes the store that was just built.
func reportImport(ctx context.Context, client *gtfsdb.Client, dbPath string, stdout io.Writer, logger *slog.Logger) error {
	meta, err := client.GetImportMetadata(ctx)
	if err != nil {
		return err
	}
	agencies, err := client.ListAgencies(ctx)
	if err != nil {
		return err
	}
	counts, err := client.TableCounts()
	if err != nil {
		return err
	}

	names := make([]string, len(agencies))
	for i, a := range agencies {
		names[i] = a.Name
	}

	logging.LogOperation(logger, "schedule_store_ready",
		slog.String("db_path", dbPath),
		slog.String("source", meta.FileSource),
		slog.String("file_hash", meta.FileHash),
		slog.Time("imported_at", meta.ImportedAt()),
		slog.Duration("duration", client.ImportRuntime()))

	fmt.Fprintf(stdout, "%s: %d stops, %d trips, %d stop times (%s)\n",
		dbPath, counts["stops"], counts["trips"], counts["stop_times"], strings.Join(names, ", "))
	return nil
}
