package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"transitanalysis.onebusaway.org/internal/app"
	"transitanalysis.onebusaway.org/internal/appconf"
	"transitanalysis.onebusaway.org/internal/frequency"
	"transitanalysis.onebusaway.org/internal/logging"
	"transitanalysis.onebusaway.org/internal/restapi"
	"transitanalysis.onebusaway.org/internal/schedule"
)

func runServe(ctx context.Context, args []string, stdout, stderr io.Writer) (err error) {
	fs, common := newFlagSet("serve", stderr)
	port := fs.Int("port", 0, "API server port")
	dbPath := fs.String("db", "", "Schedule store: SQLite path or PostgreSQL DSN")

	if _, err := parseArgs(fs, args, 0, "none"); err != nil {
		return err
	}

	rt, err := common.start(stderr, func(cfg *appconf.Config) {
		if *port != 0 {
			cfg.Port = *port
		}
		if *dbPath != "" {
			cfg.DBPath = *dbPath
		}
	})
	if err != nil {
		return err
	}
	defer rt.Close()

	store, err := schedule.Open(ctx, rt.cfg.DBPath, rt.cfg.Env)
	if err != nil {
		return err
	}
	defer logging.HandleDeferredError(&err, store.Close, rt.logger, "close_schedule_store")

	application := &app.Application{
		Config:  rt.cfg,
		Logger:  rt.logger,
		Store:   store,
		Counter: frequency.NewCounter(store, frequency.WithLogger(rt.logger)),
		Metrics: rt.metrics,
	}
	api := restapi.NewRestAPI(application)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", rt.cfg.Port),
		Handler:      api.Handler(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		ErrorLog:     slog.NewLogLogger(rt.logger.Handler(), slog.LevelError),
	}

	return serveUntilDone(ctx, srv, rt.logger)
}

// serveUntilDone runs srv until ctx is cancelled, then shuts it down gracefully.
func serveUntilDone(ctx context.Context, srv *http.Server, logger *slog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("error shutting down server: %w", err)
	}
	logger.Info("server stopped")
	return nil
}
