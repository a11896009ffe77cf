package gtfsdb

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"transitanalysis.onebusaway.org/internal/logging"
)

// Client is the main entry point for the library
type Client struct {
	config        Config
	DB            *sql.DB
	logger        *slog.Logger
	importRuntime time.Duration
}

// NewClient creates a new Client with the provided configuration
func NewClient(config Config) (*Client, error) {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	db, err := createDB(config)
	if err != nil {
		return nil, fmt.Errorf("unable to create DB: %w", err)
	}

	if config.verbose {
		logging.LogOperation(logger, "schedule_store_opened", slog.String("db_path", config.DBPath))
	}

	client := &Client{
		config: config,
		DB:     db,
		logger: logger.With(slog.String("component", "gtfsdb")),
	}
	return client, nil
}

func (c *Client) Close() error {
	return c.DB.Close()
}

// ImportRuntime reports how long the last import took.
func (c *Client) ImportRuntime() time.Duration {
	return c.importRuntime
}

// DownloadAndStore downloads GTFS data from the given URL and stores it in the database
func (c *Client) DownloadAndStore(ctx context.Context, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("error downloading GTFS data: %w", err)
	}
	defer logging.SafeCloseWithLogging(resp.Body, c.logger, "download_gtfs")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("error downloading GTFS data: %s returned %s", url, resp.Status)
	}

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("error reading GTFS data: %w", err)
	}

	return c.processAndStoreGTFSDataWithSource(ctx, b, url)
}

// ImportFromFile imports GTFS data from a local zip file into the database
func (c *Client) ImportFromFile(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("error reading GTFS file: %w", err)
	}

	return c.processAndStoreGTFSDataWithSource(ctx, data, path)
}

// ImportBytes imports an in-memory GTFS zip.
func (c *Client) ImportBytes(ctx context.Context, data []byte, source string) error {
	return c.processAndStoreGTFSDataWithSource(ctx, data, source)
}
