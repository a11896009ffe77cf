// Package solver talks to the network analysis service that solves service area layers.
package solver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"transitanalysis.onebusaway.org/internal/features"
	"transitanalysis.onebusaway.org/internal/logging"
)

// NetworkExtension is the license extension the service area solver needs.
const NetworkExtension = "Network"

// solveTimeLayout is the time of day format sent with a solve request.
const solveTimeLayout = "2006-01-02T15:04:05"

// maxErrorBody caps how much of a failed response is kept in the error.
const maxErrorBody = 4096

// Client is an HTTP client for the solver service.
type Client struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(s *Client) { s.client = c }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Client) { s.logger = logger }
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: 5 * time.Minute,
		},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Error is a non-2xx response from the solver.
type Error struct {
	Status int
	Body   string
}

func (e *Error) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("solver returned %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("solver returned %d: %s", e.Status, e.Body)
}

type extensionStatus struct {
	Status string `json:"status"`
}

// ExtensionAvailable reports whether a license extension can be checked out.
func (c *Client) ExtensionAvailable(ctx context.Context, name string) (bool, error) {
	var status extensionStatus
	if err := c.do(ctx, http.MethodGet, "/extensions/"+url.PathEscape(name), nil, &status); err != nil {
		return false, fmt.Errorf("error checking extension %s: %w", name, err)
	}
	return strings.EqualFold(status.Status, "Available"), nil
}

func (c *Client) CheckOut(ctx context.Context, name string) error {
	if err := c.do(ctx, http.MethodPost, "/extensions/"+url.PathEscape(name)+"/checkout", nil, nil); err != nil {
		return fmt.Errorf("error checking out extension %s: %w", name, err)
	}
	return nil
}

func (c *Client) CheckIn(ctx context.Context, name string) error {
	if err := c.do(ctx, http.MethodPost, "/extensions/"+url.PathEscape(name)+"/checkin", nil, nil); err != nil {
		return fmt.Errorf("error checking in extension %s: %w", name, err)
	}
	return nil
}

type solveRequest struct {
	TimeOfDay string `json:"timeOfDay"`
}

// Solve runs the service area layer at a time of day and returns its polygons.
func (c *Client) Solve(ctx context.Context, layer string, timeOfDay time.Time) ([]features.Polygon, error) {
	body, err := json.Marshal(solveRequest{TimeOfDay: timeOfDay.Format(solveTimeLayout)})
	if err != nil {
		return nil, err
	}

	var fc geojson.FeatureCollection
	if err := c.do(ctx, http.MethodPost, "/layers/"+url.PathEscape(layer)+"/solve", body, &fc); err != nil {
		return nil, fmt.Errorf("error solving %s: %w", layer, err)
	}
	return polygonsFromFeatures(fc.Features)
}

func polygonsFromFeatures(fs []*geojson.Feature) ([]features.Polygon, error) {
	polys := make([]features.Polygon, 0, len(fs))
	for i, f := range fs {
		var mp orb.MultiPolygon
		switch g := f.Geometry.(type) {
		case orb.Polygon:
			mp = orb.MultiPolygon{g}
		case orb.MultiPolygon:
			mp = g
		default:
			return nil, fmt.Errorf("feature %d has geometry %T, want a polygon", i, f.Geometry)
		}

		polys = append(polys, features.Polygon{
			Name:      f.Properties.MustString("Name", ""),
			FromBreak: f.Properties.MustFloat64("FromBreak", 0),
			ToBreak:   f.Properties.MustFloat64("ToBreak", 0),
			Geometry:  mp,
		})
	}
	return polys, nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer logging.SafeCloseWithLogging(resp.Body, c.logger, "solver_response")

	c.logger.Debug("solver request",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &Error{Status: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("error decoding solver response: %w", err)
	}
	return nil
}
