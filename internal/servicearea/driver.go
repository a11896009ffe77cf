// Package servicearea solves a service area layer at a sequence of times of day and
// collects the polygons into one output layer for a time-lapse.
package servicearea

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"transitanalysis.onebusaway.org/internal/features"
	"transitanalysis.onebusaway.org/internal/logging"
	"transitanalysis.onebusaway.org/internal/metrics"
	"transitanalysis.onebusaway.org/internal/publisher"
	"transitanalysis.onebusaway.org/internal/solver"
	"transitanalysis.onebusaway.org/internal/timewindow"
)

const toolName = "time-lapse"

// ErrLicenseUnavailable is the reason of an Aborted outcome when the network extension
// cannot be checked out.
var ErrLicenseUnavailable = errors.New("network analyst license is unavailable")

// Solver is the network analysis service.
type Solver interface {
	ExtensionAvailable(ctx context.Context, name string) (bool, error)
	CheckOut(ctx context.Context, name string) error
	CheckIn(ctx context.Context, name string) error
	Solve(ctx context.Context, layer string, timeOfDay time.Time) ([]features.Polygon, error)
}

// EventPublisher receives a SolvedEvent after every solve.
type EventPublisher interface {
	PublishSolved(ev publisher.SolvedEvent) error
}

type Status int

const (
	Completed Status = iota
	Aborted
)

func (s Status) String() string {
	if s == Aborted {
		return "aborted"
	}
	return "completed"
}

// Outcome describes how a run ended. An Aborted run stopped before any solve.
type Outcome struct {
	Status   Status
	Reason   error
	RunID    string
	Solves   int
	Polygons int
}

type Driver struct {
	solver    Solver
	openLayer func(path string) (features.PolygonLayer, error)
	logger    *slog.Logger
	metrics   *metrics.Collector
	events    EventPublisher
}

type Option func(*Driver)

func WithLogger(logger *slog.Logger) Option {
	return func(d *Driver) { d.logger = logger }
}

func WithMetrics(m *metrics.Collector) Option {
	return func(d *Driver) { d.metrics = m }
}

func WithPublisher(p EventPublisher) Option {
	return func(d *Driver) { d.events = p }
}

// WithLayerOpener replaces the function that opens output polygon layers.
func WithLayerOpener(open func(path string) (features.PolygonLayer, error)) Option {
	return func(d *Driver) { d.openLayer = open }
}

func NewDriver(s Solver, opts ...Option) *Driver {
	d := &Driver{
		solver:    s,
		openLayer: features.OpenPolygonLayer,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run solves the layer at every timestamp of req in order. The first failed solve stops
// the run. Polygons written before the failure stay in the output.
func (d *Driver) Run(ctx context.Context, req Request) (out Outcome, err error) {
	out.RunID = uuid.NewString()
	logger := logging.ForRun(d.logger, toolName, out.RunID)

	defer func() {
		outcome := out.Status.String()
		if err != nil {
			outcome = "failed"
		}
		d.metrics.RunFinished(toolName, outcome)
	}()

	available, err := d.solver.ExtensionAvailable(ctx, solver.NetworkExtension)
	if err != nil {
		return out, err
	}
	if !available {
		logging.LogError(logger, "You must have a Network Analyst license to use this tool.", ErrLicenseUnavailable,
			slog.String("extension", solver.NetworkExtension))
		out.Status, out.Reason = Aborted, ErrLicenseUnavailable
		return out, nil
	}

	if err := d.solver.CheckOut(ctx, solver.NetworkExtension); err != nil {
		return out, err
	}
	license := newLease(func() error {
		return d.solver.CheckIn(context.WithoutCancel(ctx), solver.NetworkExtension)
	})
	defer logging.HandleDeferredError(&err, license.Release, logger, "check_in_extension")

	layer, err := d.openLayer(req.OutputPath)
	if err != nil {
		return out, fmt.Errorf("error opening output %s: %w", req.OutputPath, err)
	}
	defer logging.HandleDeferredError(&err, layer.Close, logger, "close_polygon_layer")

	for i, at := range req.Timestamps {
		timeOfDay := timewindow.FormatTimeOfDay(at)
		logger.Info(fmt.Sprintf("Solving Service Area at time %s", timeOfDay))

		start := time.Now()
		polys, err := d.solver.Solve(ctx, req.Layer, at)
		d.metrics.SolveObserve(time.Since(start), err)
		if err != nil {
			return out, fmt.Errorf("solve at %s failed: %w", timeOfDay, err)
		}

		for j := range polys {
			polys[j].TimeOfDay = timeOfDay
		}

		if err := d.store(ctx, layer, polys); err != nil {
			return out, fmt.Errorf("error writing polygons for %s: %w", timeOfDay, err)
		}

		out.Solves++
		out.Polygons += len(polys)
		d.metrics.PolygonsWrittenAdd(len(polys))

		d.publish(logger, publisher.SolvedEvent{
			RunID:     out.RunID,
			Layer:     req.Layer,
			TimeOfDay: timeOfDay,
			Sequence:  i + 1,
			Total:     len(req.Timestamps),
			Polygons:  publisher.Summarize(polys),
			Timestamp: time.Now().UTC(),
		})
	}

	logging.LogOperation(logger, "time_lapse_finished",
		slog.String("output", req.OutputPath),
		slog.Int("solves", out.Solves),
		slog.Int("polygons", out.Polygons))

	return out, nil
}

// store creates the output layer when it does not exist yet and appends otherwise.
func (d *Driver) store(ctx context.Context, layer features.PolygonLayer, polys []features.Polygon) error {
	exists, err := layer.Exists(ctx)
	if err != nil {
		return err
	}
	if !exists {
		return layer.Create(ctx, polys)
	}
	return layer.Append(ctx, polys)
}

func (d *Driver) publish(logger *slog.Logger, ev publisher.SolvedEvent) {
	if d.events == nil {
		return
	}
	if err := d.events.PublishSolved(ev); err != nil {
		logging.LogError(logger, "failed to publish solved event", err)
	}
}
