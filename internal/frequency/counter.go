// Package frequency counts the scheduled trips visiting every stop during a time window.
package frequency

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"transitanalysis.onebusaway.org/internal/features"
	"transitanalysis.onebusaway.org/internal/logging"
	"transitanalysis.onebusaway.org/internal/metrics"
	"transitanalysis.onebusaway.org/internal/publisher"
	"transitanalysis.onebusaway.org/internal/schedule"
	"transitanalysis.onebusaway.org/internal/timewindow"
)

const toolName = "count-trips"

// Request is a validated trip count.
type Request struct {
	OutputPath string
	Day        timewindow.ServiceDay
	Window     timewindow.SecondsWindow
	Direction  schedule.Direction
}

// ParseRequest validates the raw tool inputs. Times are HH:MM and may run past 23:59 to
// reach trips after midnight.
func ParseRequest(outputPath, day, startTime, endTime, direction string) (Request, error) {
	serviceDay, err := timewindow.ResolveServiceDay(day)
	if err != nil {
		return Request{}, err
	}
	window, err := timewindow.ParseSecondsWindow(startTime, endTime)
	if err != nil {
		return Request{}, err
	}
	dir, err := schedule.ParseDirection(direction)
	if err != nil {
		return Request{}, err
	}
	return Request{OutputPath: outputPath, Day: serviceDay, Window: window, Direction: dir}, nil
}

// Result describes a finished count.
type Result struct {
	RunID      string
	OutputPath string
	Stops      int
	Visits     int
	Stats      map[string]StopStats
}

// EventPublisher receives a CountEvent when a run finishes.
type EventPublisher interface {
	PublishCount(ev publisher.CountEvent) error
}

type Counter struct {
	store     schedule.Store
	openLayer func(path string) (features.StopLayer, error)
	logger    *slog.Logger
	metrics   *metrics.Collector
	events    EventPublisher
}

type Option func(*Counter)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Counter) { c.logger = logger }
}

func WithMetrics(m *metrics.Collector) Option {
	return func(c *Counter) { c.metrics = m }
}

func WithPublisher(p EventPublisher) Option {
	return func(c *Counter) { c.events = p }
}

// WithLayerOpener replaces the function that opens output stop layers.
func WithLayerOpener(open func(path string) (features.StopLayer, error)) Option {
	return func(c *Counter) { c.openLayer = open }
}

func NewCounter(store schedule.Store, opts ...Option) *Counter {
	c := &Counter{
		store:     store,
		openLayer: features.OpenStopLayer,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Stats computes the statistics of every stop without writing any output.
func (c *Counter) Stats(ctx context.Context, stops []schedule.Stop, day timewindow.ServiceDay, window timewindow.SecondsWindow, dir schedule.Direction) (map[string]StopStats, int, error) {
	index, err := c.store.Visits(ctx, day, window, dir)
	if err != nil {
		return nil, 0, err
	}

	visits := 0
	stats := make(map[string]StopStats, len(stops))
	for _, s := range stops {
		v := index.For(s.ID)
		visits += len(v)
		stats[s.ID] = ComputeStats(v, window, index.IsServed(s.ID))
	}
	return stats, visits, nil
}

// Run creates the output stop layer, counts the trips at every stop and writes the
// statistics. A failure in any stage aborts the run with a *StageError.
func (c *Counter) Run(ctx context.Context, req Request) (res Result, err error) {
	runID := uuid.NewString()
	logger := logging.ForRun(c.logger, toolName, runID)
	res = Result{RunID: runID, OutputPath: req.OutputPath}

	defer func() {
		outcome := "completed"
		if err != nil {
			outcome = "failed"
			logging.LogError(logger, "Failed to count trips at stops.", err)
		}
		c.metrics.RunFinished(toolName, outcome)
	}()

	var (
		layer features.StopLayer
		stops []schedule.Stop
	)

	logger.Info("Creating feature class of GTFS stops...")
	err = c.stage(logger, StageCreateStops, func() error {
		var err error
		if stops, err = c.store.Stops(ctx); err != nil {
			return err
		}
		if layer, err = c.openLayer(req.OutputPath); err != nil {
			return err
		}
		return layer.Seed(ctx, stops)
	})
	if layer != nil {
		defer logging.HandleDeferredError(&err, layer.Close, logger, "close_stop_layer")
	}
	if err != nil {
		return res, err
	}

	logger.Info("Calculating the number of transit trips available during the time window...")
	err = c.stage(logger, StageCount, func() error {
		var err error
		res.Stats, res.Visits, err = c.Stats(ctx, stops, req.Day, req.Window, req.Direction)
		return err
	})
	if err != nil {
		return res, err
	}

	logger.Info("Writing output data...")
	err = c.stage(logger, StageWrite, func() error {
		values := make(map[string]features.StopValues, len(res.Stats))
		for id, s := range res.Stats {
			values[id] = s.Values()
		}
		return layer.Update(ctx, values)
	})
	if err != nil {
		return res, err
	}

	res.Stops = len(stops)
	c.metrics.StopsCounted(res.Stops, res.Visits)

	logging.LogOperation(logger, "trip_count_finished",
		slog.String("output", req.OutputPath),
		slog.String("day", req.Day.String()),
		slog.String("direction", req.Direction.String()),
		slog.Int("stops", res.Stops),
		slog.Int("visits", res.Visits))

	if c.events != nil {
		served := 0
		for _, s := range res.Stats {
			if s.MaxWait != nil {
				served++
			}
		}
		if perr := c.events.PublishCount(publisher.CountEvent{
			RunID:        runID,
			Output:       req.OutputPath,
			Day:          req.Day.String(),
			Direction:    req.Direction.String(),
			Stops:        res.Stops,
			Visits:       res.Visits,
			ServedStops:  served,
			WindowStart:  req.Window.Start,
			WindowEnd:    req.Window.End,
			FinishedTime: time.Now().UTC(),
		}); perr != nil {
			logging.LogError(logger, "failed to publish count event", perr)
		}
	}

	return res, nil
}

func (c *Counter) stage(logger *slog.Logger, stage Stage, fn func() error) error {
	start := time.Now()
	err := fn()
	c.metrics.StageObserve(string(stage), time.Since(start))
	if err != nil {
		return &StageError{
			Stage: stage,
			Err:   logging.LogStageFailure(logger, string(stage), stageMessages[stage], err),
		}
	}
	return nil
}
