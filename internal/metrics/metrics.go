// Package metrics exposes Prometheus collectors for the analysis runs and the API server.
package metrics

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Collector struct {
	reg *prometheus.Registry

	Runs          *prometheus.CounterVec // tool, outcome labels
	StageDuration *prometheus.HistogramVec

	Solves          *prometheus.CounterVec // result label: ok|error
	SolveDuration   prometheus.Histogram
	PolygonsWritten prometheus.Counter

	StopsWritten prometheus.Counter
	StopVisits   prometheus.Counter

	NATSPublished   prometheus.Counter
	NATSPublishErrs prometheus.Counter
	NATSConnected   prometheus.Gauge

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
}

func NewCollector() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		Runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "transit_analysis_runs_total",
			Help: "Analysis runs by tool and outcome.",
		}, []string{"tool", "outcome"}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "transit_analysis_stage_duration_seconds",
			Help:    "Duration of trip count pipeline stages.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 15),
		}, []string{"stage"}),
		Solves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "transit_analysis_solves_total",
			Help: "Service area solves by result.",
		}, []string{"result"}),
		SolveDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "transit_analysis_solve_duration_seconds",
			Help:    "Duration of one service area solve.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 15),
		}),
		PolygonsWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "transit_analysis_polygons_written_total",
			Help: "Service area polygons written to output layers.",
		}),
		StopsWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "transit_analysis_stops_written_total",
			Help: "Stops written with trip statistics.",
		}),
		StopVisits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "transit_analysis_stop_visits_total",
			Help: "In-window stop visits counted.",
		}),
		NATSPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "transit_analysis_nats_published_total",
			Help: "Total NATS messages published.",
		}),
		NATSPublishErrs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "transit_analysis_nats_publish_errors_total",
			Help: "Total NATS publish errors.",
		}),
		NATSConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "transit_analysis_nats_connected",
			Help: "1 if NATS connection is established, 0 otherwise.",
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "transit_analysis_http_requests_total",
			Help: "API requests by method and status.",
		}, []string{"method", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "transit_analysis_http_request_duration_seconds",
			Help:    "API request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
	}

	reg.MustRegister(
		c.Runs, c.StageDuration,
		c.Solves, c.SolveDuration, c.PolygonsWritten,
		c.StopsWritten, c.StopVisits,
		c.NATSPublished, c.NATSPublishErrs, c.NATSConnected,
		c.HTTPRequests, c.HTTPDuration,
	)

	return c
}

// Registry returns the private registry the collectors live in.
func (c *Collector) Registry() *prometheus.Registry { return c.reg }

func (c *Collector) Handler() http.Handler { return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{}) }

// Serve starts an HTTP server exposing /metrics on the given address.
func (c *Collector) Serve(addr string, logger *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server error", slog.String("error", err.Error()))
		}
	}()
	logger.Info("metrics listening", slog.String("addr", addr))
	return srv
}

// The methods below are nil-safe so callers can run without a collector.

func (c *Collector) RunFinished(tool, outcome string) {
	if c == nil {
		return
	}
	c.Runs.WithLabelValues(tool, outcome).Inc()
}

func (c *Collector) StageObserve(stage string, d time.Duration) {
	if c == nil {
		return
	}
	c.StageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (c *Collector) SolveObserve(d time.Duration, err error) {
	if c == nil {
		return
	}
	c.SolveDuration.Observe(d.Seconds())
	result := "ok"
	if err != nil {
		result = "error"
	}
	c.Solves.WithLabelValues(result).Inc()
}

func (c *Collector) PolygonsWrittenAdd(n int) {
	if c == nil {
		return
	}
	c.PolygonsWritten.Add(float64(n))
}

func (c *Collector) StopsCounted(stops, visits int) {
	if c == nil {
		return
	}
	c.StopsWritten.Add(float64(stops))
	c.StopVisits.Add(float64(visits))
}

func (c *Collector) NATSPublishedInc() {
	if c == nil {
		return
	}
	c.NATSPublished.Inc()
}

func (c *Collector) NATSPublishErrInc() {
	if c == nil {
		return
	}
	c.NATSPublishErrs.Inc()
}

func (c *Collector) NATSSetConnected(connected bool) {
	if c == nil {
		return
	}
	if connected {
		c.NATSConnected.Set(1)
		return
	}
	c.NATSConnected.Set(0)
}

func (c *Collector) HTTPObserve(method string, status int, d time.Duration) {
	if c == nil {
		return
	}
	c.HTTPRequests.WithLabelValues(method, http.StatusText(status)).Inc()
	c.HTTPDuration.WithLabelValues(method).Observe(d.Seconds())
}
