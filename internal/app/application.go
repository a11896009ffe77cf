package app

import (
	"log/slog"

	"transitanalysis.onebusaway.org/internal/appconf"
	"transitanalysis.onebusaway.org/internal/frequency"
	"transitanalysis.onebusaway.org/internal/metrics"
	"transitanalysis.onebusaway.org/internal/schedule"
)

// Application holds the dependencies for our HTTP handlers, helpers,
// and middleware.
type Application struct {
	Config  appconf.Config
	Logger  *slog.Logger
	Store   schedule.Store
	Counter *frequency.Counter
	Metrics *metrics.Collector
}
