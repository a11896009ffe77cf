package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"transitanalysis.onebusaway.org/internal/appconf"
	"transitanalysis.onebusaway.org/internal/logging"
	"transitanalysis.onebusaway.org/internal/metrics"
	"transitanalysis.onebusaway.org/internal/publisher"
)

// commonFlags are accepted by every command. Set values override the config file and
// the environment.
type commonFlags struct {
	configPath  string
	env         string
	logLevel    string
	metricsAddr string
	natsURL     string
}

func newFlagSet(name string, stderr io.Writer) (*flag.FlagSet, *commonFlags) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)

	var c commonFlags
	fs.StringVar(&c.configPath, "config", "", "YAML configuration file")
	fs.StringVar(&c.env, "env", "", "Environment (development|test|production)")
	fs.StringVar(&c.logLevel, "log-level", "", "Log level (debug|info|warn|error)")
	fs.StringVar(&c.metricsAddr, "metrics-addr", "", "Address to expose Prometheus metrics on")
	fs.StringVar(&c.natsURL, "nats-url", "", "NATS server to publish run events to")
	return fs, &c
}

// parseArgs parses flags and checks the positional argument count.
func parseArgs(fs *flag.FlagSet, args []string, want int, names string) ([]string, error) {
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != want {
		return nil, &usageError{msg: fmt.Sprintf("expected %d arguments (%s), got %d", want, names, fs.NArg())}
	}
	return fs.Args(), nil
}

// session is the ambient state shared by the commands.
type session struct {
	cfg       appconf.Config
	logger    *slog.Logger
	metrics   *metrics.Collector
	publisher *publisher.NATSPublisher

	metricsSrv *http.Server
}

func (c *commonFlags) load() (appconf.Config, error) {
	cfg, err := appconf.Load(c.configPath)
	if err != nil {
		return appconf.Config{}, err
	}
	if c.env != "" {
		cfg.EnvName = c.env
		cfg.Env = appconf.EnvFlagToEnvironment(c.env)
	}
	if c.logLevel != "" {
		cfg.LogLevel = c.logLevel
	}
	if c.metricsAddr != "" {
		cfg.MetricsAddr = c.metricsAddr
	}
	if c.natsURL != "" {
		cfg.NATSURL = c.natsURL
	}
	if err := appconf.Validate(cfg); err != nil {
		return appconf.Config{}, err
	}
	return cfg, nil
}

// start builds the logger and the optional metrics server and NATS publisher. A NATS
// server that cannot be reached is logged and runs continue without events.
func (c *commonFlags) start(stderr io.Writer, override func(*appconf.Config)) (*session, error) {
	cfg, err := c.load()
	if err != nil {
		return nil, err
	}
	if override != nil {
		override(&cfg)
	}

	rt := &session{
		cfg:     cfg,
		logger:  logging.NewStructuredLogger(stderr, logging.ParseLevel(cfg.LogLevel)),
		metrics: metrics.NewCollector(),
	}

	if cfg.MetricsAddr != "" {
		rt.metricsSrv = rt.metrics.Serve(cfg.MetricsAddr, rt.logger)
	}

	if cfg.NATSURL != "" {
		p, err := publisher.NewNATSPublisher(cfg.NATSURL, rt.logger, rt.metrics)
		if err != nil {
			logging.LogError(rt.logger, "event publishing disabled", err)
		} else {
			rt.publisher = p
		}
	}

	return rt, nil
}

func (rt *session) Close() {
	if rt.publisher != nil {
		rt.publisher.Close()
	}
	if rt.metricsSrv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := rt.metricsSrv.Shutdown(ctx); err != nil {
			logging.LogError(rt.logger, "metrics server shutdown failed", err)
		}
	}
}
