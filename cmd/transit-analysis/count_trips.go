package main

import (
	"context"
	"fmt"
	"io"

	"transitanalysis.onebusaway.org/internal/frequency"
	"transitanalysis.onebusaway.org/internal/logging"
	"transitanalysis.onebusaway.org/internal/schedule"
)

func runCountTrips(ctx context.Context, args []string, stdout, stderr io.Writer) (err error) {
	fs, common := newFlagSet("count-trips", stderr)

	pos, err := parseArgs(fs, args, 6, "outputStops scheduleStore day startTime endTime direction")
	if err != nil {
		return err
	}

	req, err := frequency.ParseRequest(pos[0], pos[2], pos[3], pos[4], pos[5])
	if err != nil {
		return err
	}

	rt, err := common.start(stderr, nil)
	if err != nil {
		return err
	}
	defer rt.Close()

	store, err := schedule.Open(ctx, pos[1], rt.cfg.Env)
	if err != nil {
		return err
	}
	defer logging.HandleDeferredError(&err, store.Close, rt.logger, "close_schedule_store")

	opts := []frequency.Option{
		frequency.WithLogger(rt.logger),
		frequency.WithMetrics(rt.metrics),
	}
	if rt.publisher != nil {
		opts = append(opts, frequency.WithPublisher(rt.publisher))
	}

	res, err := frequency.NewCounter(store, opts...).Run(ctx, req)
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "counted %d visits at %d stops, wrote %s\n", res.Visits, res.Stops, res.OutputPath)
	return nil
}
