package main

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"transitanalysis.onebusaway.org/internal/appconf"
	"transitanalysis.onebusaway.org/internal/servicearea"
	"transitanalysis.onebusaway.org/internal/solver"
	"transitanalysis.onebusaway.org/internal/timewindow"
)

func runTimeLapse(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs, common := newFlagSet("time-lapse", stderr)
	solverURL := fs.String("solver-url", "", "Base URL of the network solver service")

	pos, err := parseArgs(fs, args, 7, "layer output startDay startTime endDay endTime incrementMinutes")
	if err != nil {
		return err
	}

	increment, err := strconv.Atoi(pos[6])
	if err != nil {
		return &timewindow.InputError{Field: "increment", Message: fmt.Sprintf("%q is not a whole number of minutes", pos[6])}
	}

	// Input is checked before anything external is touched.
	req, err := servicearea.ParseRequest(pos[0], pos[1], pos[2], pos[3], pos[4], pos[5], increment)
	if err != nil {
		return err
	}

	rt, err := common.start(stderr, func(cfg *appconf.Config) {
		if *solverURL != "" {
			cfg.SolverURL = *solverURL
		}
	})
	if err != nil {
		return err
	}
	defer rt.Close()

	if rt.cfg.SolverURL == "" {
		return &usageError{msg: "a solver URL is required (-solver-url or SOLVER_URL)"}
	}

	opts := []servicearea.Option{
		servicearea.WithLogger(rt.logger),
		servicearea.WithMetrics(rt.metrics),
	}
	if rt.publisher != nil {
		opts = append(opts, servicearea.WithPublisher(rt.publisher))
	}

	client := solver.NewClient(rt.cfg.SolverURL, solver.WithLogger(rt.logger))
	out, err := servicearea.NewDriver(client, opts...).Run(ctx, req)
	if err != nil {
		return err
	}

	if out.Status == servicearea.Aborted {
		fmt.Fprintf(stdout, "time-lapse aborted: %v\n", out.Reason)
		return nil
	}
	fmt.Fprintf(stdout, "solved %d times of day, wrote %d polygons to %s\n", out.Solves, out.Polygons, req.OutputPath)
	return nil
}
