package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"transitanalysis.onebusaway.org/internal/timewindow"
)

const (
	exitOK    = 0
	exitError = 1
	exitInput = 2
)

const usage = `Usage: transit-analysis <command> [flags] [arguments]

Commands:
  import      [-db path] <gtfs.zip|URL>
  time-lapse  [-solver-url URL] <layer> <output> <startDay> <startTime> <endDay> <endTime> <incrementMinutes>
  count-trips <outputStops> <scheduleStore> <day> <startTime> <endTime> <departures|arrivals>
  serve       [-port N] [-db path]

Common flags: -config file.yml -env name -log-level level -metrics-addr host:port -nats-url URL
`

type commandFunc func(ctx context.Context, args []string, stdout, stderr io.Writer) error

var commands = map[string]commandFunc{
	"import":      runImport,
	"time-lapse":  runTimeLapse,
	"count-trips": runCountTrips,
	"serve":       runServe,
}

// usageError reports a malformed command line.
type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return exitInput
	}

	switch args[0] {
	case "help", "-h", "-help", "--help":
		fmt.Fprint(stdout, usage)
		return exitOK
	}

	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", args[0], usage)
		return exitInput
	}

	err := cmd(ctx, args[1:], stdout, stderr)
	if err != nil && !errors.Is(err, flag.ErrHelp) {
		fmt.Fprintf(stderr, "%s: %v\n", args[0], err)
	}
	return exitCode(err)
}

// exitCode maps a command error to the process exit status. Input problems exit with 2
// and every other failure with 1.
func exitCode(err error) int {
	var ue *usageError
	switch {
	case err == nil, errors.Is(err, flag.ErrHelp):
		return exitOK
	case errors.As(err, &ue), timewindow.IsInputError(err):
		return exitInput
	default:
		return exitError
	}
}
