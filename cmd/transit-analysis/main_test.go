package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"transitanalysis.onebusaway.org/internal/features"
	"transitanalysis.onebusaway.org/internal/gtfstest"
	"transitanalysis.onebusaway.org/internal/solver/solvertest"
	"transitanalysis.onebusaway.org/internal/timewindow"
)

func isolateEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"APP_ENV", "TRANSIT_DB_PATH", "SOLVER_URL", "NATS_URL", "METRICS_ADDR", "LOG_LEVEL", "API_KEYS", "PORT", "RATE_LIMIT"} {
		t.Setenv(k, "")
	}
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

// importFeed writes the test feed and imports it into a new schedule store.
func importFeed(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	zipPath := filepath.Join(dir, "feed.zip")
	require.NoError(t, os.WriteFile(zipPath, gtfstest.Zip(t, gtfstest.Files()), 0o644))

	dbPath := filepath.Join(dir, "gtfs.db")
	code, _, stderr := runCLI(t, "import", "-db", dbPath, "-env", "test", zipPath)
	require.Equal(t, exitOK, code, stderr)
	return dbPath
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, exitOK, exitCode(nil))
	assert.Equal(t, exitOK, exitCode(flag.ErrHelp))
	assert.Equal(t, exitInput, exitCode(&usageError{msg: "bad"}))
	assert.Equal(t, exitInput, exitCode(&timewindow.InputError{Field: "day", Message: "bad"}))
	assert.Equal(t, exitError, exitCode(errors.New("boom")))
}

func TestRunWithoutCommand(t *testing.T) {
	code, _, stderr := runCLI(t)
	assert.Equal(t, exitInput, code)
	assert.Contains(t, stderr, "Usage: transit-analysis")

	code, stdout, _ := runCLI(t, "help")
	assert.Equal(t, exitOK, code)
	assert.Contains(t, stdout, "count-trips")

	code, _, stderr = runCLI(t, "explode")
	assert.Equal(t, exitInput, code)
	assert.Contains(t, stderr, `unknown command "explode"`)
}

func TestCountTrips(t *testing.T) {
	isolateEnv(t)
	dbPath := importFeed(t)
	output := filepath.Join(t.TempDir(), "stops.shp")

	code, stdout, stderr := runCLI(t, "count-trips", output, dbPath, "Monday", "07:30", "09:30", "Departures")
	require.Equal(t, exitOK, code, stderr)
	assert.Contains(t, stdout, "at 3 stops")
	assert.Contains(t, stderr, "Writing output data...")

	layer, err := features.OpenStopLayer(output)
	require.NoError(t, err)
	defer layer.Close() // nolint:errcheck

	records, err := layer.Records(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 3)
	for _, r := range records {
		if r.Stop.ID == "S1" {
			assert.Equal(t, 2, r.Values.TripCount)
			require.NotNil(t, r.Values.MaxWaitMinutes)
			assert.Equal(t, 59, *r.Values.MaxWaitMinutes)
		}
	}
}

func TestCountTripsInputErrors(t *testing.T) {
	isolateEnv(t)
	output := filepath.Join(t.TempDir(), "stops.shp")

	code, _, _ := runCLI(t, "count-trips", output, "missing.db", "Someday", "07:30", "09:30", "departures")
	assert.Equal(t, exitInput, code)

	code, _, _ = runCLI(t, "count-trips", output, "missing.db", "Monday", "07:30")
	assert.Equal(t, exitInput, code)

	code, _, _ = runCLI(t, "count-trips", output, filepath.Join(t.TempDir(), "missing.db"), "Monday", "07:30", "09:30", "departures")
	assert.Equal(t, exitError, code, "a missing store is not an input error")
}

func TestTimeLapse(t *testing.T) {
	isolateEnv(t)
	srv := solvertest.NewServer()
	defer srv.Close()

	output := filepath.Join(t.TempDir(), "areas.shp")
	code, stdout, stderr := runCLI(t, "time-lapse", "-solver-url", srv.URL,
		"Walk", output, "Monday", "08:00", "Monday", "09:00", "20")
	require.Equal(t, exitOK, code, stderr)
	assert.Contains(t, stdout, "solved 4 times of day")

	layer, err := features.OpenPolygonLayer(output)
	require.NoError(t, err)
	defer layer.Close() // nolint:errcheck

	polys, err := layer.Polygons(context.Background())
	require.NoError(t, err)
	require.Len(t, polys, 4)
	assert.Equal(t, "1900-01-01 08:00:00", polys[0].TimeOfDay)
	assert.Equal(t, "1900-01-01 09:00:00", polys[3].TimeOfDay)

	checkOuts, checkIns := srv.Counts()
	assert.Equal(t, 1, checkOuts)
	assert.Equal(t, 1, checkIns)
}

func TestTimeLapseLicenseUnavailable(t *testing.T) {
	isolateEnv(t)
	srv := solvertest.NewServer()
	defer srv.Close()
	srv.SetUnavailable(true)

	output := filepath.Join(t.TempDir(), "areas.shp")
	code, stdout, _ := runCLI(t, "time-lapse", "-solver-url", srv.URL,
		"Walk", output, "Monday", "08:00", "Monday", "09:00", "20")
	assert.Equal(t, exitOK, code)
	assert.Contains(t, stdout, "aborted")
	assert.NoFileExists(t, output)
}

func TestTimeLapseInputErrors(t *testing.T) {
	isolateEnv(t)
	srv := solvertest.NewServer()
	defer srv.Close()
	output := filepath.Join(t.TempDir(), "areas.shp")

	tests := []struct {
		name string
		args []string
	}{
		{"non-numeric increment", []string{"Walk", output, "Monday", "08:00", "Monday", "09:00", "often"}},
		{"mixed day modes", []string{"Walk", output, "Monday", "08:00", "20240708", "09:00", "20"}},
		{"end before start", []string{"Walk", output, "Monday", "09:00", "Monday", "08:00", "20"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"time-lapse", "-solver-url", srv.URL}, tt.args...)
			code, _, _ := runCLI(t, args...)
			assert.Equal(t, exitInput, code)
		})
	}

	checkOuts, _ := srv.Counts()
	assert.Zero(t, checkOuts, "no license is taken for bad input")
}

func TestTimeLapseRequiresSolverURL(t *testing.T) {
	isolateEnv(t)
	output := filepath.Join(t.TempDir(), "areas.shp")
	code, _, stderr := runCLI(t, "time-lapse", "Walk", output, "Monday", "08:00", "Monday", "09:00", "20")
	assert.Equal(t, exitInput, code)
	assert.Contains(t, stderr, "solver URL is required")
}

func TestImportReportsCounts(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()
	zipPath := filepath.Join(dir, "feed.zip")
	require.NoError(t, os.WriteFile(zipPath, gtfstest.Zip(t, gtfstest.Files()), 0o644))

	dbPath := filepath.Join(dir, "gtfs.db")
	code, stdout, stderr := runCLI(t, "import", "-db", dbPath, zipPath)
	require.Equal(t, exitOK, code, stderr)
	assert.Contains(t, stdout, "3 stops, 5 trips, 8 stop times (Test Transit)")

	code, _, stderr = runCLI(t, "import", "-db", dbPath, filepath.Join(dir, "missing.zip"))
	assert.Equal(t, exitError, code)
	assert.Contains(t, stderr, "error reading GTFS file")
}
