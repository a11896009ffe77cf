package solver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"transitanalysis.onebusaway.org/internal/solver/solvertest"
)

func TestExtensionLifecycle(t *testing.T) {
	ctx := context.Background()
	srv := solvertest.NewServer()
	defer srv.Close()

	c := NewClient(srv.URL + "/")

	ok, err := c.ExtensionAvailable(ctx, NetworkExtension)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, c.CheckOut(ctx, NetworkExtension))
	require.NoError(t, c.CheckIn(ctx, NetworkExtension))

	outs, ins := srv.Counts()
	assert.Equal(t, 1, outs)
	assert.Equal(t, 1, ins)

	srv.SetUnavailable(true)
	ok, err = c.ExtensionAvailable(ctx, NetworkExtension)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSolve(t *testing.T) {
	srv := solvertest.NewServer()
	defer srv.Close()

	c := NewClient(srv.URL)
	at := time.Date(1900, 1, 1, 8, 20, 0, 0, time.UTC)

	polys, err := c.Solve(context.Background(), "Service Area", at)
	require.NoError(t, err)
	require.Len(t, polys, 1)

	assert.Equal(t, "Service Area : 0 - 15", polys[0].Name)
	assert.InDelta(t, 15.0, polys[0].ToBreak, 1e-9)
	require.Len(t, polys[0].Geometry, 1)
	assert.Len(t, polys[0].Geometry[0][0], 5)
	assert.Empty(t, polys[0].TimeOfDay, "the caller stamps the time of day")

	assert.Equal(t, []string{"1900-01-01T08:20:00"}, srv.SolvedTimes())
}

func TestSolveError(t *testing.T) {
	srv := solvertest.NewServer()
	defer srv.Close()
	srv.FailAt("1900-01-01T08:00:00")

	c := NewClient(srv.URL)
	_, err := c.Solve(context.Background(), "Service Area", time.Date(1900, 1, 1, 8, 0, 0, 0, time.UTC))
	require.Error(t, err)

	var solverErr *Error
	require.ErrorAs(t, err, &solverErr)
	assert.Equal(t, http.StatusUnprocessableEntity, solverErr.Status)
	assert.Contains(t, err.Error(), "no facilities could be located")
}

func TestSolveRejectsNonPolygons(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"type":"FeatureCollection","features":[{"type":"Feature","geometry":{"type":"Point","coordinates":[1,2]},"properties":{}}]}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Solve(context.Background(), "layer", time.Now())
	assert.ErrorContains(t, err, "want a polygon")
}

func TestSolveMultiPolygon(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"type":"FeatureCollection","features":[{"type":"Feature",
			"geometry":{"type":"MultiPolygon","coordinates":[[[[0,0],[1,0],[1,1],[0,0]]],[[[2,2],[3,2],[3,3],[2,2]]]]},
			"properties":{"Name":"A","FromBreak":15,"ToBreak":30}}]}`))
	}))
	defer srv.Close()

	polys, err := NewClient(srv.URL).Solve(context.Background(), "layer", time.Now())
	require.NoError(t, err)
	require.Len(t, polys, 1)
	assert.Len(t, polys[0].Geometry, 2)
	assert.Equal(t, orb.Point{2, 2}, polys[0].Geometry[1][0][0])
	assert.InDelta(t, 15.0, polys[0].FromBreak, 1e-9)
}

func TestErrorWithoutBody(t *testing.T) {
	err := &Error{Status: http.StatusServiceUnavailable}
	assert.Equal(t, "solver returned 503 Service Unavailable", err.Error())
}
