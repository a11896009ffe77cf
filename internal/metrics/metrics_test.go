package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gathered(t *testing.T, c *Collector, name string) []*dto.Metric {
	t.Helper()
	families, err := c.Registry().Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() == name {
			return f.GetMetric()
		}
	}
	return nil
}

func TestCollectorCounts(t *testing.T) {
	c := NewCollector()

	c.RunFinished("count-trips", "completed")
	c.RunFinished("count-trips", "completed")
	c.SolveObserve(10*time.Millisecond, nil)
	c.SolveObserve(10*time.Millisecond, errors.New("boom"))
	c.PolygonsWrittenAdd(3)
	c.StopsCounted(5, 12)
	c.NATSSetConnected(true)

	runs := gathered(t, c, "transit_analysis_runs_total")
	require.Len(t, runs, 1)
	assert.Equal(t, 2.0, runs[0].GetCounter().GetValue())

	solves := gathered(t, c, "transit_analysis_solves_total")
	assert.Len(t, solves, 2)

	polys := gathered(t, c, "transit_analysis_polygons_written_total")
	require.Len(t, polys, 1)
	assert.Equal(t, 3.0, polys[0].GetCounter().GetValue())

	visits := gathered(t, c, "transit_analysis_stop_visits_total")
	require.Len(t, visits, 1)
	assert.Equal(t, 12.0, visits[0].GetCounter().GetValue())

	connected := gathered(t, c, "transit_analysis_nats_connected")
	require.Len(t, connected, 1)
	assert.Equal(t, 1.0, connected[0].GetGauge().GetValue())
}

func TestNilCollector(t *testing.T) {
	var c *Collector
	assert.NotPanics(t, func() {
		c.RunFinished("time-lapse", "aborted")
		c.StageObserve("count", time.Second)
		c.SolveObserve(time.Second, nil)
		c.PolygonsWrittenAdd(1)
		c.StopsCounted(1, 1)
		c.NATSPublishedInc()
		c.NATSPublishErrInc()
		c.NATSSetConnected(false)
		c.HTTPObserve(http.MethodGet, http.StatusOK, time.Second)
	})
}

func TestHandler(t *testing.T) {
	c := NewCollector()
	c.HTTPObserve(http.MethodGet, http.StatusOK, time.Millisecond)

	srv := httptest.NewServer(c.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close() // nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "transit_analysis_http_requests_total")
}
