package frequency

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"transitanalysis.onebusaway.org/internal/schedule"
	"transitanalysis.onebusaway.org/internal/timewindow"
)

func visitsAt(seconds ...int) []schedule.Visit {
	out := make([]schedule.Visit, len(seconds))
	for i, s := range seconds {
		out[i] = schedule.Visit{TripID: "t", Seconds: s}
	}
	return out
}

func TestComputeStats(t *testing.T) {
	window := timewindow.SecondsWindow{Start: 3000, End: 10000}

	t.Run("gaps include the window edges", func(t *testing.T) {
		s := ComputeStats(visitsAt(3600, 5400, 9000), window, true)
		assert.Equal(t, 3, s.TripCount)
		assert.InDelta(t, 3/(7000.0/3600), s.TripsPerHour, 1e-9)
		require.NotNil(t, s.MaxWait)
		assert.Equal(t, 3600, *s.MaxWait)
	})

	t.Run("served stop without visits waits the whole window", func(t *testing.T) {
		s := ComputeStats(nil, window, true)
		assert.Equal(t, 0, s.TripCount)
		assert.Zero(t, s.TripsPerHour)
		require.NotNil(t, s.MaxWait)
		assert.Equal(t, 7000, *s.MaxWait)
	})

	t.Run("unserved stop has no max wait", func(t *testing.T) {
		s := ComputeStats(nil, window, false)
		assert.Equal(t, 0, s.TripCount)
		assert.Nil(t, s.MaxWait)
		assert.Nil(t, s.Values().MaxWaitMinutes)
	})

	t.Run("visits on the window edges", func(t *testing.T) {
		s := ComputeStats(visitsAt(3000, 10000), window, true)
		assert.Equal(t, 2, s.TripCount)
		require.NotNil(t, s.MaxWait)
		assert.Equal(t, 7000, *s.MaxWait)
	})

	t.Run("one hour window", func(t *testing.T) {
		s := ComputeStats(visitsAt(100, 200, 300, 400), timewindow.SecondsWindow{Start: 0, End: 3600}, true)
		assert.InDelta(t, 4.0, s.TripsPerHour, 1e-9)
	})
}

func TestMaxWaitMinutes(t *testing.T) {
	wait := func(v int) StopStats { return StopStats{MaxWait: &v} }

	assert.Equal(t, 60, *wait(3600).MaxWaitMinutes())
	assert.Equal(t, 59, *wait(3540).MaxWaitMinutes())
	assert.Equal(t, 2, *wait(90).MaxWaitMinutes())
	assert.Equal(t, 1, *wait(89).MaxWaitMinutes())
	assert.Nil(t, StopStats{}.MaxWaitMinutes())

	v := wait(3600)
	v.TripCount, v.TripsPerHour = 3, 1.5
	values := v.Values()
	assert.Equal(t, 3, values.TripCount)
	assert.InDelta(t, 1.5, values.TripsPerHour, 1e-9)
	assert.Equal(t, 60, *values.MaxWaitMinutes)
}
