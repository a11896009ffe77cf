package frequency

import (
	"math"

	"transitanalysis.onebusaway.org/internal/features"
	"transitanalysis.onebusaway.org/internal/schedule"
	"transitanalysis.onebusaway.org/internal/timewindow"
)

// StopStats are the trip statistics of one stop. MaxWait is in seconds and nil when the
// stop has no service at all on the analysed day.
type StopStats struct {
	TripCount    int
	TripsPerHour float64
	MaxWait      *int
}

// ComputeStats derives stop statistics from the in-window visits of a stop. The max wait
// includes the gaps from the window start to the first visit and from the last visit to
// the window end, so an unvisited but served stop waits the whole window.
func ComputeStats(visits []schedule.Visit, window timewindow.SecondsWindow, served bool) StopStats {
	stats := StopStats{TripCount: len(visits)}

	if hours := float64(window.Length()) / 3600; hours > 0 {
		stats.TripsPerHour = float64(stats.TripCount) / hours
	}

	if !served && len(visits) == 0 {
		return stats
	}

	maxWait, prev := 0, window.Start
	for _, v := range visits {
		if gap := v.Seconds - prev; gap > maxWait {
			maxWait = gap
		}
		prev = v.Seconds
	}
	if gap := window.End - prev; gap > maxWait {
		maxWait = gap
	}
	stats.MaxWait = &maxWait

	return stats
}

// MaxWaitMinutes rounds the max wait to whole minutes.
func (s StopStats) MaxWaitMinutes() *int {
	if s.MaxWait == nil {
		return nil
	}
	m := int(math.Round(float64(*s.MaxWait) / 60))
	return &m
}

// Values converts the statistics to the attributes written to a stop layer.
func (s StopStats) Values() features.StopValues {
	return features.StopValues{
		TripCount:      s.TripCount,
		TripsPerHour:   s.TripsPerHour,
		MaxWaitMinutes: s.MaxWaitMinutes(),
	}
}
