// Package schedule reads stops and stop visits from a GTFS schedule store.
package schedule

import (
	"context"
	"math"
	"sort"
	"strings"

	"transitanalysis.onebusaway.org/internal/timewindow"
)

// Direction selects whether visits are counted by departure or arrival time.
type Direction int

const (
	Departures Direction = iota
	Arrivals
)

func (d Direction) String() string {
	if d == Arrivals {
		return "arrivals"
	}
	return "departures"
}

// ParseDirection accepts departures/arrivals in any case, and any prefix of depart or
// arrive of at least three letters.
func ParseDirection(s string) (Direction, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	switch {
	case len(v) >= 3 && (strings.HasPrefix("departures", v) || strings.HasPrefix(v, "depart")):
		return Departures, nil
	case len(v) >= 3 && (strings.HasPrefix("arrivals", v) || strings.HasPrefix(v, "arriv")):
		return Arrivals, nil
	}
	return Departures, &timewindow.InputError{
		Field:   "direction",
		Message: "direction must be Departures or Arrivals, got " + s,
	}
}

// Stop is a stop with a location.
type Stop struct {
	ID   string
	Name string
	Lat  float64
	Lon  float64
}

// Visit is one trip passing a stop, in seconds since the service day's midnight.
type Visit struct {
	TripID  string
	Seconds int
}

// VisitIndex maps stop ids to their in-window visits ordered by time. Served holds every
// stop visited by any trip on the resolved day, inside the window or not, plus the stops
// the previous day's trips reach after midnight.
type VisitIndex struct {
	Visits map[string][]Visit
	Served map[string]bool
}

// For returns the visits of a stop.
func (ix VisitIndex) For(stopID string) []Visit {
	return ix.Visits[stopID]
}

// IsServed reports whether the stop has any schedule coverage on the resolved day.
func (ix VisitIndex) IsServed(stopID string) bool {
	return ix.Served[stopID] || len(ix.Visits[stopID]) > 0
}

// Store is a schedule store.
type Store interface {
	Stops(ctx context.Context) ([]Stop, error)
	Visits(ctx context.Context, day timewindow.ServiceDay, window timewindow.SecondsWindow, dir Direction) (VisitIndex, error)
	Close() error
}

// rawVisit is a visit row before indexing.
type rawVisit struct {
	StopID  string
	TripID  string
	Seconds int
}

// source is the query surface shared by the store backends.
type source interface {
	serviceIDs(ctx context.Context, day timewindow.ServiceDay) ([]string, error)
	stopVisits(ctx context.Context, serviceIDs []string, dir Direction, from, to int) ([]rawVisit, error)
	servedStopIDs(ctx context.Context, serviceIDs []string) ([]string, error)
}

const secondsPerDay = 24 * 60 * 60

// collectVisits runs the visit queries for a day and indexes them. Trips of the previous
// service day that run past midnight into the window are included, shifted back by a day.
func collectVisits(ctx context.Context, src source, day timewindow.ServiceDay, window timewindow.SecondsWindow, dir Direction) (VisitIndex, error) {
	ix := VisitIndex{Visits: map[string][]Visit{}, Served: map[string]bool{}}

	ids, err := src.serviceIDs(ctx, day)
	if err != nil {
		return VisitIndex{}, err
	}
	visits, err := src.stopVisits(ctx, ids, dir, window.Start, window.End)
	if err != nil {
		return VisitIndex{}, err
	}

	prevIDs, err := src.serviceIDs(ctx, day.Previous())
	if err != nil {
		return VisitIndex{}, err
	}
	overnight, err := src.stopVisits(ctx, prevIDs, dir, window.Start+secondsPerDay, window.End+secondsPerDay)
	if err != nil {
		return VisitIndex{}, err
	}
	for _, v := range overnight {
		v.Seconds -= secondsPerDay
		visits = append(visits, v)
	}

	served, err := src.servedStopIDs(ctx, ids)
	if err != nil {
		return VisitIndex{}, err
	}
	for _, id := range served {
		ix.Served[id] = true
	}
	// Previous-day trips still running after midnight serve their stops today.
	lateVisits, err := src.stopVisits(ctx, prevIDs, dir, secondsPerDay, math.MaxInt32)
	if err != nil {
		return VisitIndex{}, err
	}
	for _, v := range lateVisits {
		ix.Served[v.StopID] = true
	}

	for _, v := range visits {
		ix.Visits[v.StopID] = append(ix.Visits[v.StopID], Visit{TripID: v.TripID, Seconds: v.Seconds})
	}
	for _, vs := range ix.Visits {
		sort.Slice(vs, func(i, j int) bool {
			if vs[i].Seconds != vs[j].Seconds {
				return vs[i].Seconds < vs[j].Seconds
			}
			return vs[i].TripID < vs[j].TripID
		})
	}

	return ix, nil
}
