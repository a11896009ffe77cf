package schedule

import (
	"context"
	"fmt"

	"transitanalysis.onebusaway.org/gtfsdb"
	"transitanalysis.onebusaway.org/internal/timewindow"
)

// SQLiteStore reads an imported gtfsdb database.
type SQLiteStore struct {
	client *gtfsdb.Client
	owned  bool
}

// NewSQLiteStore wraps an open client. Closing the store leaves the client open.
func NewSQLiteStore(client *gtfsdb.Client) *SQLiteStore {
	return &SQLiteStore{client: client}
}

func (s *SQLiteStore) Stops(ctx context.Context) ([]Stop, error) {
	rows, err := s.client.ListStops(ctx)
	if err != nil {
		return nil, err
	}
	stops := make([]Stop, 0, len(rows))
	for _, r := range rows {
		stops = append(stops, Stop{ID: r.ID, Name: r.Name, Lat: r.Lat, Lon: r.Lon})
	}
	return stops, nil
}

func (s *SQLiteStore) Visits(ctx context.Context, day timewindow.ServiceDay, window timewindow.SecondsWindow, dir Direction) (VisitIndex, error) {
	return collectVisits(ctx, s, day, window, dir)
}

func (s *SQLiteStore) Close() error {
	if !s.owned {
		return nil
	}
	return s.client.Close()
}

func (s *SQLiteStore) serviceIDs(ctx context.Context, day timewindow.ServiceDay) ([]string, error) {
	if day.Specific {
		return s.client.ServiceIDsForDate(ctx, day.Date)
	}
	return s.client.ServiceIDsForWeekday(ctx, day.Weekday)
}

func (s *SQLiteStore) stopVisits(ctx context.Context, serviceIDs []string, dir Direction, from, to int) ([]rawVisit, error) {
	column := gtfsdb.DepartureTime
	if dir == Arrivals {
		column = gtfsdb.ArrivalTime
	}

	rows, err := s.client.StopVisits(ctx, serviceIDs, column, from, to)
	if err != nil {
		return nil, fmt.Errorf("error querying stop visits: %w", err)
	}
	visits := make([]rawVisit, 0, len(rows))
	for _, r := range rows {
		visits = append(visits, rawVisit{StopID: r.StopID, TripID: r.TripID, Seconds: r.Seconds})
	}
	return visits, nil
}

func (s *SQLiteStore) servedStopIDs(ctx context.Context, serviceIDs []string) ([]string, error) {
	return s.client.ServedStopIDs(ctx, serviceIDs)
}
