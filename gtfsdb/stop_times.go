package gtfsdb

import (
	"context"
	"fmt"
)

// TimeColumn selects which stop_times column a visit query reads.
type TimeColumn string

const (
	DepartureTime TimeColumn = "departure_time"
	ArrivalTime   TimeColumn = "arrival_time"
)

func (tc TimeColumn) valid() bool {
	return tc == DepartureTime || tc == ArrivalTime
}

// StopVisits returns every visit of a trip of serviceIDs whose time column falls in
// [fromSeconds, toSeconds], ordered by stop and time
func (c *Client) StopVisits(ctx context.Context, serviceIDs []string, column TimeColumn, fromSeconds, toSeconds int) ([]StopVisit, error) {
	if !column.valid() {
		return nil, fmt.Errorf("unknown stop time column %q", column)
	}
	if len(serviceIDs) == 0 {
		return nil, nil
	}

	query := fmt.Sprintf(`
		SELECT st.stop_id, st.trip_id, st.%[1]s
		FROM stop_times st
		JOIN trips t ON t.trip_id = st.trip_id
		WHERE t.service_id IN (%[2]s)
			AND st.%[1]s BETWEEN ? AND ?
		ORDER BY st.stop_id, st.%[1]s, st.trip_id
	`, column, placeholders(len(serviceIDs)))

	rows, err := c.DB.QueryContext(ctx, query, stringArgs(serviceIDs, fromSeconds, toSeconds)...)
	if err != nil {
		return nil, fmt.Errorf("error querying stop visits: %w", err)
	}
	defer rows.Close() // nolint:errcheck

	var visits []StopVisit
	for rows.Next() {
		var v StopVisit
		if err := rows.Scan(&v.StopID, &v.TripID, &v.Seconds); err != nil {
			return nil, fmt.Errorf("error scanning stop visit: %w", err)
		}
		visits = append(visits, v)
	}
	return visits, rows.Err()
}

// ServedStopIDs returns the stops visited by at least one trip of serviceIDs
func (c *Client) ServedStopIDs(ctx context.Context, serviceIDs []string) ([]string, error) {
	if len(serviceIDs) == 0 {
		return nil, nil
	}

	query := fmt.Sprintf(`
		SELECT DISTINCT st.stop_id
		FROM stop_times st
		JOIN trips t ON t.trip_id = st.trip_id
		WHERE t.service_id IN (%s)
		ORDER BY st.stop_id
	`, placeholders(len(serviceIDs)))

	return c.queryStrings(ctx, query, stringArgs(serviceIDs)...)
}
