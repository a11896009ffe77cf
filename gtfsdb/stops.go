package gtfsdb

import (
	"context"
	"fmt"
)

const selectStopColumns = `
	SELECT stop_id, COALESCE(stop_code, ''), COALESCE(stop_name, ''), COALESCE(stop_desc, ''),
		stop_lat, stop_lon, COALESCE(location_type, 0)
	FROM stops`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStop(row rowScanner) (Stop, error) {
	var s Stop
	err := row.Scan(&s.ID, &s.Code, &s.Name, &s.Desc, &s.Lat, &s.Lon, &s.LocationType)
	return s, err
}

// ListStops returns every stop ordered by stop id
func (c *Client) ListStops(ctx context.Context) ([]Stop, error) {
	rows, err := c.DB.QueryContext(ctx, selectStopColumns+` ORDER BY stop_id`)
	if err != nil {
		return nil, fmt.Errorf("error querying stops: %w", err)
	}
	defer rows.Close() // nolint:errcheck

	var stops []Stop
	for rows.Next() {
		s, err := scanStop(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning stop: %w", err)
		}
		stops = append(stops, s)
	}
	return stops, rows.Err()
}

// GetStop returns a single stop. A missing stop yields sql.ErrNoRows.
func (c *Client) GetStop(ctx context.Context, stopID string) (Stop, error) {
	return scanStop(c.DB.QueryRowContext(ctx, selectStopColumns+` WHERE stop_id = ?`, stopID))
}
