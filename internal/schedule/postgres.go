package schedule

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"transitanalysis.onebusaway.org/internal/timewindow"
)

// PostgresStore reads a GTFS database in the layout of postgis-gtfs-importer and
// gtfs-via-postgres: calendar weekday flags may be booleans, integers or the
// available/not_available enum, and stop times may be text or intervals.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to dsn and verifies the connection.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) Stops(ctx context.Context) ([]Stop, error) {
	const query = `
		SELECT stop_id, COALESCE(stop_name, ''), stop_lat, stop_lon
		FROM stops
		WHERE stop_lat IS NOT NULL AND stop_lon IS NOT NULL
		ORDER BY stop_id`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query stops: %w", err)
	}
	defer rows.Close()

	var stops []Stop
	for rows.Next() {
		var st Stop
		if err := rows.Scan(&st.ID, &st.Name, &st.Lat, &st.Lon); err != nil {
			return nil, fmt.Errorf("failed to scan stop: %w", err)
		}
		stops = append(stops, st)
	}
	return stops, rows.Err()
}

func (s *PostgresStore) Visits(ctx context.Context, day timewindow.ServiceDay, window timewindow.SecondsWindow, dir Direction) (VisitIndex, error) {
	return collectVisits(ctx, s, day, window, dir)
}

func (s *PostgresStore) serviceIDs(ctx context.Context, day timewindow.ServiceDay) ([]string, error) {
	query, args := serviceIDsQuery(day)
	return s.queryStrings(ctx, query, args...)
}

func (s *PostgresStore) stopVisits(ctx context.Context, serviceIDs []string, dir Direction, from, to int) ([]rawVisit, error) {
	if len(serviceIDs) == 0 {
		return nil, nil
	}

	rows, err := s.pool.Query(ctx, stopVisitsQuery(dir), serviceIDs, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query stop times: %w", err)
	}
	defer rows.Close()

	var visits []rawVisit
	for rows.Next() {
		var v rawVisit
		var clock string
		if err := rows.Scan(&v.StopID, &v.TripID, &clock); err != nil {
			return nil, fmt.Errorf("failed to scan stop time: %w", err)
		}
		seconds, ok := parseDaySeconds(clock)
		if !ok || seconds < from || seconds > to {
			continue
		}
		v.Seconds = seconds
		visits = append(visits, v)
	}
	return visits, rows.Err()
}

func (s *PostgresStore) servedStopIDs(ctx context.Context, serviceIDs []string) ([]string, error) {
	if len(serviceIDs) == 0 {
		return nil, nil
	}
	const query = `
		SELECT DISTINCT st.stop_id
		FROM stop_times st
		JOIN trips t ON t.trip_id = st.trip_id
		WHERE t.service_id = ANY($1)`
	return s.queryStrings(ctx, query, serviceIDs)
}

func (s *PostgresStore) queryStrings(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("failed to scan: %w", err)
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

var weekdayColumns = [...]string{"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday"}

const truthy = `('1','t','true','available')`

// serviceIDsQuery builds the service lookup for a day. Specific dates apply the calendar
// range and calendar_dates exceptions; generic weekdays only look at the weekday flag.
func serviceIDsQuery(day timewindow.ServiceDay) (string, []any) {
	column := weekdayColumns[day.Weekday]
	if !day.Specific {
		return fmt.Sprintf(`SELECT service_id FROM calendar WHERE %s::text IN %s ORDER BY service_id`, column, truthy), nil
	}

	query := fmt.Sprintf(`
WITH base AS (
  SELECT service_id FROM calendar
  WHERE start_date <= $1::date AND end_date >= $1::date
    AND %s::text IN %s
), add_exc AS (
  SELECT service_id FROM calendar_dates WHERE date = $1::date AND exception_type::text IN ('1','added')
), rm_exc AS (
  SELECT service_id FROM calendar_dates WHERE date = $1::date AND exception_type::text IN ('2','removed')
)
SELECT DISTINCT service_id FROM (
  SELECT service_id FROM base UNION SELECT service_id FROM add_exc
) merged
WHERE service_id NOT IN (SELECT service_id FROM rm_exc)
ORDER BY service_id`, column, truthy)

	return query, []any{day.Date.Format("2006-01-02")}
}

// stopVisitsQuery selects the visits of $1 whose time column falls in [$2, $3] seconds.
// Values that do not look like a clock are left to the Go side to reject.
func stopVisitsQuery(dir Direction) string {
	return fmt.Sprintf(`
		SELECT st.stop_id, st.trip_id, COALESCE(st.%[1]s::text, '')
		FROM stop_times st
		JOIN trips t ON t.trip_id = st.trip_id
		WHERE t.service_id = ANY($1)
			AND CASE
				WHEN st.%[1]s::text ~ '^\s*([0-9]+ days? )?[0-9]+:[0-9]{2}(:[0-9]{2})?\s*$'
				THEN EXTRACT(EPOCH FROM st.%[1]s::text::interval) BETWEEN $2 AND $3
				ELSE FALSE
			END`, timeColumn(dir))
}

func timeColumn(dir Direction) string {
	if dir == Arrivals {
		return "arrival_time"
	}
	return "departure_time"
}

// parseDaySeconds parses HH:MM[:SS] with hours past 23, as well as the "1 day 02:00:00"
// rendering of justified intervals.
func parseDaySeconds(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	days := 0
	if fields := strings.Fields(s); len(fields) == 3 && strings.HasPrefix(fields[1], "day") {
		n, err := strconv.Atoi(fields[0])
		if err != nil {
			return 0, false
		}
		days = n
		s = fields[2]
	}

	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, false
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, false
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, false
	}
	sec := 0
	if len(parts) == 3 {
		if sec, err = strconv.Atoi(parts[2]); err != nil {
			return 0, false
		}
	}

	total := days*secondsPerDay + h*3600 + m*60 + sec
	if total < 0 {
		return 0, false
	}
	return total, true
}
