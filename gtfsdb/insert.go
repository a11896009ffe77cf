package gtfsdb

import (
	"context"
	"database/sql"
	"fmt"
)

// insertBatch executes query once per row inside tx using a single prepared statement
func insertBatch[T any](ctx context.Context, tx *sql.Tx, table, query string, rows []T, args func(T) []any) error {
	if len(rows) == 0 {
		return nil
	}

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("error preparing %s statement: %w", table, err)
	}
	defer stmt.Close() // nolint:errcheck

	for _, row := range rows {
		if _, err := stmt.ExecContext(ctx, args(row)...); err != nil {
			return fmt.Errorf("error inserting into %s: %w", table, err)
		}
	}
	return nil
}

// InsertStopBatch add new stops to the database
func InsertStopBatch(ctx context.Context, tx *sql.Tx, stops []Stop) error {
	return insertBatch(ctx, tx, "stops", `
		INSERT OR REPLACE INTO stops (
			stop_id, stop_code, stop_name, stop_desc, stop_lat, stop_lon, location_type
		) VALUES (?, ?, ?, ?, ?, ?, ?);
	`, stops, func(s Stop) []any {
		return []any{s.ID, toNullString(s.Code), toNullString(s.Name), toNullString(s.Desc), s.Lat, s.Lon, s.LocationType}
	})
}

func InsertTripBatch(ctx context.Context, tx *sql.Tx, trips []Trip) error {
	return insertBatch(ctx, tx, "trips", `
		INSERT OR REPLACE INTO trips (
			trip_id, route_id, service_id, trip_headsign
		) VALUES (?, ?, ?, ?);
	`, trips, func(t Trip) []any {
		return []any{t.ID, t.RouteID, t.ServiceID, toNullString(t.Headsign)}
	})
}

// InsertStopTimeBatch inserts multiple stop times using a transaction for better performance
func InsertStopTimeBatch(ctx context.Context, tx *sql.Tx, stopTimes []StopTime) error {
	return insertBatch(ctx, tx, "stop_times", `
		INSERT OR REPLACE INTO stop_times (
			trip_id, stop_id, stop_sequence, arrival_time, departure_time
		) VALUES (?, ?, ?, ?, ?);
	`, stopTimes, func(st StopTime) []any {
		return []any{st.TripID, st.StopID, st.StopSequence, st.ArrivalTime, st.DepartureTime}
	})
}

func InsertCalendarBatch(ctx context.Context, tx *sql.Tx, calendars []Calendar) error {
	return insertBatch(ctx, tx, "calendar", `
		INSERT OR REPLACE INTO calendar (
			service_id, monday, tuesday, wednesday, thursday,
			friday, saturday, sunday, start_date, end_date
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
	`, calendars, func(c Calendar) []any {
		return []any{
			c.ServiceID, c.Monday, c.Tuesday, c.Wednesday, c.Thursday,
			c.Friday, c.Saturday, c.Sunday, c.StartDate, c.EndDate,
		}
	})
}

func InsertCalendarDateBatch(ctx context.Context, tx *sql.Tx, dates []CalendarDate) error {
	return insertBatch(ctx, tx, "calendar_dates", `
		INSERT OR REPLACE INTO calendar_dates (service_id, date, exception_type) VALUES (?, ?, ?);
	`, dates, func(d CalendarDate) []any {
		return []any{d.ServiceID, d.Date, d.ExceptionType}
	})
}

func InsertAgencyBatch(ctx context.Context, tx *sql.Tx, agencies []Agency) error {
	return insertBatch(ctx, tx, "agency", `
		INSERT OR REPLACE INTO agency (
			agency_id, agency_name, agency_url, agency_timezone, agency_lang, agency_phone
		) VALUES (?, ?, ?, ?, ?, ?);
	`, agencies, func(a Agency) []any {
		return []any{a.ID, a.Name, a.URL, a.Timezone, toNullString(a.Lang), toNullString(a.Phone)}
	})
}

func InsertRouteBatch(ctx context.Context, tx *sql.Tx, routes []Route) error {
	return insertBatch(ctx, tx, "routes", `
		INSERT OR REPLACE INTO routes (
			route_id, agency_id, route_short_name, route_long_name, route_type
		) VALUES (?, ?, ?, ?, ?);
	`, routes, func(r Route) []any {
		return []any{r.ID, r.AgencyID, toNullString(r.ShortName), toNullString(r.LongName), r.Type}
	})
}

func insertAll(ctx context.Context, tx *sql.Tx, rows staticRows) error {
	if err := InsertAgencyBatch(ctx, tx, rows.agencies); err != nil {
		return err
	}
	if err := InsertRouteBatch(ctx, tx, rows.routes); err != nil {
		return err
	}
	if err := InsertStopBatch(ctx, tx, rows.stops); err != nil {
		return err
	}
	if err := InsertCalendarBatch(ctx, tx, rows.calendars); err != nil {
		return err
	}
	if err := InsertCalendarDateBatch(ctx, tx, rows.calendarDates); err != nil {
		return err
	}
	if err := InsertTripBatch(ctx, tx, rows.trips); err != nil {
		return err
	}
	return InsertStopTimeBatch(ctx, tx, rows.stopTimes)
}

// importTables lists the schedule tables in the order they are cleared before a re-import
var importTables = []string{"stop_times", "trips", "calendar_dates", "calendar", "stops", "routes", "agency"}

func clearTables(ctx context.Context, tx *sql.Tx) error {
	for _, table := range importTables {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("error clearing %s: %w", table, err)
		}
	}
	return nil
}

func upsertImportMetadata(ctx context.Context, tx *sql.Tx, m ImportMetadata) error {
	_, err := tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO import_metadata (id, file_hash, file_source, import_time)
		VALUES (1, ?, ?, ?);
	`, m.FileHash, m.FileSource, m.ImportTime)
	if err != nil {
		return fmt.Errorf("error storing import metadata: %w", err)
	}
	return nil
}
