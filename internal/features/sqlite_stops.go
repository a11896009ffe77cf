package features

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"transitanalysis.onebusaway.org/internal/logging"
	"transitanalysis.onebusaway.org/internal/schedule"
)

// SQLiteStopLayer is a stop table in a SQLite database.
type SQLiteStopLayer struct {
	path   string
	table  string
	fields FieldSet
	db     *sql.DB
}

func NewSQLiteStopLayer(path string) (*SQLiteStopLayer, error) {
	file, table, err := SplitSQLiteTarget(path, DefaultStopTable)
	if err != nil {
		return nil, err
	}
	db, err := openLayerDB(file)
	if err != nil {
		return nil, err
	}
	return &SQLiteStopLayer{path: path, table: table, fields: GeodatabaseFields, db: db}, nil
}

func (l *SQLiteStopLayer) Path() string     { return l.path }
func (l *SQLiteStopLayer) Fields() FieldSet { return l.fields }
func (l *SQLiteStopLayer) Close() error     { return l.db.Close() }

func (l *SQLiteStopLayer) Seed(ctx context.Context, stops []schedule.Stop) error {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer logging.SafeRollbackWithLogging(tx, slog.Default(), "seed_stop_layer")

	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+quote(l.table)); err != nil {
		return fmt.Errorf("error dropping %s: %w", l.table, err)
	}
	ddl := fmt.Sprintf(`CREATE TABLE %s (
		stop_id TEXT PRIMARY KEY,
		stop_name TEXT,
		stop_lat REAL NOT NULL,
		stop_lon REAL NOT NULL,
		%s INTEGER,
		%s REAL,
		%s INTEGER
	)`, quote(l.table), quote(l.fields.TripCount), quote(l.fields.TripsPerHour), quote(l.fields.MaxWait))
	if _, err := tx.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("error creating %s: %w", l.table, err)
	}

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
		"INSERT INTO %s (stop_id, stop_name, stop_lat, stop_lon) VALUES (?, ?, ?, ?)", quote(l.table)))
	if err != nil {
		return fmt.Errorf("error preparing %s statement: %w", l.table, err)
	}
	defer stmt.Close() // nolint:errcheck

	for _, s := range stops {
		if _, err := stmt.ExecContext(ctx, s.ID, s.Name, s.Lat, s.Lon); err != nil {
			return fmt.Errorf("error inserting stop %s: %w", s.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing transaction: %w", err)
	}
	return nil
}

func (l *SQLiteStopLayer) Update(ctx context.Context, values map[string]StopValues) error {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer logging.SafeRollbackWithLogging(tx, slog.Default(), "update_stop_layer")

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf("UPDATE %s SET %s = ?, %s = ?, %s = ? WHERE stop_id = ?",
		quote(l.table), quote(l.fields.TripCount), quote(l.fields.TripsPerHour), quote(l.fields.MaxWait)))
	if err != nil {
		return fmt.Errorf("error preparing %s statement: %w", l.table, err)
	}
	defer stmt.Close() // nolint:errcheck

	for id, v := range values {
		var maxWait sql.NullInt64
		if v.MaxWaitMinutes != nil {
			maxWait = sql.NullInt64{Int64: int64(*v.MaxWaitMinutes), Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, v.TripCount, v.TripsPerHour, maxWait, id); err != nil {
			return fmt.Errorf("error updating stop %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing transaction: %w", err)
	}
	return nil
}

func (l *SQLiteStopLayer) Records(ctx context.Context) ([]StopRecord, error) {
	rows, err := l.db.QueryContext(ctx, fmt.Sprintf(
		"SELECT stop_id, stop_name, stop_lat, stop_lon, %s, %s, %s FROM %s ORDER BY rowid",
		quote(l.fields.TripCount), quote(l.fields.TripsPerHour), quote(l.fields.MaxWait), quote(l.table)))
	if err != nil {
		return nil, fmt.Errorf("error reading %s: %w", l.table, err)
	}
	defer rows.Close() // nolint:errcheck

	var records []StopRecord
	for rows.Next() {
		var (
			rec     StopRecord
			name    sql.NullString
			count   sql.NullInt64
			perHour sql.NullFloat64
			maxWait sql.NullInt64
		)
		if err := rows.Scan(&rec.Stop.ID, &name, &rec.Stop.Lat, &rec.Stop.Lon, &count, &perHour, &maxWait); err != nil {
			return nil, fmt.Errorf("error reading %s: %w", l.table, err)
		}
		rec.Stop.Name = name.String
		rec.Values.TripCount = int(count.Int64)
		rec.Values.TripsPerHour = perHour.Float64
		if maxWait.Valid {
			m := int(maxWait.Int64)
			rec.Values.MaxWaitMinutes = &m
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
