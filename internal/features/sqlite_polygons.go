package features

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"transitanalysis.onebusaway.org/internal/logging"
)

// SQLitePolygonLayer is a service area table in a SQLite database. Geometries are stored
// as GeoJSON text.
type SQLitePolygonLayer struct {
	path  string
	table string
	db    *sql.DB
}

func NewSQLitePolygonLayer(path string) (*SQLitePolygonLayer, error) {
	file, table, err := SplitSQLiteTarget(path, DefaultPolygonTable)
	if err != nil {
		return nil, err
	}
	db, err := openLayerDB(file)
	if err != nil {
		return nil, err
	}
	return &SQLitePolygonLayer{path: path, table: table, db: db}, nil
}

func (l *SQLitePolygonLayer) Path() string { return l.path }
func (l *SQLitePolygonLayer) Close() error { return l.db.Close() }

func (l *SQLitePolygonLayer) Exists(ctx context.Context) (bool, error) {
	return tableExists(ctx, l.db, l.table)
}

func (l *SQLitePolygonLayer) Create(ctx context.Context, polys []Polygon) error {
	return l.insert(ctx, polys, true)
}

func (l *SQLitePolygonLayer) Append(ctx context.Context, polys []Polygon) error {
	return l.insert(ctx, polys, false)
}

func (l *SQLitePolygonLayer) insert(ctx context.Context, polys []Polygon, create bool) error {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer logging.SafeRollbackWithLogging(tx, slog.Default(), "write_polygon_layer")

	if create {
		if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+quote(l.table)); err != nil {
			return fmt.Errorf("error dropping %s: %w", l.table, err)
		}
		if _, err := tx.ExecContext(ctx, fmt.Sprintf(`CREATE TABLE %s (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			Name TEXT,
			FromBreak REAL,
			ToBreak REAL,
			TimeOfDay TEXT,
			geometry TEXT NOT NULL
		)`, quote(l.table))); err != nil {
			return fmt.Errorf("error creating %s: %w", l.table, err)
		}
	}

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
		"INSERT INTO %s (Name, FromBreak, ToBreak, TimeOfDay, geometry) VALUES (?, ?, ?, ?, ?)", quote(l.table)))
	if err != nil {
		return fmt.Errorf("error preparing %s statement: %w", l.table, err)
	}
	defer stmt.Close() // nolint:errcheck

	for _, p := range polys {
		geom, err := geojson.NewGeometry(p.Geometry).MarshalJSON()
		if err != nil {
			return fmt.Errorf("error encoding polygon %q: %w", p.Name, err)
		}
		if _, err := stmt.ExecContext(ctx, p.Name, p.FromBreak, p.ToBreak, p.TimeOfDay, string(geom)); err != nil {
			return fmt.Errorf("error inserting polygon %q: %w", p.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing transaction: %w", err)
	}
	return nil
}

func (l *SQLitePolygonLayer) Polygons(ctx context.Context) ([]Polygon, error) {
	rows, err := l.db.QueryContext(ctx, fmt.Sprintf(
		"SELECT Name, FromBreak, ToBreak, TimeOfDay, geometry FROM %s ORDER BY id", quote(l.table)))
	if err != nil {
		return nil, fmt.Errorf("error reading %s: %w", l.table, err)
	}
	defer rows.Close() // nolint:errcheck

	var polys []Polygon
	for rows.Next() {
		var (
			p    Polygon
			name sql.NullString
			tod  sql.NullString
			geom string
		)
		if err := rows.Scan(&name, &p.FromBreak, &p.ToBreak, &tod, &geom); err != nil {
			return nil, fmt.Errorf("error reading %s: %w", l.table, err)
		}
		p.Name, p.TimeOfDay = name.String, tod.String

		g, err := geojson.UnmarshalGeometry([]byte(geom))
		if err != nil {
			return nil, fmt.Errorf("error decoding polygon %q: %w", p.Name, err)
		}
		p.Geometry = asMultiPolygon(g.Geometry())
		polys = append(polys, p)
	}
	return polys, rows.Err()
}

// asMultiPolygon lifts a polygon to a multipolygon. Other geometry types yield nil.
func asMultiPolygon(g orb.Geometry) orb.MultiPolygon {
	switch v := g.(type) {
	case orb.MultiPolygon:
		return v
	case orb.Polygon:
		return orb.MultiPolygon{v}
	}
	return nil
}
