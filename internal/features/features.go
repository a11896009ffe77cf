// Package features writes stop and service-area output layers as shapefiles or as tables
// in a SQLite database.
package features

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/paulmach/orb"
	"transitanalysis.onebusaway.org/internal/schedule"
)

// Kind is the storage format of an output layer.
type Kind int

const (
	KindSQLite Kind = iota
	KindShapefile
)

func (k Kind) String() string {
	if k == KindShapefile {
		return "shapefile"
	}
	return "sqlite"
}

// DetectKind picks the shapefile format for paths ending in .shp and SQLite otherwise.
func DetectKind(path string) Kind {
	if strings.EqualFold(filepath.Ext(path), ".shp") {
		return KindShapefile
	}
	return KindSQLite
}

// FieldSet names the trip statistics attributes of a stop layer. Shapefile names are
// limited to ten characters.
type FieldSet struct {
	TripCount    string
	TripsPerHour string
	MaxWait      string
}

var (
	GeodatabaseFields = FieldSet{TripCount: "NumTrips", TripsPerHour: "NumTripsPerHr", MaxWait: "MaxWaitTime"}
	ShapefileFields   = FieldSet{TripCount: "NumTrips", TripsPerHour: "TripsPerHr", MaxWait: "MaxWaitTm"}
)

// FieldsFor returns the attribute names used by a layer kind.
func FieldsFor(kind Kind) FieldSet {
	if kind == KindShapefile {
		return ShapefileFields
	}
	return GeodatabaseFields
}

// StopValues are the statistics written to one stop. A nil MaxWaitMinutes is written as
// NULL in SQLite and as NoWait in shapefiles.
type StopValues struct {
	TripCount      int
	TripsPerHour   float64
	MaxWaitMinutes *int
}

// StopRecord is a stop row as stored in a layer.
type StopRecord struct {
	Stop   schedule.Stop
	Values StopValues
}

// StopLayer is the stop output of a trip count.
type StopLayer interface {
	Path() string
	Fields() FieldSet
	// Seed creates the layer from the full stop list, replacing any existing layer.
	Seed(ctx context.Context, stops []schedule.Stop) error
	// Update writes statistics to the seeded stops. Stops missing from values keep
	// null statistics.
	Update(ctx context.Context, values map[string]StopValues) error
	Records(ctx context.Context) ([]StopRecord, error)
	Close() error
}

// Polygon is a solved service area.
type Polygon struct {
	Name      string
	FromBreak float64
	ToBreak   float64
	TimeOfDay string
	Geometry  orb.MultiPolygon
}

// PolygonLayer is the cumulative output of a time-lapse run.
type PolygonLayer interface {
	Path() string
	Exists(ctx context.Context) (bool, error)
	// Create replaces any existing layer with polys.
	Create(ctx context.Context, polys []Polygon) error
	Append(ctx context.Context, polys []Polygon) error
	Polygons(ctx context.Context) ([]Polygon, error)
	Close() error
}

// OpenStopLayer returns the stop layer for path.
func OpenStopLayer(path string) (StopLayer, error) {
	if DetectKind(path) == KindShapefile {
		return NewShapefileStopLayer(path), nil
	}
	return NewSQLiteStopLayer(path)
}

// OpenPolygonLayer returns the polygon layer for path.
func OpenPolygonLayer(path string) (PolygonLayer, error) {
	if DetectKind(path) == KindShapefile {
		return NewShapefilePolygonLayer(path), nil
	}
	return NewSQLitePolygonLayer(path)
}
