package features

import (
	"context"
	"fmt"

	"github.com/jonas-p/go-shp"
	"transitanalysis.onebusaway.org/internal/schedule"
)

// NoWait stands in for a null max wait in dBASE tables.
const NoWait = -1

// ShapefileStopLayer is a point shapefile of stops. The dBASE table has no in-place
// update, so every write rewrites the file set from the stops kept in memory.
type ShapefileStopLayer struct {
	path   string
	fields FieldSet
	stops  []schedule.Stop
	values map[string]StopValues
}

func NewShapefileStopLayer(path string) *ShapefileStopLayer {
	return &ShapefileStopLayer{path: path, fields: ShapefileFields}
}

func (l *ShapefileStopLayer) Path() string     { return l.path }
func (l *ShapefileStopLayer) Fields() FieldSet { return l.fields }
func (l *ShapefileStopLayer) Close() error     { return nil }

func (l *ShapefileStopLayer) Seed(ctx context.Context, stops []schedule.Stop) error {
	l.stops = append([]schedule.Stop(nil), stops...)
	l.values = nil
	return l.write(ctx)
}

func (l *ShapefileStopLayer) Update(ctx context.Context, values map[string]StopValues) error {
	if l.stops == nil {
		return fmt.Errorf("stop layer %s has not been seeded", l.path)
	}
	l.values = values
	return l.write(ctx)
}

func (l *ShapefileStopLayer) write(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	ids := make([]string, len(l.stops))
	names := make([]string, len(l.stops))
	for i, s := range l.stops {
		ids[i] = s.ID
		names[i] = s.Name
	}
	idSize, nameSize := stringFieldSize(ids), stringFieldSize(names)

	shape, err := shp.Create(l.path, shp.POINT)
	if err != nil {
		return fmt.Errorf("error creating shapefile %s: %w", l.path, err)
	}
	defer shape.Close()

	shape.SetFields([]shp.Field{
		shp.StringField("stop_id", idSize),
		shp.StringField("stop_name", nameSize),
		shp.NumberField(l.fields.TripCount, 10),
		shp.FloatField(l.fields.TripsPerHour, 19, 8),
		shp.NumberField(l.fields.MaxWait, 10),
	})

	for _, s := range l.stops {
		n := int(shape.Write(&shp.Point{X: s.Lon, Y: s.Lat}))
		if err := shape.WriteAttribute(n, 0, clip(s.ID, idSize)); err != nil {
			return fmt.Errorf("error writing stop %s: %w", s.ID, err)
		}
		if err := shape.WriteAttribute(n, 1, clip(s.Name, nameSize)); err != nil {
			return fmt.Errorf("error writing stop %s: %w", s.ID, err)
		}

		v, ok := l.values[s.ID]
		if !ok {
			continue
		}
		if err := shape.WriteAttribute(n, 2, v.TripCount); err != nil {
			return fmt.Errorf("error writing stop %s: %w", s.ID, err)
		}
		if err := shape.WriteAttribute(n, 3, v.TripsPerHour); err != nil {
			return fmt.Errorf("error writing stop %s: %w", s.ID, err)
		}
		maxWait := NoWait
		if v.MaxWaitMinutes != nil {
			maxWait = *v.MaxWaitMinutes
		}
		if err := shape.WriteAttribute(n, 4, maxWait); err != nil {
			return fmt.Errorf("error writing stop %s: %w", s.ID, err)
		}
	}

	return writeProjection(l.path)
}

// Records reads the stops back from disk.
func (l *ShapefileStopLayer) Records(ctx context.Context) ([]StopRecord, error) {
	r, err := shp.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("error opening shapefile %s: %w", l.path, err)
	}
	defer r.Close()

	var records []StopRecord
	for r.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		n, s := r.Shape()
		rec := StopRecord{Stop: schedule.Stop{
			ID:   attribute(r, n, 0),
			Name: attribute(r, n, 1),
		}}
		if p, ok := s.(*shp.Point); ok {
			rec.Stop.Lon, rec.Stop.Lat = p.X, p.Y
		}

		count, err := nullableInt(attribute(r, n, 2))
		if err != nil {
			return nil, err
		}
		if count != nil {
			rec.Values.TripCount = *count
		}
		if rec.Values.TripsPerHour, err = floatAttribute(attribute(r, n, 3)); err != nil {
			return nil, err
		}
		if rec.Values.MaxWaitMinutes, err = nullableInt(attribute(r, n, 4)); err != nil {
			return nil, err
		}
		if w := rec.Values.MaxWaitMinutes; w != nil && *w == NoWait {
			rec.Values.MaxWaitMinutes = nil
		}
		records = append(records, rec)
	}
	return records, nil
}
