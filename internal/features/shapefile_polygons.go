package features

import (
	"context"
	"fmt"

	"github.com/jonas-p/go-shp"
)

var polygonFieldNames = []string{"Name", "FromBreak", "ToBreak", "TimeOfDay"}

// ShapefilePolygonLayer is a polygon shapefile of service areas. Appending reads the
// existing records and rewrites the file set with the new ones at the end.
type ShapefilePolygonLayer struct {
	path string
}

func NewShapefilePolygonLayer(path string) *ShapefilePolygonLayer {
	return &ShapefilePolygonLayer{path: path}
}

func (l *ShapefilePolygonLayer) Path() string { return l.path }
func (l *ShapefilePolygonLayer) Close() error { return nil }

func (l *ShapefilePolygonLayer) Exists(ctx context.Context) (bool, error) {
	return shapefileExists(l.path)
}

func (l *ShapefilePolygonLayer) Create(ctx context.Context, polys []Polygon) error {
	return l.write(polys)
}

func (l *ShapefilePolygonLayer) Append(ctx context.Context, polys []Polygon) error {
	existing, err := l.Polygons(ctx)
	if err != nil {
		return err
	}
	return l.write(append(existing, polys...))
}

func (l *ShapefilePolygonLayer) write(polys []Polygon) error {
	names := make([]string, len(polys))
	for i, p := range polys {
		names[i] = p.Name
	}
	nameSize := stringFieldSize(names)

	shape, err := shp.Create(l.path, shp.POLYGON)
	if err != nil {
		return fmt.Errorf("error creating shapefile %s: %w", l.path, err)
	}
	defer shape.Close()

	shape.SetFields([]shp.Field{
		shp.StringField(polygonFieldNames[0], nameSize),
		shp.FloatField(polygonFieldNames[1], 19, 8),
		shp.FloatField(polygonFieldNames[2], 19, 8),
		shp.StringField(polygonFieldNames[3], 19),
	})

	for _, p := range polys {
		n := int(shape.Write(toShapefilePolygon(p.Geometry)))
		attrs := []any{clip(p.Name, nameSize), p.FromBreak, p.ToBreak, clip(p.TimeOfDay, 19)}
		for i, v := range attrs {
			if err := shape.WriteAttribute(n, i, v); err != nil {
				return fmt.Errorf("error writing polygon %q: %w", p.Name, err)
			}
		}
	}

	return writeProjection(l.path)
}

func (l *ShapefilePolygonLayer) Polygons(ctx context.Context) ([]Polygon, error) {
	r, err := shp.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("error opening shapefile %s: %w", l.path, err)
	}
	defer r.Close()

	fields := fieldNames(r.Fields())
	if len(fields) < len(polygonFieldNames) {
		return nil, fmt.Errorf("shapefile %s is not a service area layer: fields %v", l.path, fields)
	}
	for i, name := range polygonFieldNames {
		if fields[i] != name {
			return nil, fmt.Errorf("shapefile %s is not a service area layer: fields %v", l.path, fields)
		}
	}

	var polys []Polygon
	for r.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		n, s := r.Shape()
		p := Polygon{
			Name:      attribute(r, n, 0),
			TimeOfDay: attribute(r, n, 3),
		}
		if p.FromBreak, err = floatAttribute(attribute(r, n, 1)); err != nil {
			return nil, err
		}
		if p.ToBreak, err = floatAttribute(attribute(r, n, 2)); err != nil {
			return nil, err
		}
		if poly, ok := s.(*shp.Polygon); ok {
			p.Geometry = fromShapefilePolygon(poly)
		}
		polys = append(polys, p)
	}
	return polys, nil
}
