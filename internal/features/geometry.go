package features

import (
	"github.com/jonas-p/go-shp"
	"github.com/paulmach/orb"
)

// toShapefilePolygon flattens a multipolygon into shapefile parts. Outer rings are written
// clockwise and holes counter-clockwise.
func toShapefilePolygon(mp orb.MultiPolygon) *shp.Polygon {
	var parts [][]shp.Point
	for _, poly := range mp {
		for i, ring := range poly {
			if len(ring) == 0 {
				continue
			}
			want := orb.CW
			if i > 0 {
				want = orb.CCW
			}
			parts = append(parts, ringPoints(ring, want))
		}
	}

	polygon := shp.Polygon(*shp.NewPolyLine(parts))
	return &polygon
}

func ringPoints(ring orb.Ring, orientation orb.Orientation) []shp.Point {
	r := ring.Clone()
	if r.Orientation() != orientation {
		r.Reverse()
	}
	points := make([]shp.Point, len(r))
	for i, p := range r {
		points[i] = shp.Point{X: p.X(), Y: p.Y()}
	}
	return points
}

// fromShapefilePolygon rebuilds a multipolygon. Every clockwise ring starts a polygon and
// counter-clockwise rings are holes of the polygon before them.
func fromShapefilePolygon(p *shp.Polygon) orb.MultiPolygon {
	var mp orb.MultiPolygon
	for i := range p.Parts {
		start := int(p.Parts[i])
		end := len(p.Points)
		if i+1 < len(p.Parts) {
			end = int(p.Parts[i+1])
		}

		ring := make(orb.Ring, 0, end-start)
		for _, pt := range p.Points[start:end] {
			ring = append(ring, orb.Point{pt.X, pt.Y})
		}

		if ring.Orientation() == orb.CCW && len(mp) > 0 {
			mp[len(mp)-1] = append(mp[len(mp)-1], ring)
			continue
		}
		mp = append(mp, orb.Polygon{ring})
	}
	return mp
}
