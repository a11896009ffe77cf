package publisher

import (
	"time"

	"github.com/twpayne/go-polyline"
	"transitanalysis.onebusaway.org/internal/features"
)

// SolvedEvent carries the polygons of one time of day. Rings are Google encoded
// polylines to keep messages small.
type SolvedEvent struct {
	RunID     string           `json:"runId"`
	Layer     string           `json:"layer"`
	TimeOfDay string           `json:"timeOfDay"`
	Sequence  int              `json:"sequence"`
	Total     int              `json:"total"`
	Polygons  []PolygonSummary `json:"polygons"`
	Timestamp time.Time        `json:"timestamp"`
}

type PolygonSummary struct {
	Name      string     `json:"name"`
	FromBreak float64    `json:"fromBreak"`
	ToBreak   float64    `json:"toBreak"`
	Rings     [][]string `json:"rings"`
}

type CountEvent struct {
	RunID        string    `json:"runId"`
	Output       string    `json:"output"`
	Day          string    `json:"day"`
	Direction    string    `json:"direction"`
	Stops        int       `json:"stops"`
	Visits       int       `json:"visits"`
	ServedStops  int       `json:"servedStops"`
	WindowStart  int       `json:"windowStart"`
	WindowEnd    int       `json:"windowEnd"`
	FinishedTime time.Time `json:"finishedTime"`
}

// Summarize encodes polygons for a SolvedEvent. Rings holds one entry per part of the
// multipolygon, outer ring first.
func Summarize(polys []features.Polygon) []PolygonSummary {
	out := make([]PolygonSummary, 0, len(polys))
	for _, p := range polys {
		s := PolygonSummary{Name: p.Name, FromBreak: p.FromBreak, ToBreak: p.ToBreak}
		for _, poly := range p.Geometry {
			rings := make([]string, 0, len(poly))
			for _, ring := range poly {
				coords := make([][]float64, len(ring))
				for i, pt := range ring {
					coords[i] = []float64{pt.Lat(), pt.Lon()}
				}
				rings = append(rings, string(polyline.EncodeCoords(coords)))
			}
			s.Rings = append(s.Rings, rings)
		}
		out = append(out, s)
	}
	return out
}
