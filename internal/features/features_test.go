package features

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/jonas-p/go-shp"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"transitanalysis.onebusaway.org/internal/schedule"
)

func intPtr(v int) *int { return &v }

var testStops = []schedule.Stop{
	{ID: "S1", Name: "First & Pine", Lat: 47.6, Lon: -122.3},
	{ID: "S2", Name: "Second & Pike", Lat: 47.61, Lon: -122.31},
	{ID: "S3", Name: "Unvisited", Lat: 47.62, Lon: -122.32},
}

var testValues = map[string]StopValues{
	"S1": {TripCount: 3, TripsPerHour: 1.5, MaxWaitMinutes: intPtr(60)},
	"S2": {TripCount: 0, TripsPerHour: 0, MaxWaitMinutes: intPtr(120)},
	"S3": {TripCount: 0, TripsPerHour: 0},
}

func square(x, y, size float64) orb.Polygon {
	return orb.Polygon{orb.Ring{{x, y}, {x + size, y}, {x + size, y + size}, {x, y + size}, {x, y}}}
}

func TestDetectKind(t *testing.T) {
	assert.Equal(t, KindShapefile, DetectKind("out/stops.shp"))
	assert.Equal(t, KindShapefile, DetectKind("out/STOPS.SHP"))
	assert.Equal(t, KindSQLite, DetectKind("out/analysis.db/stops"))
	assert.Equal(t, KindSQLite, DetectKind("out/analysis.db"))
	assert.Equal(t, "shapefile", KindShapefile.String())
}

func TestFieldsFor(t *testing.T) {
	assert.Equal(t, "TripsPerHr", FieldsFor(KindShapefile).TripsPerHour)
	assert.Equal(t, "MaxWaitTm", FieldsFor(KindShapefile).MaxWait)
	assert.Equal(t, "NumTripsPerHr", FieldsFor(KindSQLite).TripsPerHour)
	assert.Equal(t, "MaxWaitTime", FieldsFor(KindSQLite).MaxWait)
	for _, name := range []string{ShapefileFields.TripCount, ShapefileFields.TripsPerHour, ShapefileFields.MaxWait} {
		assert.LessOrEqual(t, len(name), 10, "dBASE field names are limited to ten characters")
	}
}

func TestSplitSQLiteTarget(t *testing.T) {
	tests := []struct {
		path      string
		wantFile  string
		wantTable string
		wantErr   bool
	}{
		{path: filepath.Join("out", "analysis.db", "weekday"), wantFile: filepath.Join("out", "analysis.db"), wantTable: "weekday"},
		{path: filepath.Join("out", "analysis.gdb", "Stops"), wantFile: filepath.Join("out", "analysis.gdb"), wantTable: "Stops"},
		{path: filepath.Join("out", "analysis.db"), wantFile: filepath.Join("out", "analysis.db"), wantTable: DefaultStopTable},
		{path: filepath.Join("out", "analysis.db", "bad-name"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			file, table, err := SplitSQLiteTarget(tt.path, DefaultStopTable)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantFile, file)
			assert.Equal(t, tt.wantTable, table)
		})
	}
}

func TestStopLayers(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	paths := map[string]string{
		"shapefile": filepath.Join(dir, "stops.shp"),
		"sqlite":    filepath.Join(dir, "analysis.db"),
		"table":     filepath.Join(dir, "analysis.db", "weekday_stops"),
	}

	for name, path := range paths {
		t.Run(name, func(t *testing.T) {
			layer, err := OpenStopLayer(path)
			require.NoError(t, err)
			defer layer.Close() // nolint:errcheck

			require.NoError(t, layer.Seed(ctx, testStops))

			records, err := layer.Records(ctx)
			require.NoError(t, err)
			require.Len(t, records, 3)
			for _, r := range records {
				assert.Nil(t, r.Values.MaxWaitMinutes, "seeded stops have null statistics")
			}

			require.NoError(t, layer.Update(ctx, testValues))

			records, err = layer.Records(ctx)
			require.NoError(t, err)
			require.Len(t, records, 3)

			byID := map[string]StopRecord{}
			for _, r := range records {
				byID[r.Stop.ID] = r
			}
			assert.Equal(t, "First & Pine", byID["S1"].Stop.Name)
			assert.InDelta(t, 47.6, byID["S1"].Stop.Lat, 1e-9)
			assert.InDelta(t, -122.3, byID["S1"].Stop.Lon, 1e-9)
			assert.Equal(t, 3, byID["S1"].Values.TripCount)
			assert.InDelta(t, 1.5, byID["S1"].Values.TripsPerHour, 1e-9)
			require.NotNil(t, byID["S1"].Values.MaxWaitMinutes)
			assert.Equal(t, 60, *byID["S1"].Values.MaxWaitMinutes)
			require.NotNil(t, byID["S2"].Values.MaxWaitMinutes)
			assert.Equal(t, 120, *byID["S2"].Values.MaxWaitMinutes)
			assert.Nil(t, byID["S3"].Values.MaxWaitMinutes)
		})
	}
}

func TestShapefileStopLayerRequiresSeed(t *testing.T) {
	layer := NewShapefileStopLayer(filepath.Join(t.TempDir(), "stops.shp"))
	err := layer.Update(context.Background(), testValues)
	assert.Error(t, err)
}

func TestPolygonLayers(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	withHole := orb.Polygon{
		orb.Ring{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}},
		orb.Ring{{2, 2}, {2, 4}, {4, 4}, {4, 2}, {2, 2}},
	}

	first := []Polygon{{
		Name: "Location 1 : 0 - 15", FromBreak: 0, ToBreak: 15, TimeOfDay: "1900-01-01 08:00:00",
		Geometry: orb.MultiPolygon{withHole},
	}}
	second := []Polygon{{
		Name: "Location 1 : 0 - 15", FromBreak: 0, ToBreak: 15, TimeOfDay: "1900-01-01 08:20:00",
		Geometry: orb.MultiPolygon{square(20, 20, 5), square(30, 30, 1)},
	}}

	paths := map[string]string{
		"shapefile": filepath.Join(dir, "areas.shp"),
		"sqlite":    filepath.Join(dir, "areas.db", "weekday"),
	}

	for name, path := range paths {
		t.Run(name, func(t *testing.T) {
			layer, err := OpenPolygonLayer(path)
			require.NoError(t, err)
			defer layer.Close() // nolint:errcheck

			exists, err := layer.Exists(ctx)
			require.NoError(t, err)
			assert.False(t, exists)

			require.NoError(t, layer.Create(ctx, first))
			exists, err = layer.Exists(ctx)
			require.NoError(t, err)
			assert.True(t, exists)

			require.NoError(t, layer.Append(ctx, second))

			polys, err := layer.Polygons(ctx)
			require.NoError(t, err)
			require.Len(t, polys, 2)

			assert.Equal(t, "1900-01-01 08:00:00", polys[0].TimeOfDay)
			assert.Equal(t, "1900-01-01 08:20:00", polys[1].TimeOfDay)
			assert.Equal(t, "Location 1 : 0 - 15", polys[1].Name)
			assert.InDelta(t, 15.0, polys[0].ToBreak, 1e-9)

			require.Len(t, polys[0].Geometry, 1)
			assert.Len(t, polys[0].Geometry[0], 2, "hole is kept with its outer ring")
			assert.Len(t, polys[1].Geometry, 2)

			require.NoError(t, layer.Create(ctx, second))
			polys, err = layer.Polygons(ctx)
			require.NoError(t, err)
			assert.Len(t, polys, 1, "create replaces the existing layer")
		})
	}
}

func TestShapefileRingOrientation(t *testing.T) {
	ccwOuter := orb.Ring{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}}
	require.Equal(t, orb.CCW, ccwOuter.Orientation())

	p := toShapefilePolygon(orb.MultiPolygon{{ccwOuter}})
	require.Len(t, p.Parts, 1)

	back := fromShapefilePolygon(p)
	require.Len(t, back, 1)
	assert.Equal(t, orb.CW, back[0][0].Orientation())
	assert.Len(t, back[0][0], 5)
}

func TestShapefileNullWaitSentinel(t *testing.T) {
	ctx := context.Background()
	layer := NewShapefileStopLayer(filepath.Join(t.TempDir(), "stops.shp"))
	require.NoError(t, layer.Seed(ctx, testStops[2:]))
	require.NoError(t, layer.Update(ctx, map[string]StopValues{"S3": {}}))

	r, err := shp.Open(layer.Path())
	require.NoError(t, err)
	defer r.Close() // nolint:errcheck

	require.True(t, r.Next())
	n, _ := r.Shape()
	assert.Equal(t, "-1", attribute(r, n, 4))
}

func TestClip(t *testing.T) {
	assert.Equal(t, "abc", clip("abc", 5))
	assert.Equal(t, "ab", clip("abc", 2))

	long := strings.Repeat("a", 253) + "é"
	clipped := clip(long, maxStringField)
	assert.Equal(t, strings.Repeat("a", 253), clipped)
	assert.True(t, utf8.ValidString(clipped))

	assert.Equal(t, "Gare ", clip("Gare Saint-Lazare", 5))
	assert.Equal(t, "Caf", clip("Café", 4))
	assert.Equal(t, "", clip("日本", 2))
}
