package features

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/jonas-p/go-shp"
)

// wgs84 is written next to every shapefile so readers know the coordinates are lon/lat.
const wgs84 = `GEOGCS["GCS_WGS_1984",DATUM["D_WGS_1984",SPHEROID["WGS_1984",6378137.0,298.257223563]],PRIMEM["Greenwich",0.0],UNIT["Degree",0.0174532925199433]]`

const maxStringField = 254

// shapefileBase strips the .shp extension, leaving the name shared by the sidecar files.
func shapefileBase(path string) string {
	if i := strings.LastIndex(strings.ToLower(path), ".shp"); i >= 0 && i == len(path)-4 {
		return path[:i]
	}
	return path
}

func writeProjection(path string) error {
	if err := os.WriteFile(shapefileBase(path)+".prj", []byte(wgs84), 0o644); err != nil {
		return fmt.Errorf("error writing projection for %s: %w", path, err)
	}
	return nil
}

func shapefileExists(path string) (bool, error) {
	_, err := os.Stat(path)
	switch {
	case err == nil:
		return true, nil
	case os.IsNotExist(err):
		return false, nil
	}
	return false, err
}

// stringFieldSize sizes a character field to hold the longest value.
func stringFieldSize(values []string) uint8 {
	size := 1
	for _, v := range values {
		if len(v) > size {
			size = len(v)
		}
	}
	if size > maxStringField {
		size = maxStringField
	}
	return uint8(size)
}

// clip cuts s to at most size bytes without splitting a UTF-8 sequence.
func clip(s string, size uint8) string {
	n := int(size)
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// attribute reads a dBASE value and drops the padding around it.
func attribute(r *shp.Reader, row, field int) string {
	return strings.Trim(r.ReadAttribute(row, field), " \x00")
}

// nullableInt parses a numeric attribute where a blank value is null.
func nullableInt(s string) (*int, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil {
			return nil, fmt.Errorf("invalid numeric attribute %q: %w", s, err)
		}
		v = int(f)
	}
	return &v, nil
}

func floatAttribute(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid numeric attribute %q: %w", s, err)
	}
	return v, nil
}

func fieldNames(fields []shp.Field) []string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = strings.TrimRight(string(f.Name[:]), "\x00")
	}
	return names
}
