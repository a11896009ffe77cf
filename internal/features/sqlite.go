package features

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

const (
	DefaultStopTable    = "stops"
	DefaultPolygonTable = "service_areas"
)

var (
	databaseExtensions = map[string]bool{".db": true, ".sqlite": true, ".sqlite3": true, ".gpkg": true, ".gdb": true}
	tableNamePattern   = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// SplitSQLiteTarget resolves an output path to a database file and a table. A path whose
// parent is a database file names a table inside it, as in out.db/stops. Any other path
// is the database file itself and the layer uses defaultTable.
func SplitSQLiteTarget(path, defaultTable string) (file, table string, err error) {
	dir, base := filepath.Split(path)
	dir = strings.TrimSuffix(dir, string(filepath.Separator))

	file, table = path, defaultTable
	if dir != "" && databaseExtensions[strings.ToLower(filepath.Ext(dir))] {
		file, table = dir, base
	}

	if !tableNamePattern.MatchString(table) {
		return "", "", fmt.Errorf("invalid table name %q in %s", table, path)
	}
	return file, table, nil
}

// openLayerDB opens the SQLite file that holds an output layer.
func openLayerDB(file string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", file)
	if err != nil {
		return nil, fmt.Errorf("error opening database %s: %w", file, err)
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("error opening database %s: %w", file, err)
	}
	return db, nil
}

func tableExists(ctx context.Context, db *sql.DB, table string) (bool, error) {
	var n int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("error checking table %s: %w", table, err)
	}
	return n > 0, nil
}

func quote(name string) string {
	return `"` + name + `"`
}
