package schedule

import (
	"context"
	"fmt"
	"os"
	"strings"

	"transitanalysis.onebusaway.org/gtfsdb"
	"transitanalysis.onebusaway.org/internal/appconf"
)

// IsPostgresTarget reports whether target is a PostgreSQL connection string.
func IsPostgresTarget(target string) bool {
	return strings.HasPrefix(target, "postgres://") || strings.HasPrefix(target, "postgresql://")
}

// Open connects to a schedule store: a PostgreSQL DSN or the path of an imported SQLite
// database. SQLite paths must exist.
func Open(ctx context.Context, target string, env appconf.Environment) (Store, error) {
	if IsPostgresTarget(target) {
		return NewPostgresStore(ctx, target)
	}

	if _, err := os.Stat(target); err != nil {
		return nil, fmt.Errorf("schedule store %s: %w", target, err)
	}

	client, err := gtfsdb.NewClient(gtfsdb.NewConfig(target, env, false))
	if err != nil {
		return nil, err
	}
	return &SQLiteStore{client: client, owned: true}, nil
}
