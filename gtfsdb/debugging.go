package gtfsdb

import (
	"fmt"

	"github.com/jamespfennell/gtfs"
)

func (c *Client) staticDataCounts(staticData *gtfs.Static) map[string]int {
	stopTimes := 0
	for _, t := range staticData.Trips {
		stopTimes += len(t.StopTimes)
	}
	return map[string]int{
		"agency":     len(staticData.Agencies),
		"routes":     len(staticData.Routes),
		"stops":      len(staticData.Stops),
		"calendar":   len(staticData.Services),
		"trips":      len(staticData.Trips),
		"stop_times": stopTimes,
	}
}

// TableCounts returns the row count of every table
func (c *Client) TableCounts() (map[string]int, error) {
	rows, err := c.DB.Query("SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%'")
	if err != nil {
		return nil, fmt.Errorf("failed to query table names: %w", err)
	}
	defer rows.Close() // nolint:errcheck

	var tables []string
	for rows.Next() {
		var tableName string
		if err := rows.Scan(&tableName); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		tables = append(tables, tableName)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	counts := make(map[string]int)

	for _, table := range tables {
		var count int
		query := fmt.Sprintf("SELECT COUNT(*) FROM %s", table)
		err := c.DB.QueryRow(query).Scan(&count)
		if err != nil {
			return nil, err
		}
		counts[table] = count
	}

	return counts, nil
}
