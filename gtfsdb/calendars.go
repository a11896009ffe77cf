package gtfsdb

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const dateLayout = "20060102"

var weekdayColumns = map[time.Weekday]string{
	time.Sunday:    "sunday",
	time.Monday:    "monday",
	time.Tuesday:   "tuesday",
	time.Wednesday: "wednesday",
	time.Thursday:  "thursday",
	time.Friday:    "friday",
	time.Saturday:  "saturday",
}

// ServiceIDsForDate returns the service ids running on a calendar date: calendar rows whose
// range covers the date and whose weekday flag is set, plus added dates, minus removed dates
func (c *Client) ServiceIDsForDate(ctx context.Context, date time.Time) ([]string, error) {
	day := date.Format(dateLayout)
	query := fmt.Sprintf(`
		SELECT service_id FROM calendar
		WHERE start_date <= ? AND end_date >= ? AND %s = 1
		UNION
		SELECT service_id FROM calendar_dates WHERE date = ? AND exception_type = 1
		EXCEPT
		SELECT service_id FROM calendar_dates WHERE date = ? AND exception_type = 2
		ORDER BY 1
	`, weekdayColumns[date.Weekday()])

	return c.queryStrings(ctx, query, day, day, day, day)
}

// ServiceIDsForWeekday returns the service ids whose weekly pattern includes weekday,
// regardless of date range and exceptions
func (c *Client) ServiceIDsForWeekday(ctx context.Context, weekday time.Weekday) ([]string, error) {
	query := fmt.Sprintf(`SELECT service_id FROM calendar WHERE %s = 1 ORDER BY service_id`, weekdayColumns[weekday])
	return c.queryStrings(ctx, query)
}

func (c *Client) queryStrings(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := c.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying: %w", err)
	}
	defer rows.Close() // nolint:errcheck

	var values []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("error scanning: %w", err)
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

// placeholders returns "?, ?, ?" for n arguments
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func stringArgs(values []string, extra ...any) []any {
	args := make([]any, 0, len(values)+len(extra))
	for _, v := range values {
		args = append(args, v)
	}
	return append(args, extra...)
}
