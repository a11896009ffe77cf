package timewindow

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the layout of literal day tokens, e.g. 20230601.
const DateLayout = "20060102"

// placeholderDates maps the generic weekday names to the fixed dates network solvers
// interpret as "any such weekday". 1900-01-01 was a Monday.
var placeholderDates = map[time.Weekday]time.Time{
	time.Monday:    time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC),
	time.Tuesday:   time.Date(1900, time.January, 2, 0, 0, 0, 0, time.UTC),
	time.Wednesday: time.Date(1900, time.January, 3, 0, 0, 0, 0, time.UTC),
	time.Thursday:  time.Date(1900, time.January, 4, 0, 0, 0, 0, time.UTC),
	time.Friday:    time.Date(1900, time.January, 5, 0, 0, 0, 0, time.UTC),
	time.Saturday:  time.Date(1900, time.January, 6, 0, 0, 0, 0, time.UTC),
	time.Sunday:    time.Date(1899, time.December, 31, 0, 0, 0, 0, time.UTC),
}

// ServiceDay is a resolved day token. Specific days carry a calendar date; generic days
// carry the placeholder date of their weekday.
type ServiceDay struct {
	Specific bool
	Date     time.Time
	Weekday  time.Weekday
}

// String renders the day the way it was given: a weekday name or YYYYMMDD.
func (d ServiceDay) String() string {
	if d.Specific {
		return d.Date.Format(DateLayout)
	}
	return d.Weekday.String()
}

// Previous returns the service day before d. The day before a generic weekday is the
// previous generic weekday.
func (d ServiceDay) Previous() ServiceDay {
	prevWeekday := (d.Weekday + 6) % 7
	if d.Specific {
		return ServiceDay{Specific: true, Date: d.Date.AddDate(0, 0, -1), Weekday: prevWeekday}
	}
	return ServiceDay{Date: placeholderDates[prevWeekday], Weekday: prevWeekday}
}

// PlaceholderDate returns the placeholder date of a generic weekday.
func PlaceholderDate(weekday time.Weekday) time.Time {
	return placeholderDates[weekday]
}

// LookupWeekday reports whether token names a weekday. Matching ignores case.
func LookupWeekday(token string) (time.Weekday, bool) {
	token = strings.TrimSpace(token)
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		if strings.EqualFold(token, wd.String()) {
			return wd, true
		}
	}
	return 0, false
}

// ResolveDay turns a weekday name or a YYYYMMDD token into a ServiceDay.
func ResolveDay(field, token string) (ServiceDay, error) {
	if wd, ok := LookupWeekday(token); ok {
		return ServiceDay{Date: placeholderDates[wd], Weekday: wd}, nil
	}

	date, err := time.ParseInLocation(DateLayout, strings.TrimSpace(token), time.UTC)
	if err != nil {
		return ServiceDay{}, &InputError{
			Field:   field,
			Message: fmt.Sprintf("%q is neither a weekday name nor a date in YYYYMMDD format", token),
		}
	}
	return ServiceDay{Specific: true, Date: date, Weekday: date.Weekday()}, nil
}

// ResolveServiceDay resolves the single day specifier of a trip count.
func ResolveServiceDay(token string) (ServiceDay, error) {
	return ResolveDay("day", token)
}
