package timewindow

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TimeOfDayLayout is the layout of the TimeOfDay value stamped on solved polygons.
const TimeOfDayLayout = "2006-01-02 15:04:05"

const mixedModeHint = "Please use either a specific date or a generic weekday for both Start Date and End Date."

// Window is a validated analysis time window. Start is strictly before End and both ends
// use the same day mode.
type Window struct {
	Start time.Time
	End   time.Time
	// Generic is true when both ends are generic weekdays.
	Generic bool
}

// Build resolves the day tokens and HH:MM strings of a time-lapse run into a Window.
func Build(startDay, startTime, endDay, endTime string) (Window, error) {
	start, err := ResolveDay("startDay", startDay)
	if err != nil {
		return Window{}, err
	}

	startClock, err := parseClock("startTime", startTime, 23)
	if err != nil {
		return Window{}, err
	}

	end, err := ResolveDay("endDay", endDay)
	if err != nil {
		return Window{}, err
	}

	switch {
	case start.Specific && !end.Specific:
		return Window{}, &InputError{
			Field:   "endDay",
			Message: "Your Start Day is a specific date, but your End Day is a generic weekday. " + mixedModeHint,
		}
	case !start.Specific && end.Specific:
		return Window{}, &InputError{
			Field:   "endDay",
			Message: "Your Start Day is a generic weekday, but your End Day is a specific date. " + mixedModeHint,
		}
	case !start.Specific && start.Weekday != end.Weekday:
		return Window{}, &InputError{
			Field:   "endDay",
			Message: "If using a generic weekday, the Start Day and End Day must be the same.",
		}
	}

	endClock, err := parseClock("endTime", endTime, 23)
	if err != nil {
		return Window{}, err
	}

	w := Window{
		Start:   start.Date.Add(startClock),
		End:     end.Date.Add(endClock),
		Generic: !start.Specific,
	}

	if w.Start.Equal(w.End) {
		return Window{}, &InputError{Field: "endTime", Message: "Start and end date and time are the same."}
	}
	if w.End.Before(w.Start) {
		return Window{}, &InputError{Field: "endTime", Message: "End time is earlier than start time."}
	}

	return w, nil
}

// Timestamps returns start, start+increment, ... up to and including End when it lands on
// a step. A non-positive increment yields an empty slice.
func (w Window) Timestamps(incrementMinutes int) []time.Time {
	if incrementMinutes <= 0 {
		return []time.Time{}
	}

	step := time.Duration(incrementMinutes) * time.Minute
	times := make([]time.Time, 0, int(w.End.Sub(w.Start)/step)+1)
	for t := w.Start; !t.After(w.End); t = t.Add(step) {
		times = append(times, t)
	}
	return times
}

// Duration is the length of the window.
func (w Window) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

// FormatTimeOfDay renders an analysis timestamp for the TimeOfDay attribute.
func FormatTimeOfDay(t time.Time) string {
	return t.Format(TimeOfDayLayout)
}

// SecondsWindow is a trip-count window in seconds since the service day's midnight. Both
// ends are inclusive and End may exceed 86400.
type SecondsWindow struct {
	Start int
	End   int
}

// MaxServiceHour is the last hour a trip-count window may reach. GTFS times past 24:00
// belong to trips of the previous service day, so two days cover every schedule.
const MaxServiceHour = 47

// ParseSecondsWindow converts HH:MM strings into a SecondsWindow. Hours up to
// MaxServiceHour are accepted for service that runs past midnight.
func ParseSecondsWindow(startTime, endTime string) (SecondsWindow, error) {
	start, err := parseClock("startTime", startTime, MaxServiceHour)
	if err != nil {
		return SecondsWindow{}, err
	}
	end, err := parseClock("endTime", endTime, MaxServiceHour)
	if err != nil {
		return SecondsWindow{}, err
	}

	w := SecondsWindow{Start: int(start / time.Second), End: int(end / time.Second)}
	if w.End <= w.Start {
		return SecondsWindow{}, &InputError{Field: "endTime", Message: "End time must be later than start time."}
	}
	return w, nil
}

// Length returns the window length in seconds.
func (w SecondsWindow) Length() int {
	return w.End - w.Start
}

// Contains reports whether seconds falls inside the window.
func (w SecondsWindow) Contains(seconds int) bool {
	return seconds >= w.Start && seconds <= w.End
}

// parseClock parses HH:MM with a one or two digit hour no greater than maxHour.
func parseClock(field, value string, maxHour int) (time.Duration, error) {
	invalid := &InputError{Field: field, Message: fmt.Sprintf("%q is not a time in HH:MM format", value)}

	hh, mm, ok := strings.Cut(strings.TrimSpace(value), ":")
	if !ok || len(hh) < 1 || len(hh) > 2 || len(mm) != 2 || !isDigits(hh) || !isDigits(mm) {
		return 0, invalid
	}

	hours, err := strconv.Atoi(hh)
	if err != nil || hours > maxHour {
		return 0, invalid
	}
	minutes, err := strconv.Atoi(mm)
	if err != nil || minutes > 59 {
		return 0, invalid
	}

	return time.Duration(hours)*time.Hour + time.Duration(minutes)*time.Minute, nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
