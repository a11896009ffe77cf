package gtfsdb

import "time"

// Agency represents a transit agency in the GTFS feed
type Agency struct {
	ID       string // agency_id
	Name     string // agency_name
	URL      string // agency_url
	Timezone string // agency_timezone
	Lang     string // agency_lang
	Phone    string // agency_phone
}

// Route represents a transit route in the GTFS feed
type Route struct {
	ID        string // route_id
	AgencyID  string // agency_id
	ShortName string // route_short_name
	LongName  string // route_long_name
	Type      int    // route_type
}

// Stop represents a transit stop or station in the GTFS feed
type Stop struct {
	ID           string  // stop_id
	Code         string  // stop_code
	Name         string  // stop_name
	Desc         string  // stop_desc
	Lat          float64 // stop_lat
	Lon          float64 // stop_lon
	LocationType int     // location_type
}

// Calendar represents the weekly service pattern of a service id
type Calendar struct {
	ServiceID string // service_id
	Monday    int    // monday
	Tuesday   int    // tuesday
	Wednesday int    // wednesday
	Thursday  int    // thursday
	Friday    int    // friday
	Saturday  int    // saturday
	Sunday    int    // sunday
	StartDate string // start_date (YYYYMMDD)
	EndDate   string // end_date (YYYYMMDD)
}

// CalendarDate is a single added or removed service date
type CalendarDate struct {
	ServiceID     string // service_id
	Date          string // date (YYYYMMDD)
	ExceptionType int    // exception_type, 1 added and 2 removed
}

// Trip represents a single scheduled journey
type Trip struct {
	ID        string // trip_id
	RouteID   string // route_id
	ServiceID string // service_id
	Headsign  string // trip_headsign
}

// StopTime represents a vehicle arrival/departure at a specific stop in the GTFS feed
type StopTime struct {
	TripID        string // trip_id
	StopID        string // stop_id
	StopSequence  int    // stop_sequence
	ArrivalTime   int    // arrival_time, seconds since the service day's midnight
	DepartureTime int    // departure_time, seconds since the service day's midnight
}

// StopVisit is one trip passing a stop, with the visit time in seconds since midnight.
type StopVisit struct {
	StopID  string
	TripID  string
	Seconds int
}

// ImportMetadata describes the last successful import.
type ImportMetadata struct {
	FileHash   string
	FileSource string
	ImportTime int64
}

// ImportedAt returns ImportTime as a time.Time.
func (m ImportMetadata) ImportedAt() time.Time {
	return time.Unix(m.ImportTime, 0).UTC()
}
