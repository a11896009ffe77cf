// Package gtfstest builds small GTFS feeds in memory for tests.
package gtfstest

import (
	"archive/zip"
	"bytes"
	"sort"
	"strings"
	"testing"
)

// Files returns a feed with one route and three stops.
//
// Service WK runs Monday to Friday in 2024 except 2024-07-04, SAT runs on Saturdays and HOL
// only on 2024-07-04. S3 is never visited. T5 runs past midnight.
func Files() map[string]string {
	return map[string]string{
		"agency.txt": "agency_id,agency_name,agency_url,agency_timezone\n" +
			"ta,Test Transit,https://transit.example.com,UTC",
		"routes.txt": "route_id,agency_id,route_short_name,route_type\n" +
			"R1,ta,1,3",
		"stops.txt": "stop_id,stop_name,stop_lat,stop_lon\n" +
			"S1,Main St,47.6,-122.3\n" +
			"S2,Second Ave,47.61,-122.31\n" +
			"S3,Depot,47.62,-122.32",
		"calendar.txt": "service_id,monday,tuesday,wednesday,thursday,friday,saturday,sunday,start_date,end_date\n" +
			"WK,1,1,1,1,1,0,0,20240101,20241231\n" +
			"SAT,0,0,0,0,0,1,0,20240101,20241231",
		"calendar_dates.txt": "service_id,date,exception_type\n" +
			"WK,20240704,2\n" +
			"HOL,20240704,1",
		"trips.txt": "route_id,service_id,trip_id\n" +
			"R1,WK,T1\n" +
			"R1,WK,T2\n" +
			"R1,SAT,T3\n" +
			"R1,HOL,T4\n" +
			"R1,WK,T5",
		"stop_times.txt": "trip_id,arrival_time,departure_time,stop_id,stop_sequence\n" +
			"T1,08:00:00,08:01:00,S1,1\n" +
			"T1,08:10:00,08:10:00,S2,2\n" +
			"T2,09:00:00,09:00:00,S1,1\n" +
			"T2,09:10:00,09:10:00,S2,2\n" +
			"T3,10:00:00,10:00:00,S1,1\n" +
			"T4,11:00:00,11:00:00,S1,1\n" +
			"T5,24:30:00,24:30:00,S1,1\n" +
			"T5,25:00:00,25:00:00,S2,2",
	}
}

// Zip packs files into a GTFS zip archive.
func Zip(t testing.TB, files map[string]string) []byte {
	t.Helper()

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, name := range names {
		f, err := w.Create(name)
		if err != nil {
			t.Fatalf("creating %s: %v", name, err)
		}
		if _, err := f.Write([]byte(strings.TrimSpace(files[name]) + "\n")); err != nil {
			t.Fatalf("writing %s: %v", name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("closing zip: %v", err)
	}
	return buf.Bytes()
}
