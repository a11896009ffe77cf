package restapi

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTripFrequencyListsEveryStop(t *testing.T) {
	_, resp, model := serveAndRetrieveEndpoint(t,
		"/api/where/trip-frequency.json?key=TEST&day=Monday&startTime=07:30&endTime=09:30&direction=Departures")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	data, ok := model.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, false, data["limitExceeded"])

	list, ok := data["list"].([]interface{})
	require.True(t, ok)
	require.Len(t, list, 3)

	s1 := list[0].(map[string]interface{})
	assert.Equal(t, "S1", s1["stopId"])
	assert.Equal(t, float64(2), s1["tripCount"])
	assert.InDelta(t, 1.0, s1["tripsPerHour"], 1e-9)
	assert.Equal(t, float64(3540), s1["maxWaitSeconds"])
	assert.Equal(t, float64(59), s1["maxWaitMinutes"])
	assert.Equal(t, "Monday", s1["day"])
	assert.Equal(t, "departures", s1["direction"])
	assert.Equal(t, float64(7*3600+1800), s1["windowStart"])
	assert.Equal(t, float64(9*3600+1800), s1["windowEnd"])

	s2 := list[1].(map[string]interface{})
	assert.Equal(t, "S2", s2["stopId"])
	assert.Equal(t, float64(60), s2["maxWaitMinutes"])

	s3 := list[2].(map[string]interface{})
	assert.Equal(t, "S3", s3["stopId"])
	assert.Equal(t, float64(0), s3["tripCount"])
	assert.Nil(t, s3["maxWaitMinutes"])
	assert.Nil(t, s3["maxWaitSeconds"])

	refs := data["references"].(map[string]interface{})
	assert.Len(t, refs["stops"], 3)
}

func TestTripFrequencyDefaultsToDepartures(t *testing.T) {
	_, resp, model := serveAndRetrieveEndpoint(t,
		"/api/where/trip-frequency.json?key=TEST&day=Monday&startTime=07:30&endTime=09:30")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	list := model.Data.(map[string]interface{})["list"].([]interface{})
	assert.Equal(t, "departures", list[0].(map[string]interface{})["direction"])
}

func TestTripFrequencyValidation(t *testing.T) {
	api := createTestApi(t)

	tests := []struct {
		name  string
		query string
		field string
	}{
		{"missing day", "startTime=07:00&endTime=08:00", "day"},
		{"malformed day", "day=2024-07-04&startTime=07:00&endTime=08:00", "day"},
		{"unknown weekday", "day=Someday&startTime=07:00&endTime=08:00", "day"},
		{"bad direction", "day=Monday&startTime=07:00&endTime=08:00&direction=sideways", "direction"},
		{"end before start", "day=Monday&startTime=08:00&endTime=07:00", "endTime"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := serveApiAndRetrieveBody(t, api, "/api/where/trip-frequency.json?key=TEST&"+tt.query)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Contains(t, fieldErrorsOf(t, body), tt.field)
		})
	}
}

func TestTripFrequencyForStop(t *testing.T) {
	_, resp, model := serveAndRetrieveEndpoint(t,
		"/api/where/trip-frequency-for-stop/S2.json?key=TEST&day=Monday&startTime=07:30&endTime=09:30")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	entry := entryOf(t, model)
	assert.Equal(t, "S2", entry["stopId"])
	assert.Equal(t, float64(2), entry["tripCount"])
	assert.Equal(t, float64(3600), entry["maxWaitSeconds"])

	refs := model.Data.(map[string]interface{})["references"].(map[string]interface{})
	stops := refs["stops"].([]interface{})
	require.Len(t, stops, 1)
	assert.Equal(t, "Second Ave", stops[0].(map[string]interface{})["name"])
}

func TestTripFrequencyForStopOvernightArrivals(t *testing.T) {
	_, resp, model := serveAndRetrieveEndpoint(t,
		"/api/where/trip-frequency-for-stop/S1?key=TEST&day=Tuesday&startTime=00:00&endTime=01:00&direction=arrivals")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	entry := entryOf(t, model)
	assert.Equal(t, float64(1), entry["tripCount"])
	assert.Equal(t, "arrivals", entry["direction"])
}

func TestTripFrequencyForUnknownStop(t *testing.T) {
	_, resp, model := serveAndRetrieveEndpoint(t,
		"/api/where/trip-frequency-for-stop/NOPE.json?key=TEST&day=Monday&startTime=07:30&endTime=09:30")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, http.StatusNotFound, model.Code)
}

func TestTripFrequencyForStopInvalidID(t *testing.T) {
	api := createTestApi(t)
	resp, body := serveApiAndRetrieveBody(t, api,
		"/api/where/trip-frequency-for-stop/S1$bad.json?key=TEST&day=Monday&startTime=07:30&endTime=09:30")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, fieldErrorsOf(t, body), "id")
}

func TestTripFrequencyMalformedTime(t *testing.T) {
	api := createTestApi(t)
	resp, body := serveApiAndRetrieveBody(t, api, "/api/where/trip-frequency.json?key=TEST&day=Monday&startTime=7am&endTime=08:00")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, []string{"time must be in HH:MM format"}, fieldErrorsOf(t, body)["startTime"])
}
