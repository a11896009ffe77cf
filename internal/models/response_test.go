package models

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nowMillis() int64 {
	return time.Now().UnixNano() / int64(time.Millisecond)
}

func TestNewResponse(t *testing.T) {
	before := nowMillis()
	response := NewResponse(http.StatusCreated, map[string]string{"key": "value"}, "Resource Created")
	after := nowMillis()

	assert.Equal(t, http.StatusCreated, response.Code)
	assert.Equal(t, "Resource Created", response.Text)
	assert.Equal(t, 2, response.Version)
	assert.GreaterOrEqual(t, response.CurrentTime, before)
	assert.LessOrEqual(t, response.CurrentTime, after)
}

func TestNewEntryResponse(t *testing.T) {
	entry := NewAnalysisTimesEntry("1900-01-01 08:00:00", "1900-01-01 08:00:00", true, 5, []string{"1900-01-01 08:00:00"})
	references := NewEmptyReferences()

	response := NewEntryResponse(entry, references)
	assert.Equal(t, http.StatusOK, response.Code)
	assert.Equal(t, "OK", response.Text)

	data, ok := response.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, entry, data["entry"])
	assert.Equal(t, references, data["references"])
}

func TestNewListResponse(t *testing.T) {
	list := []StopFrequency{{StopID: "S1", TripCount: 2}}
	references := NewStopReferences([]Stop{NewStop("S1", "Main St", 47.6, -122.3)})

	response := NewListResponse(list, references)

	data, ok := response.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, list, data["list"])
	assert.Equal(t, references, data["references"])
	assert.False(t, data["limitExceeded"].(bool))
}

func TestEmptyReferencesEncodeAsArrays(t *testing.T) {
	b, err := json.Marshal(NewEmptyReferences())
	require.NoError(t, err)
	assert.JSONEq(t, `{"agencies":[],"routes":[],"situations":[],"stopTimes":[],"stops":[],"trips":[]}`, string(b))
}
