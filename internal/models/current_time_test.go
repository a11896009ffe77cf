package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCurrentTimeData(t *testing.T) {
	pacific := time.FixedZone("PDT", -7*60*60)

	tests := []struct {
		name         string
		at           time.Time
		wantReadable string
	}{
		{"utc", time.Date(2025, 5, 3, 12, 0, 0, 0, time.UTC), "2025-05-03T12:00:00Z"},
		{"offset zone", time.Date(2025, 5, 3, 5, 0, 0, 0, pacific), "2025-05-03T12:00:00Z"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := NewCurrentTimeData(tt.at)
			assert.Equal(t, tt.wantReadable, data.Entry.ReadableTime)
			assert.Equal(t, int64(1746273600000), data.Entry.Time)
			assert.NotNil(t, data.References.Stops)
		})
	}
}

func TestCurrentTimeDataJSON(t *testing.T) {
	b, err := json.Marshal(NewCurrentTimeData(time.Date(2025, 5, 3, 12, 0, 0, 0, time.UTC)))
	require.NoError(t, err)

	var decoded CurrentTimeData
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.Equal(t, int64(1746273600000), decoded.Entry.Time)
	assert.Contains(t, string(b), `"readableTime":"2025-05-03T12:00:00Z"`)
}
