package utils

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"transitanalysis.onebusaway.org/internal/timewindow"
)

func TestValidateID(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr bool
		errMsg  string
	}{
		{name: "valid simple ID", id: "S1"},
		{name: "valid ID with hyphens", id: "stop-123_north"},
		{name: "empty ID", id: "", wantErr: true, errMsg: "id cannot be empty"},
		{name: "ID too long", id: strings.Repeat("a", 101), wantErr: true, errMsg: "id too long (max 100 characters)"},
		{name: "ID with invalid characters", id: "S1<script>", wantErr: true, errMsg: "id contains invalid characters"},
		{name: "ID with path traversal", id: "../../../etc/passwd", wantErr: true, errMsg: "id contains invalid characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateID(tt.id)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, tt.errMsg, err.Error())
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestValidateDayToken(t *testing.T) {
	for _, ok := range []string{"Monday", "wednesday", "20240704"} {
		assert.NoError(t, ValidateDayToken(ok), ok)
	}
	for _, bad := range []string{"", "Mon", "2024-07-04", "Monday;DROP", "202407041"} {
		assert.Error(t, ValidateDayToken(bad), bad)
	}
}

func TestValidateClock(t *testing.T) {
	for _, ok := range []string{"08:00", "8:00", "25:30"} {
		assert.NoError(t, ValidateClock(ok), ok)
	}
	for _, bad := range []string{"", "0800", "08:0", "108:00", "ab:cd"} {
		assert.Error(t, ValidateClock(bad), bad)
	}
}

func TestSanitizeInput(t *testing.T) {
	assert.Equal(t, "Main St", SanitizeInput("  <b>Main St</b> "))
}

func TestParseIntParam(t *testing.T) {
	params := url.Values{"increment": {"15"}, "bad": {"x"}}

	v, errs := ParseIntParam(params, "increment", 0, nil)
	assert.Equal(t, 15, v)
	assert.Empty(t, errs)

	v, errs = ParseIntParam(params, "missing", 30, errs)
	assert.Equal(t, 30, v)
	assert.Empty(t, errs)

	_, errs = ParseIntParam(params, "bad", 0, errs)
	assert.Equal(t, []string{`Invalid field value for field "bad".`}, errs["bad"])
}

func TestRequireParams(t *testing.T) {
	errs := RequireParams(url.Values{"day": {"Monday"}}, []string{"day", "startTime"}, nil)
	assert.Len(t, errs, 1)
	assert.Contains(t, errs, "startTime")
}

func TestInputErrorFields(t *testing.T) {
	fields, ok := InputErrorFields(&timewindow.InputError{Field: "endTime", Message: "End time is earlier than start time."})
	require.True(t, ok)
	assert.Equal(t, map[string][]string{"endTime": {"End time is earlier than start time."}}, fields)

	_, ok = InputErrorFields(assert.AnError)
	assert.False(t, ok)
}

func TestValidateClockParams(t *testing.T) {
	params := url.Values{"startTime": {"8am"}, "endTime": {"09:00"}}
	errs := ValidateClockParams(params, []string{"startTime", "endTime", "missing"}, nil)
	assert.Equal(t, map[string][]string{"startTime": {"time must be in HH:MM format"}}, errs)
}
