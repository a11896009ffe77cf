package utils

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"transitanalysis.onebusaway.org/internal/timewindow"
)

// ParseIntParam retrieves an int value from the provided URL query parameters.
// If the key is not present it returns def. An invalid value adds a field error.
func ParseIntParam(params url.Values, key string, def int, fieldErrors map[string][]string) (int, map[string][]string) {
	if fieldErrors == nil {
		fieldErrors = make(map[string][]string)
	}

	val := params.Get(key)
	if val == "" {
		return def, fieldErrors
	}

	i, err := strconv.Atoi(val)
	if err != nil {
		fieldErrors[key] = append(fieldErrors[key], fmt.Sprintf("Invalid field value for field %q.", key))
	}
	return i, fieldErrors
}

// RequireParams adds a field error for every key missing from params.
func RequireParams(params url.Values, keys []string, fieldErrors map[string][]string) map[string][]string {
	if fieldErrors == nil {
		fieldErrors = make(map[string][]string)
	}
	for _, key := range keys {
		if params.Get(key) == "" {
			fieldErrors[key] = append(fieldErrors[key], fmt.Sprintf("Missing required field %q.", key))
		}
	}
	return fieldErrors
}

// InputErrorFields turns an input error into a field error map. ok is false for any
// other error.
func InputErrorFields(err error) (map[string][]string, bool) {
	var inputErr *timewindow.InputError
	if !errors.As(err, &inputErr) {
		return nil, false
	}
	return map[string][]string{inputErr.Field: {inputErr.Message}}, true
}

// ValidateClockParams adds a field error for every present key that is not HH:MM.
// Missing keys are left to RequireParams.
func ValidateClockParams(params url.Values, keys []string, fieldErrors map[string][]string) map[string][]string {
	if fieldErrors == nil {
		fieldErrors = make(map[string][]string)
	}
	for _, key := range keys {
		v := params.Get(key)
		if v == "" {
			continue
		}
		if err := ValidateClock(v); err != nil {
			fieldErrors[key] = append(fieldErrors[key], err.Error())
		}
	}
	return fieldErrors
}
