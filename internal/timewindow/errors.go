package timewindow

import (
	"errors"
	"fmt"
)

// InputError reports a malformed or contradictory day/time parameter. It is raised
// before any external resource is touched.
type InputError struct {
	Field   string
	Message string
}

func (e *InputError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// IsInputError reports whether err wraps an *InputError.
func IsInputError(err error) bool {
	var inputErr *InputError
	return errors.As(err, &inputErr)
}
