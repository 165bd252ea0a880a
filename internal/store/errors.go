package store

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a facility or charger id is unknown.
var ErrNotFound = errors.New("not found")

// ValidationError reports malformed or out-of-range input. It maps to a 400
// at the API boundary, unlike StoreError which maps to a 500.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func validationErrorf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
