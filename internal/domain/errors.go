package domain

import (
	"errors"
	"fmt"
)

var (
	ErrPlayerNotFound = errors.New("player has no game archive")
	ErrEmptyRange     = errors.New("no games found in the selected date range")
	ErrInvalidQuery   = errors.New("invalid query")
)

// FetchError is a transport or remote failure while talking to the archive service.
type FetchError struct {
	Op     string
	URL    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e == nil {
		return "fetch error"
	}
	msg := "fetch " + e.Op
	if e.URL != "" {
		msg += " " + e.URL
	}
	if e.Status != 0 {
		msg += fmt.Sprintf(": status=%d", e.Status)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *FetchError) Unwrap() error { return e.Err }

// IsFetchError reports whether err wraps a *FetchError.
func IsFetchError(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe)
}

// InvalidQuery wraps ErrInvalidQuery with a reason.
func InvalidQuery(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidQuery, fmt.Sprintf(format, args...))
}
