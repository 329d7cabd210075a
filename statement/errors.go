package statement

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownMonth is returned when a month code's abbreviation is not one
	// of the twelve Spanish abbreviations.
	ErrUnknownMonth = errors.New("unknown month abbreviation")

	// ErrMalformedMonthCode is returned when a code is not "<abbrev>-<yy>".
	ErrMalformedMonthCode = errors.New("malformed month code")
)

// MonthCodeError names the code that failed to resolve.
type MonthCodeError struct {
	Code string
	Err  error
}

func (e *MonthCodeError) Error() string {
	return fmt.Sprintf("month code %q: %v", e.Code, e.Err)
}

func (e *MonthCodeError) Unwrap() error { return e.Err }
