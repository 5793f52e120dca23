package query

import (
	"errors"
	"fmt"
)

// ErrInvalidFilter is matched by every caller-input error raised while parsing or applying filters.
var ErrInvalidFilter = errors.New("invalid filter")

// FilterError describes a rejected query parameter.
type FilterError struct {
	Key    string
	Value  string
	Reason string
}

func (e *FilterError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("Invalid filter: %s %q", e.Reason, e.Key)
	}
	return fmt.Sprintf("Invalid filter: %s %q=%q", e.Reason, e.Key, e.Value)
}

func (e *FilterError) Unwrap() error {
	return ErrInvalidFilter
}

func invalidFilter(key, value, reason string) error {
	return &FilterError{Key: key, Value: value, Reason: reason}
}
