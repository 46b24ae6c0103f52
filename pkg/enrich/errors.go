package enrich

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingField means a timestamp field is absent or null.
	ErrMissingField = errors.New("missing field")
	// ErrNotEpoch means a timestamp field is present but not epoch seconds.
	ErrNotEpoch = errors.New("not an epoch timestamp")
)

// MalformedRecordError reports a record that lacks, or has an unusable,
// expected field. The record is still kept.
type MalformedRecordError struct {
	Index int
	MAC   string
	Field string
	Err   error
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("record %d (mac %q): field %q: %v", e.Index, e.MAC, e.Field, e.Err)
}

func (e *MalformedRecordError) Unwrap() error {
	return e.Err
}
