package weather

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrEmptyInput is returned when an aggregation receives no records.
	ErrEmptyInput = errors.New("empty input")

	// ErrMalformedRecord matches every *MalformedRecordError.
	ErrMalformedRecord = errors.New("malformed record")

	// ErrLocationNotFound is returned by resolvers that found no match.
	ErrLocationNotFound = errors.New("location not found")

	// ErrNoHistory is returned by a Service that keeps no stored overviews.
	ErrNoHistory = errors.New("no overview history kept")
)

// MalformedRecordError reports a record missing a required field.
type MalformedRecordError struct {
	Index int
	Time  time.Time
	Field string
}

func (e *MalformedRecordError) Error() string {
	if e.Time.IsZero() {
		return fmt.Sprintf("malformed record %d: missing %s", e.Index, e.Field)
	}
	return fmt.Sprintf("malformed record %d at %s: missing %s", e.Index, e.Time.Format(time.RFC3339), e.Field)
}

func (e *MalformedRecordError) Unwrap() error {
	return ErrMalformedRecord
}
