package domain

import (
	"errors"
	"fmt"
)

// ErrEmptyResult is returned by aggregates that need at least one qualifying
// row when none exist.
var ErrEmptyResult = errors.New("no rows qualify for this aggregate")

// DataSourceError reports a dataset that is missing, unreadable, malformed,
// or empty.
type DataSourceError struct {
	Source string
	Op     string // "open", "read", "parse", "empty"
	Err    error
}

func (e *DataSourceError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("data source %s: %s", e.Source, e.Op)
	}
	return fmt.Sprintf("data source %s: %s: %v", e.Source, e.Op, e.Err)
}

func (e *DataSourceError) Unwrap() error { return e.Err }

// NewDataSourceError wraps err as a DataSourceError. An err that already is
// one is returned unchanged.
func NewDataSourceError(source, op string, err error) error {
	var dse *DataSourceError
	if errors.As(err, &dse) {
		return err
	}
	return &DataSourceError{Source: source, Op: op, Err: err}
}

// IsDataSourceError reports whether err is or wraps a DataSourceError.
func IsDataSourceError(err error) bool {
	var dse *DataSourceError
	return errors.As(err, &dse)
}
