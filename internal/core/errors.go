package core

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownTable is returned for a table key that is not registered.
var ErrUnknownTable = errors.New("unknown table")

// ErrNoBronzeLoader is returned by LoadBronze when the service has no
// bronze sink.
var ErrNoBronzeLoader = errors.New("bronze loader not configured")

// Table operations recorded in TableError.
const (
	OpRead    = "read"
	OpLoad    = "load"
)

// TableError attaches the table key and failing step to an error.
type TableError struct {
	Table string
	Op    string
	Err   error
}

func (e *TableError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Table, e.Err)
}

func (e *TableError) Unwrap() error {
	return e.Err
}

// RunError reports several failed tables at once.
type RunError struct {
	Failed []TableResult
}

func (e *RunError) Error() string {
	names := make([]string, len(e.Failed))
	for i, f := range e.Failed {
		names[i] = f.Table
	}
	return fmt.Sprintf("%d tables failed: %s", len(e.Failed), strings.Join(names, ", "))
}

// Unwrap exposes every table error to errors.Is and errors.As.
func (e *RunError) Unwrap() []error {
	errs := make([]error, len(e.Failed))
	for i, f := range e.Failed {
		errs[i] = f.Err
	}
	return errs
}

func unknownTable(key string) error {
	return fmt.Errorf("%w: %s", ErrUnknownTable, key)
}
