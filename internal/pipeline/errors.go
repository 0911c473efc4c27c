package pipeline

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrIO marks a source that could not be opened or read.
	ErrIO = errors.New("source unreadable")
	// ErrSchema marks a source missing required columns.
	ErrSchema = errors.New("schema mismatch")
	// ErrInvalidRequest marks an unknown variant, chart or granularity.
	ErrInvalidRequest = errors.New("invalid dashboard request")
)

// IOError wraps a failure to open or read a source.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("read %s: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() []error { return []error{ErrIO, e.Err} }

// SchemaError lists required columns absent from a source header.
type SchemaError struct {
	Path    string
	Missing []string
}

func (e *SchemaError) Error() string {
	if len(e.Missing) == 0 {
		return fmt.Sprintf("%s: no header row", e.Path)
	}
	return fmt.Sprintf("%s: missing required columns: %s", e.Path, strings.Join(e.Missing, ", "))
}

func (e *SchemaError) Unwrap() error { return ErrSchema }

// ParseWarning is a single cell that failed to parse and was coerced.
// The row it belongs to is kept.
type ParseWarning struct {
	Line   int    `json:"line"`
	Column string `json:"column"`
	Value  string `json:"value"`
	Reason string `json:"reason"`
}

func (w ParseWarning) String() string {
	return fmt.Sprintf("line %d, %s=%q: %s", w.Line, w.Column, w.Value, w.Reason)
}
