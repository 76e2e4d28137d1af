package entity

import (
	"errors"
	"fmt"
)

// Domain errors for the book dataset.
var (
	ErrBookMissing      = errors.New("book metadata missing")
	ErrShapeMismatch    = errors.New("dimensions disagree with book metadata")
	ErrValidationFailed = errors.New("integrity validation failed")
	ErrUnknownDay       = errors.New("day has no word slots")
	ErrUnknownTable     = errors.New("unknown table")
	ErrDuplicateBook    = errors.New("more than one book record")
)

// FormatError reports a source that lacks an expected column.
type FormatError struct {
	Source string
	Column string
}

func (e *FormatError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("format: %s: missing header", e.Source)
	}
	return fmt.Sprintf("format: %s: missing column %q", e.Source, e.Column)
}

// ParseError reports a value that cannot be converted to its column type.
type ParseError struct {
	Source string
	Row    int
	Column string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse: %s row %d column %q: invalid value %q: %v", e.Source, e.Row, e.Column, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// AlreadyPopulatedError is returned when skeleton population runs against a dataset that has words.
type AlreadyPopulatedError struct {
	Words int
}

func (e *AlreadyPopulatedError) Error() string {
	return fmt.Sprintf("dataset already populated with %d words; delete and recreate the store to start over", e.Words)
}

// BoundsError reports an ordinal outside the range declared by the book.
type BoundsError struct {
	Field string
	Value int64
	Min   int64
	Max   int64
}

func (e *BoundsError) Error() string {
	return fmt.Sprintf("%s %d out of range [%d, %d]", e.Field, e.Value, e.Min, e.Max)
}
