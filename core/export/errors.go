package export

import (
	"errors"
	"fmt"
)

// ErrorKind classifies export failures.
type ErrorKind int

const (
	// KindValidation covers bad window bounds, bad identifiers and
	// rejected SQL. Always detected before any database round-trip.
	KindValidation ErrorKind = iota + 1
	// KindExecution covers connection, statement and mid-stream write
	// failures. Files finalized before the fault remain on disk.
	KindExecution
)

// Error is the single failure type returned by both export entry points.
type Error struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func validationErr(op string, err error) *Error {
	return &Error{Kind: KindValidation, Op: op, Err: err}
}

func executionErr(op string, err error) *Error {
	return &Error{Kind: KindExecution, Op: op, Err: err}
}

// IsValidation reports whether err is an export validation failure,
// the moral equivalent of an HTTP bad request.
func IsValidation(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == KindValidation
}
