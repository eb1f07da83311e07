package input

import (
	"errors"
	"fmt"
)

// Sentinel errors classifying every way an input file can be rejected.
// Loaders wrap these in an *Error carrying the operation and line context,
// so callers can branch with errors.Is while still getting a readable cause.
var (
	// ErrStreamOpen means the file is missing or unreadable.
	ErrStreamOpen = errors.New("cannot open input stream")
	// ErrTruncatedInput means the stream ended before the declared number
	// of sites was consumed (short binary block or failed line read).
	ErrTruncatedInput = errors.New("truncated input")
	// ErrFormat means a record is structurally wrong: too few fields,
	// an invalid genotype code, or a malformed position row.
	ErrFormat = errors.New("invalid record format")
	// ErrCorruptData means a NaN survived normalization, which only
	// happens when the file content does not match the declared format.
	ErrCorruptData = errors.New("corrupt data")
	// ErrInvalidDistance means two adjacent sites on the same chromosome
	// are less than one base pair apart.
	ErrInvalidDistance = errors.New("invalid distance between adjacent sites")
	// ErrTrailingData means the stream holds more records than the
	// declared site count.
	ErrTrailingData = errors.New("trailing data after last site")
)

// Error is a fatal input error with operation and line context.
type Error struct {
	Op   string // operation that failed, e.g. "load genotypes"
	Line int    // 1-based line number, 0 if not line-oriented
	Kind error  // one of the sentinel errors above
	Msg  string // human-readable cause
}

func (e *Error) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s: line %d: %s: %s", e.Op, e.Line, e.Kind, e.Msg)
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, e.Msg)
}

// Unwrap exposes the sentinel so errors.Is(err, input.ErrFormat) works.
func (e *Error) Unwrap() error {
	return e.Kind
}

// Errorf builds an *Error with a formatted cause.
func Errorf(op string, line int, kind error, format string, args ...any) *Error {
	return &Error{Op: op, Line: line, Kind: kind, Msg: fmt.Sprintf(format, args...)}
}
