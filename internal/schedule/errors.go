package schedule

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedRecord is matched (errors.Is) by every *RecordError.
	ErrMalformedRecord = errors.New("malformed record")

	// ErrEmptyStage means the grouper produced a stage without sets. It is
	// an internal invariant violation, never a user input problem.
	ErrEmptyStage = errors.New("stage has no sets")

	// ErrSetIndex is returned by the window resolver for an index outside
	// the stage's set list.
	ErrSetIndex = errors.New("set index out of range")
)

// RecordError describes a schedule line that could not be parsed.
type RecordError struct {
	Line   int // 1-based; 0 when parsing a single detached line
	Text   string
	Reason string
	Err    error
}

func (e *RecordError) Error() string {
	msg := "malformed record"
	if e.Line > 0 {
		msg = fmt.Sprintf("%s at line %d", msg, e.Line)
	}
	msg = fmt.Sprintf("%s (%q): %s", msg, e.Text, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

func (e *RecordError) Is(target error) bool {
	return target == ErrMalformedRecord
}
