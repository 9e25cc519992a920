package qshadow

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration marks input the scheduler refuses to start with.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrConvergenceFailure is returned when a completed round fully matched
	// no active observable. It points at a logic or weighting defect and is
	// never retried.
	ErrConvergenceFailure = errors.New("convergence failure")

	// ErrParse wraps every *ParseError.
	ErrParse = errors.New("parse error")

	// ErrNoMatchingRounds is returned by Predict when no measurement round
	// matches the observable, so its expectation is undefined.
	ErrNoMatchingRounds = errors.New("no matching measurement rounds")
)

func configError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfiguration, fmt.Sprintf(format, args...))
}

// ParseError describes malformed observable, measurement or weight input.
// Line is 1-based; 0 means the position is unknown.
type ParseError struct {
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
	}
	return e.Msg
}

func (e *ParseError) Unwrap() error {
	return ErrParse
}

func parseErrorf(line int, format string, args ...any) error {
	return &ParseError{Line: line, Msg: fmt.Sprintf(format, args...)}
}
