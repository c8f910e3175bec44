package pdml

import (
	"fmt"
)

// ParseError reports decoder output that is not a well formed document.
type ParseError struct {
	error
}

func NewParseError(format string, args ...any) *ParseError {
	return &ParseError{fmt.Errorf(format, args...)}
}

func (e *ParseError) Unwrap() error {
	return e.error
}

// ExecutionError reports a decoder process that could not be run to a successful exit.
type ExecutionError struct {
	error
}

func NewExecutionError(format string, args ...any) *ExecutionError {
	return &ExecutionError{fmt.Errorf(format, args...)}
}

func (e *ExecutionError) Unwrap() error {
	return e.error
}
