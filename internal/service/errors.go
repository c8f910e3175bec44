package service

import (
	"fmt"
)

type ErrorKind string

const (
	ValidationFailure ErrorKind = "ValidationFailure"
	SubmissionFailure ErrorKind = "SubmissionFailure"
	LookupFailure     ErrorKind = "LookupFailure"
	ExecutionFailure  ErrorKind = "ExecutionFailure"
	ParseFailure      ErrorKind = "ParseFailure"
)

// ErrPcap is the error returned by the pcap service. Its message is the one of the
// underlying error, unchanged.
type ErrPcap struct {
	error
	Kind ErrorKind
}

func (e *ErrPcap) Unwrap() error {
	return e.error
}

func newErrPcap(kind ErrorKind, err error) *ErrPcap {
	return &ErrPcap{error: err, Kind: kind}
}

func NewErrValidation(message string) *ErrPcap {
	return newErrPcap(ValidationFailure, fmt.Errorf("%s", message))
}

func NewErrSubmission(err error) *ErrPcap {
	return newErrPcap(SubmissionFailure, err)
}

func NewErrLookup(err error) *ErrPcap {
	return newErrPcap(LookupFailure, err)
}

func NewErrExecution(err error) *ErrPcap {
	return newErrPcap(ExecutionFailure, err)
}

func NewErrParse(err error) *ErrPcap {
	return newErrPcap(ParseFailure, err)
}
