package core

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// errors
	ErrNotFound    = errors.New("record not found")
	ErrEmptyResult = errors.New("record store returned no results")
)

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

// RemoteError is returned by a RecordStore whose response envelope reports `success=false`.
type RemoteError struct {
	Message string
}

func NewRemoteError(msg string) error {
	return &RemoteError{Message: msg}
}

func (err *RemoteError) Error() string {
	return err.Message
}

// WriteError is returned when a mutation result list holds at least one failed entry.
type WriteError struct {
	Failures []RecordResult
}

func (err *WriteError) Error() string {
	if len(err.Failures) == 0 || err.Failures[0].Message == "" {
		return "record write failed"
	}
	return err.Failures[0].Message
}

// ErrorKind classifies an OpError.
type ErrorKind int

const (
	KindRemote ErrorKind = iota
	KindNotFound
	KindWrite
)

func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindWrite:
		return "write_failed"
	default:
		return "remote_failure"
	}
}

// OpError is the failure returned by every adapter operation.
// Message is the coarse, operation-scoped text safe to show to end users.
// Detail is only set for write failures and holds the first failed record's message.
type OpError struct {
	Kind    ErrorKind
	Message string
	Detail  string
	Err     error
}

// NewOpError classifies err and wraps it behind msg.
func NewOpError(msg string, err error) *OpError {
	opErr := &OpError{Kind: KindRemote, Message: msg, Err: err}
	var wErr *WriteError
	switch {
	case errors.Is(err, ErrNotFound):
		opErr.Kind = KindNotFound
	case errors.As(err, &wErr):
		opErr.Kind = KindWrite
		opErr.Detail = wErr.Error()
	}
	return opErr
}

func (err *OpError) Error() string {
	if err.Detail != "" {
		return err.Detail
	}
	return err.Message
}

func (err *OpError) Unwrap() error { return err.Err }

func (err *OpError) Cause() error { return err.Err }

// Format prints the wrapped error chain with `%+v`.
func (err *OpError) Format(s fmt.State, verb rune) {
	if verb == 'v' && s.Flag('+') {
		_, _ = fmt.Fprintf(s, "%s: %+v", err.Message, err.Err)
		return
	}
	_, _ = fmt.Fprint(s, err.Error())
}

// IsNotFound reports whether err is (or wraps) a not found failure.
func IsNotFound(err error) bool {
	var opErr *OpError
	if errors.As(err, &opErr) {
		return opErr.Kind == KindNotFound
	}
	return errors.Is(err, ErrNotFound)
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
