// Package status provides the coded error type shared by every
// asynchronous producer and consumer in the engine.
//
// A *Error pairs a stable numeric Code with a human-readable message,
// an optional wrapped cause and a captured stack. The convention across
// the codebase is the ordinary Go pair (value, error): a nil error means
// success, a non-nil error is (or wraps) a *Error.
package status

import (
	"errors"
	"fmt"
)

// Error is a coded error. The zero value is not meaningful; use New,
// Errorf or Wrap.
type Error struct {
	error   // wrapped cause, maybe nil
	*stack  // never nil
	code    Code
	message string
}

// New returns an Error with the given code and message and records the
// stack at the point it was called.
func New(code Code, message string) *Error {
	return &Error{
		stack:   callers(1, stackDepth),
		code:    code,
		message: message,
	}
}

// Errorf is New with fmt.Sprintf formatting of the message.
func Errorf(code Code, format string, args ...interface{}) *Error {
	return &Error{
		stack:   callers(1, stackDepth),
		code:    code,
		message: fmt.Sprintf(format, args...),
	}
}

// Wrap returns an Error with the given code and message that wraps
// cause. If cause is already a *Error it is returned unchanged, keeping
// the original code and stack.
func Wrap(code Code, message string, cause error) *Error {
	if cause == nil {
		return New(code, message)
	}
	var statusErr *Error
	if errors.As(cause, &statusErr) {
		return statusErr
	}
	return &Error{
		error:   cause,
		stack:   callers(1, stackDepth),
		code:    code,
		message: message,
	}
}

func (e *Error) Error() string {
	if e.error != nil {
		return fmt.Sprintf("%s(%d): %s: %v", e.code, e.code, e.message, e.error)
	}
	return fmt.Sprintf("%s(%d): %s", e.code, e.code, e.message)
}

func (e *Error) Format(s fmt.State, verb rune) {
	switch verb {
	case 'v':
		if s.Flag('+') {
			if e.error != nil {
				fmt.Fprintf(s, "%+v\n", e.error)
			}
			fmt.Fprintf(s, "%s(%d): %s", e.code, e.code, e.message)
			e.stack.StackTrace().Format(s, verb)
			return
		}
		fallthrough
	case 's':
		fmt.Fprintf(s, "%s", e.Error())
	case 'q':
		fmt.Fprintf(s, "%q", e.Error())
	}
}

func (e *Error) Unwrap() error {
	return e.error
}

func (e *Error) Code() Code {
	return e.code
}

func (e *Error) Message() string {
	return e.message
}

func (e *Error) StackTrace() StackTrace {
	return e.stack.StackTrace()
}

// CodeOf extracts the Code carried by err. A nil err is CodeOK; an
// uncoded err is CodeUnknownError.
func CodeOf(err error) Code {
	if err == nil {
		return CodeOK
	}
	var statusErr *Error
	if errors.As(err, &statusErr) {
		return statusErr.code
	}
	return CodeUnknownError
}

// IsCode reports whether err carries code.
func IsCode(err error, code Code) bool {
	return CodeOf(err) == code
}

// MessageOf returns the message of a coded err, or err.Error() for an
// uncoded one. Nil yields "".
func MessageOf(err error) string {
	if err == nil {
		return ""
	}
	var statusErr *Error
	if errors.As(err, &statusErr) {
		return statusErr.message
	}
	return err.Error()
}

// FromError converts any error into a *Error, coding uncoded errors as
// CodeUnknownError. Nil stays nil.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var statusErr *Error
	if errors.As(err, &statusErr) {
		return statusErr
	}
	return Wrap(CodeUnknownError, "unknown error", err)
}
