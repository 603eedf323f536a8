package status

import "context"

// FromContextErr maps a context error into the coded interruption error
// reported to a blocked waiter: context.Canceled becomes Interrupted and
// context.DeadlineExceeded becomes ExceededTimeLimit. Any other non-nil
// error is coded UnknownError. Nil stays nil.
func FromContextErr(err error) *Error {
	switch err {
	case nil:
		return nil
	case context.Canceled:
		return New(CodeInterrupted, "operation was interrupted")
	case context.DeadlineExceeded:
		return New(CodeExceededTimeLimit, "operation exceeded time limit")
	default:
		return Wrap(CodeUnknownError, "unknown error", err)
	}
}
