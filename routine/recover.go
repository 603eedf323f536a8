package routine

import (
	stderrors "errors"
	"fmt"
	"runtime"

	"github.com/pkg/errors"

	"github.com/surya2611/percona-server-mongodb/status"
)

func Recover(cleanups ...func(r interface{})) {
	if r := recover(); r != nil {
		for _, cleanup := range cleanups {
			cleanup(r)
		}
	}
}

// CallSafe runs fn and converts a panic into an error. A panic value
// that already is (or wraps) a coded *status.Error is propagated with
// its code intact; anything else becomes an UnknownError carrying the
// panic value and the panicking stack. The (val, err) pair of a
// non-panicking fn is returned unchanged.
func CallSafe[T any](fn func() (T, error)) (val T, err error) {
	defer func() {
		if r := recover(); r != nil {
			if panicErr, ok := r.(error); ok {
				var statusErr *status.Error
				if stderrors.As(panicErr, &statusErr) {
					err = statusErr
					return
				}
			}
			err = status.Wrap(status.CodeUnknownError, "callback panicked", NewRecovered(2, r).AsError())
		}
	}()
	return fn()
}

// Recovered holds a panic value and the stack of the panicking goroutine.
type Recovered struct {
	Value   interface{}
	Callers []uintptr
}

func NewRecovered(skip int, value interface{}) *Recovered {
	var callers [32]uintptr
	n := runtime.Callers(skip+1, callers[:])
	return &Recovered{
		Value:   value,
		Callers: callers[:n],
	}
}

func (p *Recovered) AsError() error {
	if p == nil {
		return nil
	}
	return &RecoveredError{p}
}

type RecoveredError struct {
	*Recovered
}

func (e *RecoveredError) Error() string {
	return fmt.Sprintf("panic: %v\nstacktrace:%+v", e.Value, e.StackTrace())
}

func (e *RecoveredError) StackTrace() errors.StackTrace {
	if e == nil {
		return nil
	}
	frames := make([]errors.Frame, len(e.Callers))
	for i, pc := range e.Callers {
		frames[i] = errors.Frame(pc)
	}
	return frames
}
