package future

import (
	"github.com/surya2611/percona-server-mongodb/routine"
	"github.com/surya2611/percona-server-mongodb/status"
)

// The combinators below all consume their input Future and return a
// fresh one backed by its own shared state, completed by the combination
// of the input's result and the callback's outcome. Callback panics are
// captured and become the new Future's error; the tap family is the one
// exception, see its comment.
//
// transform is the shared engine: step maps the input (value, error)
// pair to the output pair and is responsible for its own skip logic and
// panic boundary. An immediate input short-circuits without allocating
// shared state.
func transform[T, R any](f *Future[T], op string, step func(T, error) (R, error)) *Future[R] {
	f.consume(op)
	if f.state == nil {
		return MakeReadyFutureResult(step(f.val, f.err))
	}
	out := newSharedState[R]()
	f.state.subscribe(func(val T, err error) {
		out.complete(step(val, err))
	})
	return &Future[R]{state: out}
}

// transformFuture is transform for callbacks producing a nested Future:
// step's outcome is unwrapped into the returned Future rather than
// nesting.
func transformFuture[T, R any](f *Future[T], op string, step func(T, error) *Future[R]) *Future[R] {
	f.consume(op)
	out := newSharedState[R]()
	f.subscribe(func(val T, err error) {
		inner := step(val, err)
		if inner == nil {
			panic("future: " + op + " callback returned nil future")
		}
		inner.propagateTo(out)
	})
	return &Future[R]{state: out}
}

// Then runs fn only if f succeeds; an error bypasses fn and propagates
// unchanged. This is the same-type method form; use the package-level
// Then for a type-changing chain.
func (f *Future[T]) Then(fn func(T) (T, error)) *Future[T] {
	return chainThen(f, fn)
}

// Then runs fn with f's value only if f succeeds; an error bypasses fn
// and propagates unchanged. fn's outcome (or panic) becomes the returned
// Future's result.
func Then[T, R any](f *Future[T], fn func(T) (R, error)) *Future[R] {
	return chainThen(f, fn)
}

func chainThen[T, R any](f *Future[T], fn func(T) (R, error)) *Future[R] {
	return transform(f, "Then", func(val T, err error) (R, error) {
		if err != nil {
			var zero R
			return zero, err
		}
		return routine.CallSafe(func() (R, error) {
			return fn(val)
		})
	})
}

// ThenFuture is Then for callbacks that return a nested Future, which is
// unwrapped into the result.
func ThenFuture[T, R any](f *Future[T], fn func(T) *Future[R]) *Future[R] {
	return transformFuture(f, "ThenFuture", func(val T, err error) *Future[R] {
		if err != nil {
			return MakeReadyFutureErr[R](err)
		}
		return fn(val)
	})
}

// OnCompletion runs fn with f's (value, error) pair whether f succeeded
// or failed; fn's outcome becomes the returned Future's result.
// Same-type method form of the package-level OnCompletion.
func (f *Future[T]) OnCompletion(fn func(T, error) (T, error)) *Future[T] {
	return chainOnCompletion(f, fn)
}

// OnCompletion runs fn with f's (value, error) pair whether f succeeded
// or failed; fn's outcome (or panic) becomes the returned Future's
// result.
func OnCompletion[T, R any](f *Future[T], fn func(T, error) (R, error)) *Future[R] {
	return chainOnCompletion(f, fn)
}

func chainOnCompletion[T, R any](f *Future[T], fn func(T, error) (R, error)) *Future[R] {
	return transform(f, "OnCompletion", func(val T, err error) (R, error) {
		return routine.CallSafe(func() (R, error) {
			return fn(val, err)
		})
	})
}

// OnCompletionFuture is OnCompletion for callbacks that return a nested
// Future.
func OnCompletionFuture[T, R any](f *Future[T], fn func(T, error) *Future[R]) *Future[R] {
	return transformFuture(f, "OnCompletionFuture", fn)
}

// OnError runs fn only if f fails; a success bypasses fn and propagates
// unchanged. fn may produce a replacement value or a replacement error.
// It only catches errors from earlier stages, not a general handler for
// the whole chain.
func (f *Future[T]) OnError(fn func(error) (T, error)) *Future[T] {
	return transform(f, "OnError", func(val T, err error) (T, error) {
		if err == nil {
			return val, nil
		}
		return routine.CallSafe(func() (T, error) {
			return fn(err)
		})
	})
}

// OnErrorCode is OnError restricted to errors carrying code; any other
// error propagates unchanged.
func (f *Future[T]) OnErrorCode(code status.Code, fn func(error) (T, error)) *Future[T] {
	return transform(f, "OnErrorCode", func(val T, err error) (T, error) {
		if err == nil || !status.IsCode(err, code) {
			return val, err
		}
		return routine.CallSafe(func() (T, error) {
			return fn(err)
		})
	})
}

// OnErrorCategory is OnError restricted to errors whose code belongs to
// cat; any other error propagates unchanged.
func (f *Future[T]) OnErrorCategory(cat status.Category, fn func(error) (T, error)) *Future[T] {
	return transform(f, "OnErrorCategory", func(val T, err error) (T, error) {
		if err == nil || !status.InCategory(err, cat) {
			return val, err
		}
		return routine.CallSafe(func() (T, error) {
			return fn(err)
		})
	})
}

// OnErrorFuture is OnError for callbacks that return a replacement
// Future, such as a retry.
func OnErrorFuture[T any](f *Future[T], fn func(error) *Future[T]) *Future[T] {
	return transformFuture(f, "OnErrorFuture", func(val T, err error) *Future[T] {
		if err == nil {
			return MakeReadyFuture(val)
		}
		return fn(err)
	})
}

// The tap family observes the result flowing through the chain without
// altering it, like a wire tap on the producer/consumer conversation.
// Observers return nothing and so have no output slot to divert a
// failure into: a panicking observer is not recovered and will take down
// whichever goroutine ran it.

// Tap runs fn with the value if f succeeds. The result propagates
// unchanged either way.
func (f *Future[T]) Tap(fn func(T)) *Future[T] {
	return transform(f, "Tap", func(val T, err error) (T, error) {
		if err == nil {
			fn(val)
		}
		return val, err
	})
}

// TapError runs fn with the error if f fails. The result propagates
// unchanged either way.
func (f *Future[T]) TapError(fn func(error)) *Future[T] {
	return transform(f, "TapError", func(val T, err error) (T, error) {
		if err != nil {
			fn(err)
		}
		return val, err
	})
}

// TapAll runs fn with the (value, error) pair on any outcome. The result
// propagates unchanged.
func (f *Future[T]) TapAll(fn func(T, error)) *Future[T] {
	return transform(f, "TapAll", func(val T, err error) (T, error) {
		fn(val, err)
		return val, err
	})
}

// IgnoreValue collapses f into a value-less Future, keeping errors
// propagating until an error handler.
func IgnoreValue[T any](f *Future[T]) *Future[struct{}] {
	return transform(f, "IgnoreValue", func(_ T, err error) (struct{}, error) {
		return struct{}{}, err
	})
}
