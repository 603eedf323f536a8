// Package future provides the single-producer Promise/Future primitive
// used to report every asynchronous result in the engine, plus the
// multi-consumer SharedPromise/SharedSemiFuture broadcast variant.
//
// A producer obtains a pair with MakePromiseFuture, hands the Future to
// its caller, and completes the Promise exactly once from whatever
// goroutine finishes the work. The Future side either blocks (Get/Wait)
// or chains continuations (Then, OnError, OnCompletion, ...) that run
// inline on whichever goroutine wins the completion/attachment race.
// Continuations therefore must not block and must not take locks the
// completing goroutine may hold.
//
// A Future is a consume-once handle: each terminal or chaining call
// spends it, and reusing a spent Future panics. Results travel as the
// ordinary Go pair (value, error) with *status.Error as the coded
// error type.
package future

import (
	"context"

	"github.com/surya2611/percona-server-mongodb/routine"
	"github.com/surya2611/percona-server-mongodb/status"
)

// Future is the consumer side of an asynchronous result.
//
// It is either immediate (constructed around an already-known result,
// with no shared state allocated) or deferred (observing a Promise).
// A Future may be passed between goroutines but only one may use it at
// a time. Exactly one consuming call — Get, MustGet, GetAsync, Share or
// any chaining combinator — is allowed per Future; a second one panics.
type Future[T any] struct {
	// spent is set by the consuming call. Plain bool: a Future is a
	// single-goroutine handle, the flag only turns reuse bugs into a
	// deterministic panic.
	spent bool

	state *sharedState[T] // nil for an immediate Future

	val T
	err error
}

// MakeReadyFuture returns an immediate Future resolved to val. No shared
// state is allocated, so this is cheap enough to use even when the
// result is ready on the overwhelmingly common path.
func MakeReadyFuture[T any](val T) *Future[T] {
	return &Future[T]{val: val}
}

// MakeReadyFutureErr returns an immediate Future resolved to err, which
// must be non-nil and must not carry CodeOK.
func MakeReadyFutureErr[T any](err error) *Future[T] {
	if err == nil || status.CodeOf(err) == status.CodeOK {
		panic("future: MakeReadyFutureErr with nil or OK-coded error")
	}
	return &Future[T]{err: err}
}

// MakeReadyFutureResult returns an immediate Future resolved to the
// given (value, error) pair.
func MakeReadyFutureResult[T any](val T, err error) *Future[T] {
	return &Future[T]{val: val, err: err}
}

// MakeReadyFutureWith returns a Future resolved to the outcome of fn,
// with a panicking fn captured as the error. Same semantics as
// Promise.SetWith without allocating a Promise.
func MakeReadyFutureWith[T any](fn func() (T, error)) *Future[T] {
	return MakeReadyFutureResult(routine.CallSafe(fn))
}

// Ready reports whether Get would return without blocking at the instant
// of the call. It is a peek, not a synchronization point: callers must
// still Get (or similar) to be sequenced with the completing goroutine.
func (f *Future[T]) Ready() bool {
	return f.state == nil || f.state.finished()
}

// Wait blocks until the result is ready or ctx fires, returning nil or
// the interruption error respectively. Interruption leaves the result
// outstanding: Wait may be called again, and the Future stays unspent.
func (f *Future[T]) Wait(ctx context.Context) error {
	if f.state == nil {
		return nil
	}
	return f.state.wait(ctx)
}

// Get blocks until the result is ready and returns it, spending the
// Future. If ctx fires first, Get returns the interruption error and
// the Future stays unspent so the caller may try again; use Wait first
// if the distinction between interruption and a propagated error
// matters.
func (f *Future[T]) Get(ctx context.Context) (T, error) {
	if f.state == nil {
		f.consume("Get")
		return f.val, f.err
	}
	if err := f.state.wait(ctx); err != nil {
		var zero T
		return zero, err
	}
	f.consume("Get")
	return f.state.val, f.state.err
}

// MustGet is Get for results that must not fail: it panics on any error,
// including interruption.
func (f *Future[T]) MustGet(ctx context.Context) T {
	val, err := f.Get(ctx)
	if err != nil {
		panic(status.FromError(err))
	}
	return val
}

// GetAsync registers fn to run with the result once ready, spending the
// Future. It never blocks: fn runs inline either here (if already ready)
// or on the completing goroutine. This is the escape hatch back to
// callback style and ends the chain, so fn has no error propagation
// target and must not fail.
func (f *Future[T]) GetAsync(fn func(T, error)) {
	f.consume("GetAsync")
	f.subscribe(fn)
}

// Share converts this Future into a SharedSemiFuture that any number of
// consumers may block on, spending the Future. The conversion is one
// way.
func (f *Future[T]) Share() *SharedSemiFuture[T] {
	f.consume("Share")
	state := f.state
	if state == nil {
		state = newSharedState[T]()
		state.complete(f.val, f.err)
	}
	return &SharedSemiFuture[T]{state: state}
}

// consume spends the Future on behalf of op, panicking loudly if it was
// already spent. This is the runtime stand-in for a consume-on-use
// (move-only) handle.
func (f *Future[T]) consume(op string) {
	if f.spent {
		panic("future: " + op + " on already-consumed future")
	}
	f.spent = true
}

// subscribe runs fn with the result, inline if ready, otherwise on the
// completing goroutine. Callers must have consumed the Future first.
func (f *Future[T]) subscribe(fn func(T, error)) {
	if f.state == nil {
		fn(f.val, f.err)
		return
	}
	f.state.subscribe(fn)
}

// propagateTo forwards this Future's eventual result into dst,
// spending the Future.
func (f *Future[T]) propagateTo(dst *sharedState[T]) {
	f.consume("propagate")
	f.subscribe(func(val T, err error) {
		dst.complete(val, err)
	})
}
