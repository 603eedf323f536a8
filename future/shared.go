package future

import (
	"context"
	"runtime"

	"github.com/surya2611/percona-server-mongodb/routine"
	"github.com/surya2611/percona-server-mongodb/status"
)

// SharedPromise is the producer of SharedSemiFutures.
//
// Completion is single-shot exactly like Promise, but any number of
// futures may be extracted — before or after completion, from any
// goroutine, concurrently with completion — and all of them observe the
// one terminal result. Like Promise, an abandoned SharedPromise breaks
// itself with BrokenPromise.
//
// Use NewSharedPromise; the zero value is null and panics on use.
type SharedPromise[T any] struct {
	state *sharedState[T]
}

func NewSharedPromise[T any]() *SharedPromise[T] {
	p := &SharedPromise[T]{state: newSharedState[T]()}
	runtime.SetFinalizer(p, (*SharedPromise[T]).Break)
	return p
}

// GetFuture returns a future observing this promise. Extracting after
// completion returns an already-ready future.
func (p *SharedPromise[T]) GetFuture() *SharedSemiFuture[T] {
	return &SharedSemiFuture[T]{state: p.mustState()}
}

// EmplaceValue completes the promise with val.
func (p *SharedPromise[T]) EmplaceValue(val T) {
	p.completeOrPanic(val, nil)
}

// SetError completes the promise with err, which must be non-nil and
// must not carry CodeOK.
func (p *SharedPromise[T]) SetError(err error) {
	if err == nil || status.CodeOf(err) == status.CodeOK {
		panic("future: SetError with nil or OK-coded error")
	}
	var zero T
	p.completeOrPanic(zero, err)
}

// SetFromResult completes the promise with a (value, error) pair.
func (p *SharedPromise[T]) SetFromResult(val T, err error) {
	p.completeOrPanic(val, err)
}

// SetWith completes the promise with the outcome of fn, capturing a
// panicking fn as the promise's error.
func (p *SharedPromise[T]) SetWith(fn func() (T, error)) {
	val, err := routine.CallSafe(fn)
	p.completeOrPanic(val, err)
}

// SetFromFuture wires the promise to complete exactly when f completes.
// f is consumed.
func (p *SharedPromise[T]) SetFromFuture(f *Future[T]) {
	f.consume("SetFromFuture")
	state := p.mustState()
	f.subscribe(func(val T, err error) {
		if !state.complete(val, err) {
			panic("future: shared promise already satisfied")
		}
	})
}

// Break completes the promise with a BrokenPromise error if it has not
// been completed, and is a no-op otherwise. Safe on a null promise.
func (p *SharedPromise[T]) Break() {
	if p.state == nil {
		return
	}
	var zero T
	p.state.complete(zero, brokenPromise())
}

func (p *SharedPromise[T]) completeOrPanic(val T, err error) {
	if !p.mustState().complete(val, err) {
		panic("future: shared promise already satisfied")
	}
}

func (p *SharedPromise[T]) mustState() *sharedState[T] {
	if p.state == nil {
		panic("future: operation on null shared promise")
	}
	return p.state
}

// SharedSemiFuture is the consumer side of a SharedPromise, or of a
// shared plain Future.
//
// Unlike Future it is not consume-once: Get and Wait may be called any
// number of times, from any number of goroutines, and every caller
// observes the identical terminal result. It deliberately has no
// chaining combinators, so third parties cannot force the completing
// goroutine to run arbitrary continuations of their choosing; consumers
// block on their own goroutines instead.
type SharedSemiFuture[T any] struct {
	state *sharedState[T]
}

// Ready reports whether Get would return without blocking right now.
func (f *SharedSemiFuture[T]) Ready() bool {
	return f.state.finished()
}

// Wait blocks until the result is ready or ctx fires. Interruption is
// reported only to this caller; the shared result stays outstanding for
// everyone else and for later re-waits.
func (f *SharedSemiFuture[T]) Wait(ctx context.Context) error {
	return f.state.wait(ctx)
}

// Get blocks until the result is ready and returns it, or returns the
// interruption error if ctx fires first. Get never mutates, so
// concurrent and repeated calls are all safe.
func (f *SharedSemiFuture[T]) Get(ctx context.Context) (T, error) {
	return f.state.get(ctx)
}

// MustGet is Get that panics on any error, including interruption.
func (f *SharedSemiFuture[T]) MustGet(ctx context.Context) T {
	val, err := f.Get(ctx)
	if err != nil {
		panic(status.FromError(err))
	}
	return val
}
