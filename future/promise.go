package future

import (
	"runtime"

	"github.com/surya2611/percona-server-mongodb/routine"
	"github.com/surya2611/percona-server-mongodb/status"
)

func brokenPromise() *status.Error {
	return status.New(status.CodeBrokenPromise, "broken promise")
}

// Promise is the producer side of a Future.
//
// It is single-shot: exactly one of EmplaceValue, SetError,
// SetFromResult, SetWith or SetFromFuture may be called, after which the
// Promise is spent (a second completion panics). Only one goroutine may
// use a Promise at a time, though another may concurrently use the
// associated Future.
//
// A Promise abandoned before completion is broken: its Future resolves
// to a BrokenPromise error rather than hanging forever. Producers should
// `defer p.Break()` to make that deterministic; a garbage-collection
// backstop installed by NewPromise covers the rest. Either way a broken
// promise signals a producer-side bug, not a normal outcome.
//
// The zero value is a null Promise; any operation on it other than
// Break panics.
type Promise[T any] struct {
	state *sharedState[T]

	futureTaken bool
}

// NewPromise returns a Promise bound to a fresh shared state. Prefer
// MakePromiseFuture, which also hands back the consumer side and leaves
// no window to misuse GetFuture.
func NewPromise[T any]() *Promise[T] {
	p := &Promise[T]{state: newSharedState[T]()}
	runtime.SetFinalizer(p, (*Promise[T]).Break)
	return p
}

// GetFuture returns the Future observing this Promise. It may be called
// at most once, before the Promise is completed.
func (p *Promise[T]) GetFuture() *Future[T] {
	if p.state == nil {
		panic("future: GetFuture on null or spent promise")
	}
	if p.futureTaken {
		panic("future: GetFuture called twice on one promise")
	}
	p.futureTaken = true
	return &Future[T]{state: p.state}
}

// EmplaceValue completes the Promise with val.
func (p *Promise[T]) EmplaceValue(val T) {
	state := p.take()
	state.complete(val, nil)
}

// SetError completes the Promise with err, which must be non-nil and
// must not carry CodeOK: an "OK failure" would slip past every
// code-keyed error handler downstream.
func (p *Promise[T]) SetError(err error) {
	if err == nil || status.CodeOf(err) == status.CodeOK {
		panic("future: SetError with nil or OK-coded error")
	}
	state := p.take()
	var zero T
	state.complete(zero, err)
}

// SetFromResult completes the Promise with a (value, error) pair, the
// shape every callback in the chain traffics in.
func (p *Promise[T]) SetFromResult(val T, err error) {
	state := p.take()
	state.complete(val, err)
}

// SetWith completes the Promise with the outcome of fn. A panicking fn
// becomes the Promise's error rather than a crash, so prefer
//
//	p.SetWith(func() (T, error) { return makeResult() })
//
// over p.EmplaceValue(makeResult()) whenever makeResult can fail.
func (p *Promise[T]) SetWith(fn func() (T, error)) {
	state := p.take()
	state.complete(routine.CallSafe(fn))
}

// SetFromFuture wires the Promise to complete exactly when f completes,
// forwarding success or error. The Promise is spent immediately; f is
// consumed.
func (p *Promise[T]) SetFromFuture(f *Future[T]) {
	state := p.take()
	f.propagateTo(state)
}

// Break completes the Promise with a BrokenPromise error if it has not
// been completed, and is a no-op otherwise. Safe on a null or spent
// Promise, so producers can unconditionally `defer p.Break()`.
func (p *Promise[T]) Break() {
	state := p.state
	if state == nil {
		return
	}
	p.state = nil
	var zero T
	state.complete(zero, brokenPromise())
}

// take claims the single completion right, leaving the Promise spent.
func (p *Promise[T]) take() *sharedState[T] {
	if p.state == nil {
		panic("future: operation on null or spent promise")
	}
	state := p.state
	p.state = nil
	return state
}

// MakePromiseFuture returns a Promise and the Future observing it, bound
// to one fresh shared state.
func MakePromiseFuture[T any]() (*Promise[T], *Future[T]) {
	p := NewPromise[T]()
	return p, p.GetFuture()
}
