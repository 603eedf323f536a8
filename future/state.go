package future

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/surya2611/percona-server-mongodb/status"
)

// Phases of a sharedState. Forward-only: init, then completing while the
// single producer writes the result slot, then finished once the result
// is published. A registered continuation is what the init phase calls
// "waiting"; it is represented by a non-empty callback stack rather than
// a separate phase.
const (
	phaseInit uint32 = iota
	phaseCompleting
	phaseFinished
)

// sharedState is the one cell shared between a producer handle and its
// consumer handles. The result slot (val, err) is written by exactly one
// goroutine, the one that wins the init→completing swap; phaseFinished
// publishes it. Continuations registered before completion are invoked
// by the completing goroutine, a continuation registered after
// completion is invoked inline by the registering goroutine, and the
// per-callback once resolves the window where both could.
type sharedState[T any] struct {
	noCopy noCopy

	phase atomic.Uint32

	doneOnce sync.Once
	done     chan struct{}

	val T
	err error

	// LIFO stack of registered continuations.
	callbacks atomic.Pointer[callback[T]]
}

func newSharedState[T any]() *sharedState[T] {
	return &sharedState[T]{}
}

func (s *sharedState[T]) doneChan() chan struct{} {
	s.doneOnce.Do(func() {
		s.done = make(chan struct{})
	})
	return s.done
}

// complete resolves the state with (val, err). Exactly one call returns
// true; every later call is a no-op returning false. The winning call
// wakes all blocked waiters and runs every registered continuation on
// the calling goroutine.
func (s *sharedState[T]) complete(val T, err error) bool {
	if !s.phase.CompareAndSwap(phaseInit, phaseCompleting) {
		return false
	}
	s.val = val
	s.err = err
	s.phase.Store(phaseFinished)
	close(s.doneChan())

	for {
		head := s.callbacks.Load()
		if head == nil {
			return true
		}
		if s.callbacks.CompareAndSwap(head, head.next) {
			head.invoke(val, err)
		}
	}
}

// subscribe registers fn to run with the result. If the state is already
// finished, fn runs inline before subscribe returns; otherwise it runs on
// the completing goroutine. fn is invoked exactly once either way.
func (s *sharedState[T]) subscribe(fn func(T, error)) {
	cb := &callback[T]{fn: fn}
	for {
		head := s.callbacks.Load()
		if s.finished() {
			fn(s.val, s.err)
			return
		}
		cb.next = head
		if s.callbacks.CompareAndSwap(head, cb) {
			// Completion may have drained the stack between the phase
			// check and the push, leaving cb stranded. The once inside
			// invoke keeps this from double-running.
			if s.finished() {
				cb.invoke(s.val, s.err)
			}
			return
		}
	}
}

// wait blocks until the state is finished or ctx fires, whichever comes
// first. A finished state wins over an already-fired ctx. The returned
// interruption error does not alter the state; it stays pending and can
// be waited on again.
func (s *sharedState[T]) wait(ctx context.Context) error {
	if s.finished() {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return status.FromContextErr(err)
	}
	select {
	case <-s.doneChan():
		return nil
	case <-ctx.Done():
		if s.finished() {
			return nil
		}
		return status.FromContextErr(ctx.Err())
	}
}

func (s *sharedState[T]) get(ctx context.Context) (T, error) {
	if err := s.wait(ctx); err != nil {
		var zero T
		return zero, err
	}
	return s.val, s.err
}

func (s *sharedState[T]) finished() bool {
	return s.phase.Load() == phaseFinished
}

type callback[T any] struct {
	once sync.Once

	fn   func(T, error)
	next *callback[T]
}

func (cb *callback[T]) invoke(val T, err error) {
	cb.once.Do(func() {
		cb.fn(val, err)
	})
}

// noCopy may be embedded into structs which must not be copied
// after the first use.
//
// See https://golang.org/issues/8005#issuecomment-190753527
// for details.
//
// Note that it must not be embedded, due to the Lock and Unlock methods.
type noCopy struct{}

// Lock is a no-op used by copylocks checker from `go vet`.
func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}
