package future

import (
	"context"
	"sync/atomic"
)

// Async runs fn on the package executor and returns the Future for its
// result. A panicking fn resolves the Future to a coded error, never a
// crash.
func Async[T any](fn func() (T, error)) *Future[T] {
	return Submit(executor, fn)
}

// CtxAsync is Async for context-aware work. The context is only passed
// through to fn; it does not interrupt fn or complete the Future.
func CtxAsync[T any](ctx context.Context, fn func(ctx context.Context) (T, error)) *Future[T] {
	return CtxSubmit(ctx, executor, fn)
}

// Submit runs fn on e and returns the Future for its result. The
// promise is completed exactly once from whichever goroutine e runs fn
// on.
func Submit[T any](e Executor, fn func() (T, error)) *Future[T] {
	p, f := MakePromiseFuture[T]()
	e.Submit(func() {
		p.SetWith(fn)
	})
	return f
}

// CtxSubmit is Submit for context-aware work.
func CtxSubmit[T any](ctx context.Context, e Executor, fn func(ctx context.Context) (T, error)) *Future[T] {
	p, f := MakePromiseFuture[T]()
	e.Submit(func() {
		p.SetWith(func() (T, error) {
			return fn(ctx)
		})
	})
	return f
}

// AllOf consumes fs and returns a Future resolving to their values in
// argument order, or to the first error observed. On error the result
// is available immediately without waiting for the stragglers.
func AllOf[T any](fs ...*Future[T]) *Future[[]T] {
	if len(fs) == 0 {
		return MakeReadyFuture[[]T](nil)
	}

	out := newSharedState[[]T]()
	results := make([]T, len(fs))
	var remaining atomic.Int32
	remaining.Store(int32(len(fs)))
	for i, f := range fs {
		i := i
		f.GetAsync(func(val T, err error) {
			if err != nil {
				// complete is a no-op after the first error wins.
				out.complete(nil, err)
				return
			}
			results[i] = val
			if remaining.Add(-1) == 0 {
				out.complete(results, nil)
			}
		})
	}
	return &Future[[]T]{state: out}
}
