// Package executors provides Executor implementations for the future
// package.
package executors

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// GoExecutor runs every task on its own goroutine.
type GoExecutor struct{}

func (GoExecutor) Submit(f func()) {
	go f()
}

// PoolExecutor admits at most maxWorkers tasks at a time; Submit blocks
// until a slot frees up.
type PoolExecutor struct {
	sem *semaphore.Weighted
}

func NewPoolExecutor(maxWorkers int64) *PoolExecutor {
	return &PoolExecutor{
		sem: semaphore.NewWeighted(maxWorkers),
	}
}

func (p *PoolExecutor) Submit(f func()) {
	// Acquire with a background context cannot fail.
	_ = p.sem.Acquire(context.Background(), 1)
	go func() {
		defer p.sem.Release(1)
		f()
	}()
}
