package future

import "github.com/surya2611/percona-server-mongodb/future/executors"

// Executor abstracts where Async and Submit run their work. The
// primitive itself never owns a thread pool: it only defines the
// handshake, and an Executor decides which goroutine performs it.
//
// The default runs each task on a fresh goroutine
// (executors.GoExecutor{}). Override it with SetExecutor to bound
// concurrency or reuse workers, e.g. with executors.NewPoolExecutor.
// Pooled executors can queue blocking tasks behind each other, so only
// override for workloads you have measured.
type Executor interface {
	Submit(func())
}

// ExecutorFunc adapts a plain function to the Executor interface.
type ExecutorFunc func(func())

func (e ExecutorFunc) Submit(f func()) {
	e(f)
}

var executor Executor = executors.GoExecutor{}

// SetExecutor replaces the package executor used by Async and CtxAsync.
// Passing nil panics.
func SetExecutor(e Executor) {
	if e == nil {
		panic("executor is nil")
	}
	executor = e
}
