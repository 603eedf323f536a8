// Package routine provides panic-safe function execution.
//
// CallSafe is the panic boundary used by the future package: every user
// callback run inside a continuation chain goes through it, so a panic
// becomes an UnknownError carrying the panicking stack instead of
// tearing down whichever goroutine happened to complete the promise.
//
// RunSafe and GoSafe are the same boundary for fire-and-forget work,
// and Recovered/RecoveredError expose the captured panic for callers
// that want to inspect it.
package routine
