package routine

// RunSafe runs fn synchronously, recovering any panic. The panic value
// is passed to each cleanup function in order; it does not propagate.
func RunSafe(fn func(), cleanup ...func(r interface{})) {
	defer Recover(cleanup...)

	fn()
}

// GoSafe runs fn in a new goroutine, recovering any panic. A panicking
// fn cannot crash the process; the panic value is passed to cleanup.
func GoSafe(fn func(), cleanup ...func(r interface{})) {
	go RunSafe(fn, cleanup...)
}
