package status

import (
	"runtime"

	"github.com/pkg/errors"
)

const stackDepth = 16

type stack []uintptr

// callers copied from pkg/errors, but with configurable skip and depth.
func callers(skip int, depth int) *stack {
	if skip < 0 {
		skip = 0
	}
	if depth <= 0 {
		depth = 32
	}
	pcs := make([]uintptr, depth)
	n := runtime.Callers(skip+2, pcs)
	var st stack = pcs[:n]
	return &st
}

type (
	StackTrace = errors.StackTrace
	Frame      = errors.Frame
)

// StackTrace exposes the captured frames in pkg/errors form.
func (s *stack) StackTrace() StackTrace {
	f := make([]Frame, len(*s))
	for i := 0; i < len(f); i++ {
		f[i] = Frame((*s)[i])
	}
	return f
}
