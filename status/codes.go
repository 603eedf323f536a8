package status

// Code identifies the kind of failure carried by an Error. The numeric
// values are stable and shared across every subsystem that completes or
// consumes a promise, so they must never be reused or renumbered.
type Code int32

const (
	CodeOK            Code = 0
	CodeInternalError Code = 1
	CodeBadValue      Code = 2
	CodeUnknownError  Code = 8

	// CodeExceededTimeLimit is installed when a blocking wait runs out of
	// deadline. The awaited state itself stays pending.
	CodeExceededTimeLimit Code = 50

	CodeShutdownInProgress Code = 91

	// CodeBrokenPromise is installed by a Promise that is destroyed or
	// broken before being completed. Receiving it means a producer-side
	// logic bug, not a normal failure.
	CodeBrokenPromise Code = 4892

	CodeInterruptedAtShutdown           Code = 11600
	CodeInterrupted                     Code = 11601
	CodeInterruptedDueToReplStateChange Code = 11602
)

var codeNames = map[Code]string{
	CodeOK:                              "OK",
	CodeInternalError:                   "InternalError",
	CodeBadValue:                        "BadValue",
	CodeUnknownError:                    "UnknownError",
	CodeExceededTimeLimit:               "ExceededTimeLimit",
	CodeShutdownInProgress:              "ShutdownInProgress",
	CodeBrokenPromise:                   "BrokenPromise",
	CodeInterruptedAtShutdown:           "InterruptedAtShutdown",
	CodeInterrupted:                     "Interrupted",
	CodeInterruptedDueToReplStateChange: "InterruptedDueToReplStateChange",
}

func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return "UnknownCode"
}

// Category groups codes that are handled alike, so error recovery can
// match a class of failures instead of enumerating codes.
type Category int32

const (
	// CategoryInterruption covers failures injected into a waiter, not
	// produced by the awaited operation itself.
	CategoryInterruption Category = iota + 1
	// CategoryShutdown covers failures caused by process teardown.
	CategoryShutdown
)

// InCategory reports whether err carries a code belonging to cat.
// A nil err is never in any category.
func InCategory(err error, cat Category) bool {
	code := CodeOf(err)
	switch cat {
	case CategoryInterruption:
		switch code {
		case CodeInterrupted,
			CodeInterruptedAtShutdown,
			CodeInterruptedDueToReplStateChange,
			CodeExceededTimeLimit:
			return true
		}
	case CategoryShutdown:
		switch code {
		case CodeShutdownInProgress,
			CodeInterruptedAtShutdown:
			return true
		}
	}
	return false
}
