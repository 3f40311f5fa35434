package errors

import (
	"errors"
	"fmt"
	"runtime"
)

// stackTraceSize bounds the frames recorded by Wrap.
const stackTraceSize = 10

// StackFrame represents a single entry in a stack trace.
type StackFrame struct {
	Func string
	File string
	Line int
}

// String satisfies the fmt.Stringer interface.
func (f StackFrame) String() string {
	return fmt.Sprintf("%s:%d - %s", f.File, f.Line, f.Func)
}

// Stack returns the stack trace recorded when err, or an error it
// wraps, was first wrapped by this package. It returns nil if
// there is none.
func Stack(err error) []StackFrame {
	var werr wrapperError
	if errors.As(err, &werr) {
		return werr.stack
	}
	return nil
}

// getStack returns up to size frames of the calling goroutine's
// stack, skipping skip frames above its caller.
func getStack(skip int, size int) []StackFrame {
	pc := make([]uintptr, size)
	n := runtime.Callers(skip+1, pc)
	if n == 0 {
		return nil
	}
	var trace []StackFrame
	frames := runtime.CallersFrames(pc[:n])
	for {
		f, more := frames.Next()
		trace = append(trace, StackFrame{Func: f.Function, File: f.File, Line: f.Line})
		if !more {
			break
		}
	}
	return trace
}
