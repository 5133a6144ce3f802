package vm

import (
	"fmt"
	"strings"
)

// RuntimeError is any error raised while executing bytecode (spec.md
// §7's runtime error taxonomy: TypeError, ReferenceError, IndexError,
// RecursionError). It carries a traceback of call frames active at
// the point of failure, unwound outermost-first.
type RuntimeError struct {
	File      string
	Kind      string
	Message   string
	Traceback []TraceEntry
}

// TraceEntry is one "[line L in <file>]" frame in a runtime
// traceback, per spec.md §4.3's three-line error format extended with
// one entry per active call frame.
type TraceEntry struct {
	Line     int
	Function string
}

func (e *RuntimeError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Traceback, file \"%s\":\n", e.File)
	for _, t := range e.Traceback {
		fmt.Fprintf(&b, "  [line %d in %s]\n", t.Line, t.Function)
	}
	fmt.Fprintf(&b, "%s: %s", e.Kind, e.Message)
	return b.String()
}

// RecursionError is raised when the frame stack exceeds FramesMax
// (spec.md §4.6): JAPL has no tail-call optimization, so unbounded
// recursion is a hard VM limit rather than a silently growing stack.
func newRecursionError(file string, trace []TraceEntry) *RuntimeError {
	return &RuntimeError{File: file, Kind: "RecursionError", Message: "maximum recursion depth exceeded", Traceback: trace}
}

// InterruptedError is raised when the VM observes its cooperative
// interrupt flag (set through VM.Interrupt) mid-run, per spec.md §4.6.
type InterruptedError struct{}

func (InterruptedError) Error() string { return "execution interrupted" }
