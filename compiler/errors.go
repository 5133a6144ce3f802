package compiler

import "fmt"

// SyntaxError is raised during parsing when a token sequence doesn't
// match the grammar (spec.md §7, "Parse errors"). It carries the file
// and the line of the offending token along with the message.
type SyntaxError struct {
	File    string
	Line    int
	Message string
}

func (e SyntaxError) Error() string {
	return fmt.Sprintf("Traceback, file \"%s\":\n  [line %d]\nSyntaxError: %s", e.File, e.Line, e.Message)
}

// SemanticError is the error type for compile-time name resolution
// failures. The compiler does not construct it: redeclaring a local
// in the same scope is reported as a SyntaxError, and assigning to a
// global that was never declared surfaces at run time as a
// ReferenceError.
type SemanticError struct {
	File    string
	Line    int
	Message string
}

func (e SemanticError) Error() string {
	return fmt.Sprintf("Traceback, file \"%s\":\n  [line %d]\nSemanticError: %s", e.File, e.Line, e.Message)
}

// DeveloperError signals a compiler-internal invariant violation (a
// malformed MakeInstruction call, for instance) rather than anything
// the source program did wrong. It should never surface to a user of
// a correctly implemented compiler.
type DeveloperError struct {
	Message string
}

func (e DeveloperError) Error() string { return "internal compiler error: " + e.Message }
