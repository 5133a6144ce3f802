package compiler

import (
	"testing"

	"github.com/nocturn9x/japl/lexer"
)

func compileSource(t *testing.T, source string) (*chunkResult, []error) {
	t.Helper()
	lex := lexer.New(source, "<test>")
	tokens, lexErrs := lex.Scan()
	if len(lexErrs) != 0 {
		t.Fatalf("lexer errors for %q: %v", source, lexErrs)
	}
	fn, errs := Compile(tokens, "<test>")
	return &chunkResult{opcodes: fn.Chunk.Code}, errs
}

type chunkResult struct {
	opcodes []byte
}

func (c *chunkResult) has(op Opcode) bool {
	for _, b := range c.opcodes {
		if Opcode(b) == op {
			return true
		}
	}
	return false
}

func TestCompileSimpleExpressionStatement(t *testing.T) {
	res, errs := compileSource(t, "1 + 2;")
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if !res.has(OP_ADD) || !res.has(OP_POP) {
		t.Errorf("expected OP_ADD and OP_POP in %v", res.opcodes)
	}
}

func TestCompileVarDeclarationEmitsDefineGlobal(t *testing.T) {
	res, errs := compileSource(t, "var x = 1;")
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if !res.has(OP_DEFINE_GLOBAL) {
		t.Errorf("expected OP_DEFINE_GLOBAL in %v", res.opcodes)
	}
}

func TestCompileLocalAssignmentUsesSetLocal(t *testing.T) {
	res, errs := compileSource(t, "{ var x = 1; x = 2; }")
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if !res.has(OP_SET_LOCAL) {
		t.Errorf("expected OP_SET_LOCAL in %v", res.opcodes)
	}
	if res.has(OP_DEFINE_GLOBAL) {
		t.Errorf("local declaration should not emit OP_DEFINE_GLOBAL: %v", res.opcodes)
	}
}

func TestCompileIfEmitsJumps(t *testing.T) {
	res, errs := compileSource(t, "if (true) { print 1; } else { print 2; }")
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if !res.has(OP_JUMP_IF_FALSE) || !res.has(OP_JUMP) {
		t.Errorf("expected both jump opcodes in %v", res.opcodes)
	}
}

func TestCompileWhileEmitsLoop(t *testing.T) {
	res, errs := compileSource(t, "while (true) { print 1; }")
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if !res.has(OP_LOOP) {
		t.Errorf("expected OP_LOOP in %v", res.opcodes)
	}
}

func TestCompileFunctionDeclarationEmitsConstant(t *testing.T) {
	res, errs := compileSource(t, "fun add(a, b) { return a + b; }")
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if !res.has(OP_CONSTANT) {
		t.Errorf("expected a function constant in %v", res.opcodes)
	}
}

func TestBreakOutsideLoopIsAnError(t *testing.T) {
	_, errs := compileSource(t, "break;")
	if len(errs) == 0 {
		t.Error("expected a compile error for break outside a loop")
	}
}

func TestContinueOutsideLoopIsAnError(t *testing.T) {
	_, errs := compileSource(t, "continue;")
	if len(errs) == 0 {
		t.Error("expected a compile error for continue outside a loop")
	}
}

func TestReturnOutsideFunctionIsAnError(t *testing.T) {
	_, errs := compileSource(t, "return 1;")
	if len(errs) == 0 {
		t.Error("expected a compile error for return at top level")
	}
}

func TestRedeclaredLocalInSameScopeIsAnError(t *testing.T) {
	_, errs := compileSource(t, "{ var x = 1; var x = 2; }")
	if len(errs) == 0 {
		t.Error("expected a compile error for redeclaring a local")
	}
}

func TestShadowingInNestedScopeIsAllowed(t *testing.T) {
	_, errs := compileSource(t, "{ var x = 1; { var x = 2; } }")
	if len(errs) != 0 {
		t.Errorf("shadowing in a nested scope should be allowed: %v", errs)
	}
}

func TestSyntaxErrorRecoversAndReportsOnlyOnce(t *testing.T) {
	_, errs := compileSource(t, "var = ; var y = 1;")
	if len(errs) == 0 {
		t.Fatal("expected at least one compile error")
	}
	if len(errs) != 1 {
		t.Errorf("got %d compile errors, want exactly 1: %v", len(errs), errs)
	}
}

func TestStringConstantsAreDeduplicated(t *testing.T) {
	lex := lexer.New(`"a"; "a";`, "<test>")
	tokens, _ := lex.Scan()
	fn, errs := Compile(tokens, "<test>")
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	count := 0
	for _, c := range fn.Chunk.Constants {
		if c.Stringify() == "a" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("expected the string literal \"a\" to be interned once, found %d", count)
	}
}
