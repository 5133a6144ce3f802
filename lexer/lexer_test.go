package lexer

import (
	"testing"

	"github.com/nocturn9x/japl/token"
)

func kinds(tokens []token.Token) []token.Kind {
	out := make([]token.Kind, len(tokens))
	for i, tok := range tokens {
		out[i] = tok.Kind
	}
	return out
}

func kindsEqual(got, want []token.Kind) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func TestScanOperators(t *testing.T) {
	l := New("== / = * + > - < != <= >= ! ** << >> % ^", "<test>")
	tokens, errs := l.Scan()
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	want := []token.Kind{
		token.EQUAL_EQUAL, token.SLASH, token.ASSIGN, token.STAR, token.PLUS,
		token.GREATER, token.MINUS, token.LESS, token.BANG_EQUAL, token.LESS_EQUAL,
		token.GREATER_EQUAL, token.BANG, token.STARSTAR, token.SHL, token.SHR,
		token.PERCENT, token.CARET, token.EOF,
	}
	if got := kinds(tokens); !kindsEqual(got, want) {
		t.Errorf("Scan() kinds = %v, want %v", got, want)
	}
}

func TestScanPunctuation(t *testing.T) {
	l := New("(){}[].,;:", "<test>")
	tokens, errs := l.Scan()
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	want := []token.Kind{
		token.LPAREN, token.RPAREN, token.LBRACE, token.RBRACE,
		token.LBRACKET, token.RBRACKET, token.DOT, token.COMMA,
		token.SEMICOLON, token.COLON, token.EOF,
	}
	if got := kinds(tokens); !kindsEqual(got, want) {
		t.Errorf("Scan() kinds = %v, want %v", got, want)
	}
}

func TestScanStringLiteral(t *testing.T) {
	l := New(`"hello, world"`, "<test>")
	tokens, errs := l.Scan()
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(tokens) != 2 || tokens[0].Kind != token.STRING {
		t.Fatalf("Scan() = %v, want a single STRING token", tokens)
	}
	if tokens[0].Literal != "hello, world" {
		t.Errorf("literal = %q, want %q", tokens[0].Literal, "hello, world")
	}
}

func TestUnterminatedStringReportsError(t *testing.T) {
	l := New(`"never closes`, "<test>")
	_, errs := l.Scan()
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %d: %v", len(errs), errs)
	}
	se := errs[0].(SourceError)
	if se.Kind != "SyntaxError" {
		t.Errorf("Kind = %q, want SyntaxError", se.Kind)
	}
}

func TestScanContinuesPastErrors(t *testing.T) {
	l := New("$ + @", "<test>")
	tokens, errs := l.Scan()
	if len(errs) != 2 {
		t.Fatalf("expected 2 errors, got %d: %v", len(errs), errs)
	}
	want := []token.Kind{token.PLUS, token.EOF}
	if got := kinds(tokens); !kindsEqual(got, want) {
		t.Errorf("Scan() kinds = %v, want %v", got, want)
	}
}

func TestScanNumbers(t *testing.T) {
	tests := []struct {
		source string
		kind   token.Kind
	}{
		{"123", token.INTEGER},
		{"3.14", token.FLOAT},
	}
	for _, tt := range tests {
		l := New(tt.source, "<test>")
		tokens, errs := l.Scan()
		if len(errs) != 0 {
			t.Fatalf("unexpected errors for %q: %v", tt.source, errs)
		}
		if tokens[0].Kind != tt.kind {
			t.Errorf("Scan(%q) kind = %v, want %v", tt.source, tokens[0].Kind, tt.kind)
		}
	}
}

func TestIntegerOverflowReportsError(t *testing.T) {
	l := New("99999999999999999999999999", "<test>")
	_, errs := l.Scan()
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %d", len(errs))
	}
	se := errs[0].(SourceError)
	if se.Kind != "OverflowError" {
		t.Errorf("Kind = %q, want OverflowError", se.Kind)
	}
}

func TestInfAndNanLexAsFloat(t *testing.T) {
	l := New("inf nan", "<test>")
	tokens, errs := l.Scan()
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if tokens[0].Kind != token.FLOAT || tokens[1].Kind != token.FLOAT {
		t.Fatalf("Scan() = %v, want two FLOAT tokens", tokens)
	}
}

func TestBlockCommentNesting(t *testing.T) {
	l := New("/* outer /* inner */ still outer */ 1", "<test>")
	tokens, errs := l.Scan()
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	want := []token.Kind{token.INTEGER, token.EOF}
	if got := kinds(tokens); !kindsEqual(got, want) {
		t.Errorf("Scan() kinds = %v, want %v", got, want)
	}
}

func TestLineCountingAcrossNewlines(t *testing.T) {
	l := New("var x\n= 1;\n", "<test>")
	tokens, _ := l.Scan()
	if tokens[len(tokens)-1].Line != 3 {
		t.Errorf("EOF line = %d, want 3", tokens[len(tokens)-1].Line)
	}
}
