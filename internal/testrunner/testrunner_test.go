package testrunner

import "testing"

func TestParseSplitsSourceAndStdinOnEOT(t *testing.T) {
	combined := []byte("print 1;\x04hello stdin")
	c, err := Parse(combined)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Source != "print 1;" {
		t.Errorf("Source = %q, want %q", c.Source, "print 1;")
	}
	if c.Stdin != "hello stdin" {
		t.Errorf("Stdin = %q, want %q", c.Stdin, "hello stdin")
	}
}

func TestParseWithoutEOTHasEmptyStdin(t *testing.T) {
	c, err := Parse([]byte("print 1;"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Stdin != "" {
		t.Errorf("Stdin = %q, want empty", c.Stdin)
	}
}

func TestParseCollectsDirectives(t *testing.T) {
	src := "print 1;\n//stdout: 1\nprint 2;\n//stderrre: ^Type.*\n"
	c, err := Parse([]byte(src))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(c.Expectations) != 2 {
		t.Fatalf("got %d expectations, want 2", len(c.Expectations))
	}
	if c.Expectations[0].Stream != "stdout" || c.Expectations[0].Regex || c.Expectations[0].Value != "1" {
		t.Errorf("first expectation = %+v", c.Expectations[0])
	}
	if c.Expectations[1].Stream != "stderr" || !c.Expectations[1].Regex {
		t.Errorf("second expectation = %+v", c.Expectations[1])
	}
}

func TestParseStdinDirectivesOverridePostEOTPayload(t *testing.T) {
	src := "print 1;\n//stdin: line one\nprint 2;\n//stdin: line two\n\x04ignored post-EOT payload"
	c, err := Parse([]byte(src))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Stdin != "line one\nline two" {
		t.Errorf("Stdin = %q, want %q", c.Stdin, "line one\nline two")
	}
	if len(c.Expectations) != 0 {
		t.Errorf("Expectations = %v, want none (only //stdin: directives present)", c.Expectations)
	}
}

func TestParseRejectsBadRegexDirective(t *testing.T) {
	_, err := Parse([]byte("//stdoutre: (unterminated\n"))
	if err == nil {
		t.Error("expected an error for a malformed regex directive")
	}
}

func TestRunMatchesExactStdout(t *testing.T) {
	c, err := Parse([]byte("print 1 + 1;\n//stdout: 2\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	res := Run(c)
	if len(res.Failures) != 0 {
		t.Errorf("unexpected failures: %v", res.Failures)
	}
}

func TestRunTreatsOneTrailingEmptyLineAsOk(t *testing.T) {
	c, err := Parse([]byte("print 1;\nprint 2;\n//stdout: 1\n//stdout: 2\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	res := Run(c)
	if res.Stdout != "1\n2\n" {
		t.Fatalf("Stdout = %q", res.Stdout)
	}
	if len(res.Failures) != 0 {
		t.Errorf("unexpected failures: %v", res.Failures)
	}
}

func TestRunReportsMismatchedLineCount(t *testing.T) {
	c, err := Parse([]byte("print 1;\n//stdout: 1\n//stdout: 2\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	res := Run(c)
	if len(res.Failures) == 0 {
		t.Error("expected a failure for a line-count mismatch")
	}
}

func TestRunReportsMismatchedValue(t *testing.T) {
	c, err := Parse([]byte("print 1;\n//stdout: 2\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	res := Run(c)
	if len(res.Failures) == 0 {
		t.Error("expected a failure for a value mismatch")
	}
}

func TestRunMatchesRegexDirective(t *testing.T) {
	c, err := Parse([]byte("print 42;\n//stdoutre: ^4[0-9]$\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	res := Run(c)
	if len(res.Failures) != 0 {
		t.Errorf("unexpected failures: %v", res.Failures)
	}
}

func TestRunCapturesCompileErrorsOnStderr(t *testing.T) {
	c, err := Parse([]byte("var = ;\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	res := Run(c)
	if res.Stderr == "" {
		t.Error("expected compile errors to surface on stderr")
	}
}
