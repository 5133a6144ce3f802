// Package testrunner implements the embedded-directive test format
// spec.md §6 specifies as an "external collaborator": a JAPL source
// file that carries its own expected output as trailing-comment
// directives, plus the standard input it should be fed. The VM itself
// has no knowledge of this format; this package only drives it
// end-to-end the way a CI harness would.
package testrunner

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/nocturn9x/japl/compiler"
	"github.com/nocturn9x/japl/lexer"
	"github.com/nocturn9x/japl/vm"
)

// EOT is the ASCII End-of-Transmission byte separating a test file's
// source payload from its stdin payload on the runner's combined
// input stream (spec.md §6).
const EOT = 0x04

// Expectation is one parsed `//stdout:`/`//stderr:`/`//stdoutre:`/
// `//stderrre:` directive.
type Expectation struct {
	Stream string // "stdout" or "stderr"
	Regex  bool
	Value  string
	Source *regexp.Regexp // set when Regex is true
}

// Case is a fully parsed test file: its JAPL source, the stdin it
// should be run with, and the output it's expected to produce.
type Case struct {
	Source       string
	Stdin        string
	Expectations []Expectation
}

// Parse splits combined on the first EOT byte into source and stdin
// payloads, then scans the source's line comments for directives.
//
// spec.md §6 lists `//stdin: LINE` alongside `//stdout:`/`//stderr:`
// as a trailing-comment directive in its own right, distinct from the
// post-EOT stdin payload: it lets a test file supply its input inline
// next to the statements that consume it, rather than as a second
// blob tacked onto the combined stream. When a test file carries any
// `//stdin:` directives, their lines (joined with "\n") become the
// Case's Stdin, taking precedence over a post-EOT payload; a file
// with no `//stdin:` directives falls back to whatever followed EOT,
// preserving the combined-stream format for files that don't need
// per-line inline input.
func Parse(combined []byte) (*Case, error) {
	idx := bytes.IndexByte(combined, EOT)
	var source, stdin []byte
	if idx >= 0 {
		source = combined[:idx]
		stdin = combined[idx+1:]
	} else {
		source = combined
	}

	c := &Case{Source: string(source), Stdin: string(stdin)}
	var stdinLines []string
	for _, line := range strings.Split(string(source), "\n") {
		if value, ok := parseStdinDirective(line); ok {
			stdinLines = append(stdinLines, value)
			continue
		}
		exp, ok, err := parseDirective(line)
		if err != nil {
			return nil, err
		}
		if ok {
			c.Expectations = append(c.Expectations, exp)
		}
	}
	if len(stdinLines) > 0 {
		c.Stdin = strings.Join(stdinLines, "\n")
	}
	return c, nil
}

func parseStdinDirective(line string) (string, bool) {
	idx := strings.Index(line, "//")
	if idx < 0 {
		return "", false
	}
	comment := strings.TrimSpace(line[idx+2:])
	if !strings.HasPrefix(comment, "stdin:") {
		return "", false
	}
	return strings.TrimSpace(strings.TrimPrefix(comment, "stdin:")), true
}

func parseDirective(line string) (Expectation, bool, error) {
	idx := strings.Index(line, "//")
	if idx < 0 {
		return Expectation{}, false, nil
	}
	comment := strings.TrimSpace(line[idx+2:])

	for _, d := range []struct {
		prefix string
		stream string
		regex  bool
	}{
		{"stdout:", "stdout", false},
		{"stderr:", "stderr", false},
		{"stdoutre:", "stdout", true},
		{"stderrre:", "stderr", true},
	} {
		if !strings.HasPrefix(comment, d.prefix) {
			continue
		}
		value := strings.TrimSpace(strings.TrimPrefix(comment, d.prefix))
		exp := Expectation{Stream: d.stream, Regex: d.regex, Value: value}
		if d.regex {
			re, err := regexp.Compile(value)
			if err != nil {
				return Expectation{}, false, fmt.Errorf("bad regex directive %q: %w", value, err)
			}
			exp.Source = re
		}
		return exp, true, nil
	}
	return Expectation{}, false, nil
}

// Result is the outcome of running a Case.
type Result struct {
	Stdout, Stderr string
	Failures       []string
}

// Run lexes, compiles and executes c.Source, then diffs observed
// stdout/stderr against c's expectations line by line, tolerating one
// trailing empty line per stream as spec.md §6 specifies. c.Stdin is
// not passed to the program: the VM never reads stdin (JAPL has no
// read builtin).
func Run(c *Case) *Result {
	var stdout, stderr bytes.Buffer

	lex := lexer.New(c.Source, "<test>")
	tokens, errs := lex.Scan()
	if len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintln(&stderr, e.Error())
		}
	} else {
		script, compileErrs := compiler.Compile(tokens, "<test>")
		if len(compileErrs) > 0 {
			for _, e := range compileErrs {
				fmt.Fprintln(&stderr, e.Error())
			}
		} else {
			machine := vm.New("<test>")
			machine.Stdout = &stdout
			if err := machine.Run(script); err != nil {
				fmt.Fprintln(&stderr, err.Error())
			}
		}
	}

	res := &Result{Stdout: stdout.String(), Stderr: stderr.String()}
	res.Failures = diff(c.Expectations, res.Stdout, res.Stderr)
	return res
}

func diff(expectations []Expectation, stdout, stderr string) []string {
	var stdoutExp, stderrExp []Expectation
	for _, e := range expectations {
		if e.Stream == "stdout" {
			stdoutExp = append(stdoutExp, e)
		} else {
			stderrExp = append(stderrExp, e)
		}
	}

	var failures []string
	failures = append(failures, matchLines("stdout", stdoutExp, stdout)...)
	failures = append(failures, matchLines("stderr", stderrExp, stderr)...)
	return failures
}

func matchLines(stream string, expectations []Expectation, output string) []string {
	lines := strings.Split(output, "\n")
	// tolerate one trailing empty line, per spec.md §6
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	var failures []string
	if len(lines) != len(expectations) {
		failures = append(failures, fmt.Sprintf("%s: expected %d line(s), got %d", stream, len(expectations), len(lines)))
		return failures
	}
	for i, exp := range expectations {
		got := lines[i]
		if exp.Regex {
			if !exp.Source.MatchString(got) {
				failures = append(failures, fmt.Sprintf("%s line %d: %q does not match /%s/", stream, i+1, got, exp.Value))
			}
			continue
		}
		if got != exp.Value {
			failures = append(failures, fmt.Sprintf("%s line %d: got %q, want %q", stream, i+1, got, exp.Value))
		}
	}
	return failures
}
