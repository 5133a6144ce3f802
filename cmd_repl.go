package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/nocturn9x/japl/compiler"
	"github.com/nocturn9x/japl/lexer"
	"github.com/nocturn9x/japl/object"
	"github.com/nocturn9x/japl/token"
	"github.com/nocturn9x/japl/vm"

	"github.com/chzyer/readline"
	"github.com/google/subcommands"
)

// replCmd implements the interactive JAPL shell, generalized from
// nilan's replCompiledCmd (cmd_repl_compiled.go): same "accumulate
// lines until the input looks complete, then compile and run" loop,
// but driven by github.com/chzyer/readline for history and line
// editing instead of a raw bufio.Scanner, and keeping one VM across
// lines so its globals (earlier declarations) stay visible, while
// each line runs on fresh value and frame stacks.
type replCmd struct {
	disassemble bool
}

func (*replCmd) Name() string     { return "repl" }
func (*replCmd) Synopsis() string { return "start an interactive JAPL session" }
func (*replCmd) Usage() string    { return "repl:\n  Start an interactive JAPL session.\n" }

func (r *replCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&r.disassemble, "disassemble", false, "print compiled bytecode for each entered statement")
}

func (r *replCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	fmt.Println("JAPL " + version)

	rl, err := readline.New("=> ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "japl: could not start the line editor: %v\n", err)
		return subcommands.ExitFailure
	}
	defer rl.Close()

	machine := vm.New("<repl>")
	defer func() { machine.Close() }()
	var buffer strings.Builder

	for {
		if buffer.Len() == 0 {
			rl.SetPrompt("=> ")
		} else {
			rl.SetPrompt(".. ")
		}

		line, err := rl.Readline()
		switch {
		case err == readline.ErrInterrupt:
			buffer.Reset()
			continue
		case err == io.EOF:
			return subcommands.ExitSuccess
		case err != nil:
			fmt.Fprintf(os.Stderr, "japl: %v\n", err)
			return subcommands.ExitFailure
		}

		if strings.TrimSpace(line) == "//clear" && buffer.Len() == 0 {
			machine.Close()
			machine = vm.New("<repl>")
			continue
		}
		if strings.TrimSpace(line) == "//exit" && buffer.Len() == 0 {
			return subcommands.ExitSuccess
		}

		if buffer.Len() > 0 {
			buffer.WriteString("\n")
		}
		buffer.WriteString(line)
		source := buffer.String()

		lex := lexer.New(source, "<repl>")
		tokens, lexErrs := lex.Scan()
		if len(lexErrs) > 0 {
			if allErrorsAtEnd(lexErrs, countLines(source)) {
				continue
			}
			for _, e := range lexErrs {
				fmt.Fprintln(os.Stderr, e.Error())
			}
			buffer.Reset()
			continue
		}
		if !balanced(tokens) {
			continue
		}

		script, compileErrs := compiler.Compile(tokens, "<repl>")
		if len(compileErrs) > 0 {
			for _, e := range compileErrs {
				fmt.Fprintln(os.Stderr, e.Error())
			}
			buffer.Reset()
			continue
		}

		if r.disassemble {
			fmt.Print(compiler.Disassemble(script.Chunk, "<repl>"))
		}

		if err := machine.Run(script); err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			buffer.Reset()
			continue
		}
		if v := machine.LastPopped(); v != nil {
			if _, isNil := v.(object.NilType); !isNil {
				fmt.Println(v.Stringify())
			}
		}
		buffer.Reset()
	}
}

// balanced reports whether every brace in tokens is closed, so the
// REPL knows to keep reading lines for an open `{` block instead of
// compiling (and erroring on) a half-finished statement.
func balanced(tokens []token.Token) bool {
	depth := 0
	for _, t := range tokens {
		switch t.Kind {
		case token.LBRACE:
			depth++
		case token.RBRACE:
			depth--
		}
	}
	return depth <= 0
}

func countLines(s string) int { return strings.Count(s, "\n") + 1 }

// allErrorsAtEnd reports whether every lexical error landed on the
// input's last line, which usually means the user simply hasn't
// finished typing (an unterminated string spanning into the next
// line they're about to enter) rather than made a real mistake.
func allErrorsAtEnd(errs []error, lastLine int) bool {
	for _, e := range errs {
		se, ok := e.(lexer.SourceError)
		if !ok || se.Line != lastLine {
			return false
		}
	}
	return len(errs) > 0
}
