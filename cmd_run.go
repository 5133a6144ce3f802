package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/nocturn9x/japl/compiler"
	"github.com/nocturn9x/japl/lexer"
	"github.com/nocturn9x/japl/vm"

	"github.com/google/subcommands"
	"github.com/pkg/errors"
)

// runCmd implements `japl run <file>`, compiling and executing a
// JAPL source file, mirroring nilan's runCompiledCmd (cmd_run_compiled.go)
// generalized from nilan's tree-walking path to JAPL's lex -> compile
// -> VM pipeline.
type runCmd struct {
	eval        string
	disassemble bool
}

func (*runCmd) Name() string     { return "run" }
func (*runCmd) Synopsis() string { return "compile and execute a JAPL source file" }
func (*runCmd) Usage() string {
	return `run <file>:
  Execute JAPL code from a source file.
`
}

func (r *runCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&r.eval, "c", "", "evaluate the given expression/statement(s) instead of reading a file")
	f.BoolVar(&r.disassemble, "disassemble", false, "print the compiled bytecode before executing it")
}

func (r *runCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var source []byte
	var file string

	if r.eval != "" {
		source = []byte(r.eval)
		file = "<string>"
	} else {
		args := f.Args()
		if len(args) < 1 {
			fmt.Fprintf(os.Stderr, "japl: no input file\n")
			return subcommands.ExitUsageError
		}
		file = args[0]
		data, err := os.ReadFile(file)
		if err != nil {
			wrapped := errors.Wrapf(err, "could not read '%s'", file)
			fmt.Fprintf(os.Stderr, "japl: %v\n", wrapped)
			return subcommands.ExitFailure
		}
		source = data
	}

	return runSource(source, file, r.disassemble)
}

// runSource lexes, compiles, optionally disassembles, and executes
// source, writing diagnostics to stderr and program output to stdout.
func runSource(source []byte, file string, disassemble bool) subcommands.ExitStatus {
	lex := lexer.New(string(source), file)
	tokens, errs := lex.Scan()
	if len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintln(os.Stderr, e.Error())
		}
		return subcommands.ExitFailure
	}

	script, compileErrs := compiler.Compile(tokens, file)
	if len(compileErrs) > 0 {
		for _, e := range compileErrs {
			fmt.Fprintln(os.Stderr, e.Error())
		}
		return subcommands.ExitFailure
	}

	if disassemble {
		fmt.Fprint(os.Stdout, compiler.Disassemble(script.Chunk, "<module>"))
	}

	machine := vm.New(file)
	defer machine.Close()
	if err := machine.Run(script); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
