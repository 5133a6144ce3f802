package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

// main implements `japl [file]` (spec.md §6): with no argument it
// drops into the REPL, a bare path runs that file, and --help/-h,
// --version/-v, -c EXPR behave as documented flags rather than
// subcommands. `run`/`repl`/`version` remain available as explicit
// subcommands underneath (nilan's own CLI shape, cmd_run_compiled.go/
// cmd_repl_compiled.go/subcommands.Register), for diagnostics flags
// like -disassemble that don't fit the bare invocation.
func main() {
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")
	subcommands.Register(&runCmd{}, "")
	subcommands.Register(&replCmd{}, "")
	subcommands.Register(&versionCmd{}, "")

	args := os.Args[1:]

	if status, handled := dispatchBareInvocation(args); handled {
		os.Exit(int(status))
	}

	flag.Parse()
	os.Exit(int(subcommands.Execute(context.Background())))
}

// dispatchBareInvocation handles `japl`, `japl file.jpl`, `japl -h`,
// `japl -v`, and `japl -c EXPR` directly, falling back to the
// registered subcommands for everything else (including `run`,
// `repl`, `version`, and `help`).
func dispatchBareInvocation(args []string) (subcommands.ExitStatus, bool) {
	if len(args) == 0 {
		return (&replCmd{}).Execute(context.Background(), flag.NewFlagSet("repl", flag.ContinueOnError)), true
	}

	switch args[0] {
	case "--help", "-h":
		fmt.Println("usage: japl [file] | japl -c EXPR | japl run <file> | japl repl | japl version")
		return subcommands.ExitSuccess, true
	case "--version", "-v":
		fmt.Printf("JAPL %s\n", version)
		return subcommands.ExitSuccess, true
	case "-c":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "japl: -c requires an expression")
			return subcommands.ExitUsageError, true
		}
		return runSource([]byte(args[1]), "<string>", false), true
	case "run", "repl", "version", "help", "flags", "commands":
		return 0, false
	}

	if _, err := os.Stat(args[0]); err == nil {
		data, readErr := os.ReadFile(args[0])
		if readErr != nil {
			fmt.Fprintf(os.Stderr, "japl: could not read '%s': %v\n", args[0], readErr)
			return subcommands.ExitFailure, true
		}
		return runSource(data, args[0], false), true
	}

	return 0, false
}
