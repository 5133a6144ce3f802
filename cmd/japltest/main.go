// Command japltest drives the embedded-directive test format
// (spec.md §6): it reads a single test file from standard input,
// splits it on the EOT byte into source and program-stdin payloads,
// runs the source, and reports any expectation mismatches.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/nocturn9x/japl/internal/testrunner"
)

func main() {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		fmt.Fprintf(os.Stderr, "japltest: could not read standard input: %v\n", err)
		os.Exit(1)
	}

	c, err := testrunner.Parse(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "japltest: %v\n", err)
		os.Exit(1)
	}

	result := testrunner.Run(c)
	if len(result.Failures) == 0 {
		fmt.Println("ok")
		return
	}
	for _, f := range result.Failures {
		fmt.Fprintln(os.Stderr, f)
	}
	os.Exit(1)
}
