package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"
)

// version is set at build time in real release builds; JAPL has no
// release pipeline here, so it is a fixed development marker.
const version = "0.1.0-dev"

type versionCmd struct{}

func (*versionCmd) Name() string           { return "version" }
func (*versionCmd) Synopsis() string       { return "print the JAPL version" }
func (*versionCmd) Usage() string          { return "version:\n  Print the JAPL version.\n" }
func (*versionCmd) SetFlags(*flag.FlagSet) {}

func (*versionCmd) Execute(context.Context, *flag.FlagSet, ...interface{}) subcommands.ExitStatus {
	fmt.Printf("JAPL %s\n", version)
	return subcommands.ExitSuccess
}
