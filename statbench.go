// Package statbench is the entry point of benchmark binaries.
//
// A benchmark binary registers its cases into a registry and hands it to Main:
//
//	func main() {
//		reg := bench.NewRegistry()
//		reg.MustRegister(bench.Case{Group: "Strings", Name: "Builder", Op: builderOp})
//		statbench.Main(reg)
//	}
//
// Main parses the command line, runs the selected cases and exits with a status that
// reflects the outcome of the run.
package statbench

import (
	"os"

	"github.com/shivanshkc/statbench/internal/cli"
	"github.com/shivanshkc/statbench/pkg/bench"
)

// Exit codes returned by Execute.
const (
	ExitOK          = cli.ExitOK
	ExitFailure     = cli.ExitFailure
	ExitUsage       = cli.ExitUsage
	ExitReportError = cli.ExitReportError
)

// Main runs the command line of the process against reg and exits.
func Main(reg *bench.Registry) {
	os.Exit(Execute(reg, os.Args[1:]))
}

// Execute runs the given command-line arguments against reg and returns the exit code.
func Execute(reg *bench.Registry, args []string) int {
	return cli.Execute(reg, args)
}
