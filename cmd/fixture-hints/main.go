// Package main provides the CLI entrypoint for fixture-hints.
//
// fixture-hints works on the YAML hint files read by the fixture factory:
//   - check: validates a hint file against the Go packages it describes
//   - fmt: rewrites a hint file in canonical form
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:           "fixture-hints",
		Short:         "Validate and format fixture hint files",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log progress to stderr")

	logger := func() *zap.Logger {
		if !verbose {
			return zap.NewNop()
		}

		log, err := zap.NewDevelopment()
		if err != nil {
			return zap.NewNop()
		}

		return log
	}

	root.AddCommand(newCheckCmd(logger), newFmtCmd(logger))

	return root
}
