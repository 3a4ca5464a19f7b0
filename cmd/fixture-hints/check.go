package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"fixture-factory/internal/analyze"
	"fixture-factory/internal/diagnostic"
	"fixture-factory/internal/sidecar"
)

var errInvalidHints = errors.New("hint file has errors")

func newCheckCmd(logger func() *zap.Logger) *cobra.Command {
	var (
		patterns []string
		dir      string
		strict   bool
	)

	cmd := &cobra.Command{
		Use:   "check FILE",
		Short: "Check a hint file against Go packages",
		Long: `Loads the given packages and reports hint file entries naming types,
members or substitutes that do not exist, with suggestions for close matches.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger()
			defer func() { _ = log.Sync() }()

			f, err := sidecar.LoadFile(args[0])
			if err != nil {
				return err
			}
			log.Debug("hint file loaded", zap.String("path", args[0]), zap.Int("shapes", len(f.Shapes)))

			a := analyze.NewAnalyzer()
			a.Dir = dir

			graph, err := a.LoadPackages(patterns...)
			if err != nil {
				return err
			}
			log.Debug("packages loaded", zap.Strings("patterns", patterns), zap.Int("types", len(graph.Types)))

			res := structural(f)
			res.Merge(*analyze.Check(f, graph))

			report(cmd.OutOrStdout(), res)

			if res.HasErrors() || strict && len(res.Warnings) > 0 {
				return errInvalidHints
			}

			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&patterns, "pkg", "p", []string{"./..."}, "package patterns to load")
	cmd.Flags().StringVarP(&dir, "dir", "C", "", "directory to resolve package patterns in")
	cmd.Flags().BoolVar(&strict, "strict", false, "treat warnings as errors")

	return cmd
}

// structural runs the checks that need no type information.
func structural(f *sidecar.File) *diagnostic.Diagnostics {
	res := &diagnostic.Diagnostics{}

	if f.Version != sidecar.CurrentVersion {
		res.AddError(diagnostic.CodeInvalidHint,
			fmt.Sprintf("unsupported version %q, expected %q", f.Version, sidecar.CurrentVersion), "", "version")
	}

	seen := map[string]struct{}{}
	for i, s := range f.Shapes {
		switch _, dup := seen[s.Type]; {
		case s.Type == "":
			res.AddError(diagnostic.CodeInvalidHint, "shape without type", "", fmt.Sprintf("shapes[%d]", i))
		case dup:
			res.AddError(diagnostic.CodeInvalidHint, fmt.Sprintf("duplicate shape %q", s.Type), s.Type, fmt.Sprintf("shapes[%d]", i))
		}
		seen[s.Type] = struct{}{}
	}

	return res
}

func report(w io.Writer, res *diagnostic.Diagnostics) {
	for _, d := range res.All() {
		fmt.Fprintln(w, d.String())
	}

	fmt.Fprintf(w, "%d errors, %d warnings\n", len(res.Errors), len(res.Warnings))
}
