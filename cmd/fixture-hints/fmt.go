package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"fixture-factory/internal/sidecar"
)

func newFmtCmd(logger func() *zap.Logger) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "fmt FILE",
		Short: "Rewrite a hint file in canonical form",
		Long: `Parses the hint file and writes it back with sorted members and
normalised parameter lists. The file is rewritten in place unless -o is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger()
			defer func() { _ = log.Sync() }()

			f, err := sidecar.LoadFile(args[0])
			if err != nil {
				return err
			}

			dst := args[0]
			if out != "" {
				dst = out
			}

			if err := sidecar.WriteFile(f, dst); err != nil {
				return err
			}

			log.Info("hint file written", zap.String("path", dst))

			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "output", "o", "", "write to this file instead")

	return cmd
}
