package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vmchale/phash-fut/bench"
)

func newBenchCmd(gf *globalFlags) *cobra.Command {
	var (
		iterations int
		reference  bool
		reportDir  string
	)
	cmd := &cobra.Command{
		Use:   "bench IMAGE...",
		Short: "Time the mean filter and hash, optionally against goimagehash",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setup(cmd, gf, 0)
			if err != nil {
				return err
			}
			rep, err := bench.Run(cmd.Context(), args, bench.Options{
				Iterations: iterations,
				Hasher:     rt.hasher,
				Reference:  reference,
			})
			if err != nil {
				return err
			}
			if err := rep.Write(cmd.OutOrStdout()); err != nil {
				return err
			}
			if reportDir != "" {
				name, err := rep.WriteFile(reportDir)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), mutedStyle.Render("report written to "+name))
			}
			return nil
		},
	}
	flags := cmd.Flags()
	flags.IntVarP(&iterations, "iterations", "n", 10, "runs per image and operation")
	flags.BoolVar(&reference, "reference", false, "also time goimagehash.PerceptionHash")
	flags.StringVar(&reportDir, "report-dir", "", "directory for a bench_<timestamp>.txt report")
	return cmd
}
