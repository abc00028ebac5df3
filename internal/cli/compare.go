package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCompareCmd(gf *globalFlags) *cobra.Command {
	var threshold int
	cmd := &cobra.Command{
		Use:   "compare A B",
		Short: "Compare the perceptual hashes of two images",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setup(cmd, gf, 0)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			a, err := rt.load(args[0])
			if err != nil {
				return err
			}
			b, err := rt.load(args[1])
			if err != nil {
				return err
			}
			ha, err := rt.hasher.Hash(ctx, a)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			hb, err := rt.hasher.Hash(ctx, b)
			if err != nil {
				return fmt.Errorf("%s: %w", args[1], err)
			}

			d := ha.Distance(hb)
			verdict := "different"
			if ha.Similar(hb, threshold) {
				verdict = "similar"
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%s  %s\n", ha, args[0])
			fmt.Fprintf(w, "%s  %s\n", hb, args[1])
			fmt.Fprintln(w, headingStyle.Render(fmt.Sprintf("distance %d/64, %.1f%% similar (%s)",
				d, 100*float64(64-d)/64, verdict)))
			return nil
		},
	}
	cmd.Flags().IntVar(&threshold, "threshold", 10, "maximum distance considered similar")
	return cmd
}
