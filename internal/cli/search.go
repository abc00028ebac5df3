package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSearchCmd(gf *globalFlags) *cobra.Command {
	var maxDistance, limit int
	cmd := &cobra.Command{
		Use:   "search IMAGE",
		Short: "Find indexed images similar to IMAGE",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setup(cmd, gf, 0)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			src, err := rt.load(args[0])
			if err != nil {
				return err
			}
			h, err := rt.hasher.Hash(ctx, src)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}

			db, err := rt.openStore()
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			matches, err := db.Nearest(ctx, h, rt.hasher.Fingerprint(), maxDistance, limit)
			if err != nil {
				return fmt.Errorf("search index: %w", err)
			}

			w := cmd.OutOrStdout()
			if len(matches) == 0 {
				fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("no images within distance %d of %s", maxDistance, h)))
				return nil
			}
			fmt.Fprintln(w, headingStyle.Render(fmt.Sprintf("MATCHES (%d)", len(matches))))
			for _, m := range matches {
				fmt.Fprintf(w, "%2d  %s  %s\n", m.Distance, m.Record.PHash(), m.Record.Path)
			}
			return nil
		},
	}
	flags := cmd.Flags()
	flags.IntVar(&maxDistance, "max-distance", 10, "maximum Hamming distance")
	flags.IntVar(&limit, "limit", 20, "maximum number of results (0 for all)")
	return cmd
}
