package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	phash "github.com/vmchale/phash-fut"
)

func newHashCmd(gf *globalFlags) *cobra.Command {
	var extSize int
	cmd := &cobra.Command{
		Use:   "hash IMAGE...",
		Short: "Print the perceptual hash of each image",
		Long: `Print the perceptual hash of each image as "<hex>  <path>".

With --ext-size N the hash has N*N bits instead of 64.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setup(cmd, gf, extSize)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			w := cmd.OutOrStdout()
			failed := false
			for _, path := range args {
				src, err := rt.load(path)
				if err != nil {
					reportFailure(cmd, path, err)
					failed = true
					continue
				}
				var hex string
				if extSize > 0 {
					var e *phash.ExtHash
					e, err = rt.hasher.ExtHash(ctx, src)
					if e != nil {
						hex = e.String()
					}
				} else {
					var h phash.Hash
					h, err = rt.hasher.Hash(ctx, src)
					hex = h.String()
				}
				if err != nil {
					reportFailure(cmd, path, err)
					failed = true
					continue
				}
				fmt.Fprintf(w, "%s  %s\n", hex, path)
			}
			if failed {
				return errFailed
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&extSize, "ext-size", 0, "side of the coefficient block for an extended hash (N*N bits)")
	return cmd
}

func reportFailure(cmd *cobra.Command, path string, err error) {
	fmt.Fprintln(cmd.ErrOrStderr(), errorStyle.Render(fmt.Sprintf("%s: error: %v", path, err)))
}
