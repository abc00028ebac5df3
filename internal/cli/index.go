package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vmchale/phash-fut/indexer"
)

func newIndexCmd(gf *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "index DIR",
		Short: "Hash every image below DIR into the index",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setup(cmd, gf, 0)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			db, err := rt.openStore()
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			c, release, err := rt.openCache(ctx)
			if err != nil {
				return err
			}
			defer release()

			ix := indexer.New(rt.hasher, db, indexer.Options{
				Workers: rt.cfg.Hash.Workers,
				Cache:   c,
				Logger:  rt.log,
			})
			sum, err := ix.IndexDir(ctx, args[0])
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintln(w, headingStyle.Render(fmt.Sprintf("INDEXED %s", args[0])))
			fmt.Fprintf(w, "scanned %d, hashed %d, cached %d, failed %d in %s\n",
				sum.Scanned, sum.Hashed, sum.Cached, sum.Failed, sum.Duration.Round(time.Millisecond))
			if sum.Failed > 0 {
				return errFailed
			}
			return nil
		},
	}
}
