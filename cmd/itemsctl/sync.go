package main

import (
	"github.com/spf13/cobra"
)

func newSyncCmd(c *cli) *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Publish unseen items to the configured publishers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			syncer, err := c.app.NewSyncer(cmd.Context())
			if err != nil {
				return err
			}
			defer syncer.Close()

			if watch {
				return syncer.Run(cmd.Context())
			}
			res, err := syncer.RunOnce(cmd.Context())
			if printErr := c.printJSON(res); printErr != nil {
				return printErr
			}
			return err
		},
	}
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Keep syncing on sync_interval until interrupted")
	return cmd
}
