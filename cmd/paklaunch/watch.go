package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newWatchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Refresh the game archive whenever the engine is reinstalled",
		Long: `Watches the package registry for the companion engine being installed
or updated and redeploys the game archive, overwriting it, each time.

Press Ctrl+C to stop.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.load(ctx); err != nil {
				return err
			}
			l, err := a.launcher()
			if err != nil {
				return err
			}
			w, err := a.watcher()
			if err != nil {
				return err
			}
			events, err := w.Start(ctx)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), formatMuted(fmt.Sprintf("Watching %s for %s (Ctrl+C to stop)",
				a.paths.RegistryDir, a.profile.Companion.Package)))
			l.HandleSignals(ctx, events)
			for range events {
			}
			return nil
		},
	}
}
