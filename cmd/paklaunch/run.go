package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/paklaunch/paklaunch/internal/engine"
	"github.com/paklaunch/paklaunch/internal/launcher"
)

func newRunCmd(a *app) *cobra.Command {
	var noWatch bool
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Deploy the game archive, check the engine and launch it",
		Long: `Runs the full startup flow:
  1. Deploy the bundled archive if it is not already present
  2. Check that the companion engine is installed and recent enough
  3. Ask what to do if it is missing or outdated
  4. Start the engine with the game's parameters

While the engine runs, paklaunch watches the package registry and refreshes
the archive when the engine is reinstalled. Use --no-watch to exit right
after launching.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLaunch(cmd, a, noWatch)
		},
	}
	cmd.Flags().BoolVar(&noWatch, "no-watch", false, "Exit after launching instead of watching for engine updates")
	return cmd
}

func runLaunch(cmd *cobra.Command, a *app, noWatch bool) error {
	ctx := cmd.Context()
	if err := a.load(ctx); err != nil {
		return err
	}

	l, err := a.launcher()
	if err != nil {
		return err
	}

	res, err := l.Run(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch res.Outcome {
	case launcher.Downloaded:
		fmt.Fprintln(out, formatSuccess("Engine package downloaded to "+res.DownloadPath))
		fmt.Fprintln(out, formatMuted("Install it, then run paklaunch again."))
		return nil
	case launcher.Exited:
		fmt.Fprintln(out, formatMuted("Launch cancelled."))
		return nil
	}

	fmt.Fprintln(out, formatSuccess(fmt.Sprintf("Engine started (pid %d)", res.Process.Pid())))
	if noWatch {
		return nil
	}
	return superviseEngine(ctx, a, l, res.Process)
}

// superviseEngine refreshes the archive on update signals until the engine
// exits or ctx is cancelled.
func superviseEngine(ctx context.Context, a *app, l *launcher.Launcher, proc *engine.Process) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// The engine is already running; a watch failure only loses refreshes.
	w, err := a.watcher()
	if err != nil {
		a.logger().Warn("update watch unavailable", "error", err)
		return nil
	}
	events, err := w.Start(ctx)
	if err != nil {
		a.logger().Warn("update watch unavailable", "error", err)
		return nil
	}

	go func() {
		select {
		case <-proc.Done():
			cancel()
		case <-ctx.Done():
		}
	}()

	l.HandleSignals(ctx, events)
	for range events {
	}
	return nil
}
