package main

import (
	"github.com/spf13/cobra"
)

// globalOptions holds the persistent flags.
type globalOptions struct {
	verbose bool
	yes     bool
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}
	a := &app{opts: opts}

	root := &cobra.Command{
		Use:   "paklaunch",
		Short: "Launcher shim for a companion game engine",
		Long: styleTitle.Render("paklaunch") + " - launcher shim for a companion game engine\n\n" +
			"Deploys the bundled game archive, checks that the companion engine is\n" +
			"installed and recent enough, and starts it with the game's parameters.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.initLogger()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLaunch(cmd, a, false)
		},
	}

	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging and full error details")
	root.PersistentFlags().BoolVarP(&opts.yes, "yes", "y", false, "Answer prompts with the first option")

	root.AddCommand(
		newRunCmd(a),
		newDeployCmd(a),
		newCheckCmd(a),
		newWatchCmd(a),
		newInitCmd(a),
		newVersionCmd(),
	)
	return root
}
