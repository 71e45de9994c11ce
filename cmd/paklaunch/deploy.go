package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newDeployCmd(a *app) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Copy the bundled game archive into the external directory",
		Long: `Copies the bundled game archive into the external directory.

An archive that is already there is left alone unless --force is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(cmd.Context()); err != nil {
				return err
			}
			dep, err := a.deployer()
			if err != nil {
				return err
			}

			archive := a.profile.Game.Archive
			dep.Deploy(archive, force)

			out := cmd.OutOrStdout()
			dest := dep.Path(archive)
			if _, err := os.Stat(dest); err != nil {
				fmt.Fprintln(out, formatWarning(fmt.Sprintf("%s is not available at %s", archive, dest)))
				return nil
			}
			fmt.Fprintln(out, formatSuccess(fmt.Sprintf("%s is at %s", archive, dest)))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing archive")
	return cmd
}
