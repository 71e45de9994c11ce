package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/paklaunch/paklaunch/internal/gatekeeper"
)

func newCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Report whether the companion engine is installed and up to date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(cmd.Context()); err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if !gatekeeper.Enabled {
				fmt.Fprintln(out, formatMuted("Companion check is disabled in debug builds."))
				return nil
			}

			reg, err := a.registry()
			if err != nil {
				return err
			}
			c := a.profile.Companion
			d := a.gatekeeper(reg).CheckCompanion(c.Package, c.MinVersion)

			switch d.Kind {
			case gatekeeper.OK:
				fmt.Fprintln(out, formatSuccess(fmt.Sprintf("%s %d is installed (minimum %d)",
					c.Package, d.Installed.VersionCode, c.MinVersion)))
			case gatekeeper.PromptUpdate:
				fmt.Fprintln(out, formatWarning(fmt.Sprintf("%s %d is older than the required %d",
					c.Package, d.Installed.VersionCode, c.MinVersion)))
				fmt.Fprintln(out, formatMuted("Update: "+d.DownloadURL))
			case gatekeeper.PromptInstall:
				fmt.Fprintln(out, formatError(fmt.Sprintf("%s is not installed", c.Package)))
				fmt.Fprintln(out, formatMuted("Download: "+d.DownloadURL))
			}
			return nil
		},
	}
}
