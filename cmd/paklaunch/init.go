package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/paklaunch/paklaunch/internal/config"
)

func newInitCmd(a *app) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default launcher profile and deploy the game archive",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := config.LoadPaths()
			if err != nil {
				return err
			}
			if err := paths.EnsureDirs(); err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			written, err := writeDefaultProfile(paths.ProfileFile, force)
			if err != nil {
				return err
			}
			if written {
				fmt.Fprintln(out, formatSuccess("Wrote "+paths.ProfileFile))
			} else {
				fmt.Fprintln(out, formatMuted(paths.ProfileFile+" already exists (use --force to replace it)"))
			}

			if err := a.load(cmd.Context()); err != nil {
				return err
			}
			dep, err := a.deployer()
			if err != nil {
				return err
			}
			dep.Deploy(a.profile.Game.Archive, false)
			fmt.Fprintln(out, formatMuted("Archive: "+dep.Path(a.profile.Game.Archive)))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Replace an existing profile")
	return cmd
}

// writeDefaultProfile writes the default profile to path unless a file is
// already there and force is false. It reports whether it wrote.
func writeDefaultProfile(path string, force bool) (bool, error) {
	if _, err := os.Stat(path); err == nil && !force {
		return false, nil
	} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("stat profile: %w", err)
	}

	content, err := config.NewGenerator().Generate(config.Default())
	if err != nil {
		return false, fmt.Errorf("generate profile: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("create profile directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return false, fmt.Errorf("write profile: %w", err)
	}
	return true, nil
}
