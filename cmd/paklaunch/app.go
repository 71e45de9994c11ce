package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/paklaunch/paklaunch/internal/assets"
	"github.com/paklaunch/paklaunch/internal/config"
	"github.com/paklaunch/paklaunch/internal/download"
	"github.com/paklaunch/paklaunch/internal/engine"
	"github.com/paklaunch/paklaunch/internal/gatekeeper"
	"github.com/paklaunch/paklaunch/internal/launcher"
	"github.com/paklaunch/paklaunch/internal/logging"
	"github.com/paklaunch/paklaunch/internal/platform"
	"github.com/paklaunch/paklaunch/internal/prompt"
	"github.com/paklaunch/paklaunch/internal/registry"
	"github.com/paklaunch/paklaunch/internal/watch"
)

// app holds what the subcommands share once the environment is loaded.
type app struct {
	opts *globalOptions
	log  logging.Logger
	zap  *logging.ZapLogger

	paths    *config.Paths
	platform *platform.Info
	profile  *config.Profile
}

func (a *app) initLogger() error {
	z, err := logging.NewZap(a.opts.verbose)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.zap = z
	a.log = z
	return nil
}

func (a *app) close() {
	if a.zap != nil {
		_ = a.zap.Sync()
	}
}

func (a *app) logger() logging.Logger {
	return logging.OrNop(a.log)
}

// load reads paths, detects the platform and parses the launcher profile.
func (a *app) load(ctx context.Context) error {
	if a.profile != nil {
		return nil
	}

	paths, err := config.LoadPaths()
	if err != nil {
		return err
	}
	if err := paths.EnsureDirs(); err != nil {
		return err
	}

	detector := platform.NewDetector(paths.ABIs)
	info, err := detector.Detect(ctx)
	if err != nil {
		return fmt.Errorf("detect platform: %w", err)
	}

	profile, err := config.NewParser(platform.Static{Info: info}).
		WithLogger(a.logger()).
		LoadFile(ctx, paths.ProfileFile)
	if err != nil {
		return errors.New(config.FormatError(err, a.opts.verbose))
	}

	a.paths = paths
	a.platform = info
	a.profile = profile
	a.logger().Debug("environment loaded",
		"profile", paths.ProfileFile,
		"abi", info.PrimaryABI(),
		"registry", paths.RegistryDir)
	return nil
}

func (a *app) deployer() (*assets.Deployer, error) {
	return assets.NewDeployer(assets.Config{
		DestDir: a.paths.ExternalDir,
		Logger:  a.logger(),
	})
}

func (a *app) registry() (*registry.Registry, error) {
	opts := []registry.Option{registry.WithLogger(a.logger())}
	if a.paths.Keyring != "" {
		v, err := registry.LoadVerifier(a.paths.Keyring)
		if err != nil {
			return nil, err
		}
		opts = append(opts, registry.WithVerifier(v))
	}
	return registry.New(a.paths.RegistryDir, opts...), nil
}

func (a *app) gatekeeper(reg registry.Lookup) *gatekeeper.Gatekeeper {
	return gatekeeper.New(reg, a.platform, a.profile.Companion.Download, a.logger())
}

func (a *app) presenter() prompt.Presenter {
	if a.opts.yes {
		return prompt.Fixed{}
	}
	return prompt.NewTerminal()
}

func (a *app) watcher() (*watch.Watcher, error) {
	return watch.New(a.paths.RegistryDir, a.profile.Companion.Package,
		watch.WithDebounce(a.profile.Signals.Debounce()),
		watch.WithLogger(a.logger()))
}

func (a *app) launcher() (*launcher.Launcher, error) {
	dep, err := a.deployer()
	if err != nil {
		return nil, err
	}
	reg, err := a.registry()
	if err != nil {
		return nil, err
	}

	cfg := launcher.Config{
		Profile:      a.profile,
		Deployer:     dep,
		Registry:     reg,
		Presenter:    a.presenter(),
		Fetcher:      download.New(download.WithLogger(a.logger())),
		Starter:      engine.NewExec(a.logger()),
		DownloadDir:  a.paths.DownloadDir,
		NativeLibDir: a.paths.NativeLibDir,
		Logger:       a.logger(),
	}
	if gatekeeper.Enabled {
		cfg.Checker = a.gatekeeper(reg)
	}
	return launcher.New(cfg)
}
