// Package launcher ties the startup flow together: deploy the bundled
// archive, check the companion engine, ask the user when the check blocks,
// then start the engine.
package launcher

import (
	"context"
	"errors"
	"fmt"

	"github.com/paklaunch/paklaunch/internal/config"
	"github.com/paklaunch/paklaunch/internal/engine"
	"github.com/paklaunch/paklaunch/internal/gatekeeper"
	"github.com/paklaunch/paklaunch/internal/logging"
	"github.com/paklaunch/paklaunch/internal/prompt"
	"github.com/paklaunch/paklaunch/internal/registry"
	"github.com/paklaunch/paklaunch/internal/watch"
)

// Option keys offered when the companion check blocks.
const (
	OptionDownload = "download"
	OptionContinue = "continue"
	OptionExit     = "exit"
)

// Outcome is how a Run ended.
type Outcome int

const (
	// Launched means the engine was started.
	Launched Outcome = iota
	// Downloaded means the companion package was fetched instead of launching.
	Downloaded
	// Exited means the user chose not to continue.
	Exited
)

func (o Outcome) String() string {
	switch o {
	case Launched:
		return "launched"
	case Downloaded:
		return "downloaded"
	case Exited:
		return "exited"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Deployer places the bundled archive in the external directory.
type Deployer interface {
	Deploy(name string, overwrite bool)
	Path(name string) string
}

// Checker decides whether the companion is usable.
type Checker interface {
	CheckCompanion(packageName string, minVersion int) gatekeeper.Decision
}

// Fetcher downloads a URL into a directory.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL, dir string) (string, error)
}

// Config wires a Launcher.
type Config struct {
	Profile  *config.Profile
	Deployer Deployer
	// Checker may be nil, in which case the companion check is skipped.
	Checker      Checker
	Registry     registry.Lookup
	Presenter    prompt.Presenter
	Fetcher      Fetcher
	Starter      engine.Starter
	DownloadDir  string
	NativeLibDir string
	Logger       logging.Logger
}

// Result describes a finished Run.
type Result struct {
	Outcome  Outcome
	Decision gatekeeper.Decision
	// Process is set when Outcome is Launched.
	Process *engine.Process
	// DownloadPath is set when Outcome is Downloaded.
	DownloadPath string
}

// Launcher runs the startup flow.
type Launcher struct {
	cfg Config
	log logging.Logger
}

// New validates cfg and returns a launcher.
func New(cfg Config) (*Launcher, error) {
	switch {
	case cfg.Profile == nil:
		return nil, errors.New("launcher: profile is required")
	case cfg.Deployer == nil:
		return nil, errors.New("launcher: deployer is required")
	case cfg.Registry == nil:
		return nil, errors.New("launcher: registry is required")
	case cfg.Starter == nil:
		return nil, errors.New("launcher: starter is required")
	case cfg.Checker != nil && (cfg.Presenter == nil || cfg.Fetcher == nil):
		return nil, errors.New("launcher: presenter and fetcher are required when the companion check is enabled")
	}
	return &Launcher{cfg: cfg, log: logging.OrNop(cfg.Logger)}, nil
}

// Prepare deploys the game archive if it is not already present.
func (l *Launcher) Prepare() {
	l.cfg.Deployer.Deploy(l.cfg.Profile.Game.Archive, false)
}

// Check runs the companion check, or reports OK when it is disabled.
func (l *Launcher) Check() gatekeeper.Decision {
	if l.cfg.Checker == nil {
		return gatekeeper.Decision{Kind: gatekeeper.OK}
	}
	c := l.cfg.Profile.Companion
	d := l.cfg.Checker.CheckCompanion(c.Package, c.MinVersion)
	l.log.Debug("companion check", "package", c.Package, "min_version", c.MinVersion, "decision", d.Kind.String())
	return d
}

// Run deploys, checks and, unless the user picks otherwise, launches.
func (l *Launcher) Run(ctx context.Context) (*Result, error) {
	l.Prepare()

	decision := l.Check()
	res := &Result{Decision: decision}

	if decision.Blocks() {
		choice, err := l.ask(ctx, decision)
		switch {
		case errors.Is(err, prompt.ErrDismissed):
			res.Outcome = Exited
			return res, nil
		case err != nil:
			return nil, fmt.Errorf("present choice: %w", err)
		}

		switch choice.Key {
		case OptionDownload:
			path, err := l.cfg.Fetcher.Fetch(ctx, decision.DownloadURL, l.cfg.DownloadDir)
			if err != nil {
				return nil, fmt.Errorf("download companion: %w", err)
			}
			l.log.Info("companion package downloaded, install it and start again", "path", path)
			res.Outcome = Downloaded
			res.DownloadPath = path
			return res, nil
		case OptionContinue:
			l.log.Info("continuing with outdated companion", "version", decision.Installed.VersionCode)
		default:
			res.Outcome = Exited
			return res, nil
		}
	}

	proc, err := l.Launch(ctx)
	if err != nil {
		return nil, err
	}
	res.Outcome = Launched
	res.Process = proc
	return res, nil
}

// Intent returns the parameters the engine is started with.
func (l *Launcher) Intent() engine.Intent {
	g := l.cfg.Profile.Game
	return engine.Intent{
		PakFile:    l.cfg.Deployer.Path(g.Archive),
		GameDir:    g.Dir,
		Argv:       g.Args,
		GameLibDir: l.cfg.NativeLibDir,
	}
}

// Launch starts the installed companion.
func (l *Launcher) Launch(ctx context.Context) (*engine.Process, error) {
	pkg := l.cfg.Profile.Companion.Package
	desc, err := l.cfg.Registry.Lookup(pkg)
	if err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			return nil, fmt.Errorf("companion %s is not installed: %w", pkg, err)
		}
		return nil, fmt.Errorf("look up companion %s: %w", pkg, err)
	}

	proc, err := l.cfg.Starter.Start(ctx, desc.Executable(), l.Intent())
	if err != nil {
		return nil, fmt.Errorf("launch companion: %w", err)
	}
	return proc, nil
}

// HandleSignals re-deploys the archive, overwriting it, for every update
// signal until events is closed or ctx is done.
func (l *Launcher) HandleSignals(ctx context.Context, events <-chan watch.Event) {
	archive := l.cfg.Profile.Game.Archive
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			l.log.Info("companion package changed, refreshing archive", "package", ev.Package, "path", ev.Path)
			l.cfg.Deployer.Deploy(archive, true)
		}
	}
}

func (l *Launcher) ask(ctx context.Context, d gatekeeper.Decision) (prompt.Option, error) {
	title, message, options := Choices(l.cfg.Profile.Companion, d)
	return l.cfg.Presenter.PresentChoice(ctx, title, message, options)
}

// Choices returns the prompt text and options for a blocking decision.
func Choices(c config.Companion, d gatekeeper.Decision) (title, message string, options []prompt.Option) {
	switch d.Kind {
	case gatekeeper.PromptUpdate:
		title = "Engine update required"
		message = fmt.Sprintf("%s version %d is installed, but version %d or newer is required.",
			c.Package, d.Installed.VersionCode, c.MinVersion)
		options = []prompt.Option{
			{Key: OptionDownload, Label: "Download update"},
			{Key: OptionContinue, Label: "Continue anyway"},
			{Key: OptionExit, Label: "Exit"},
		}
	case gatekeeper.PromptInstall:
		title = "Engine not installed"
		message = fmt.Sprintf("%s is required to play. Download it now?", c.Package)
		options = []prompt.Option{
			{Key: OptionDownload, Label: "Download"},
			{Key: OptionExit, Label: "Exit"},
		}
	}
	return title, message, options
}
