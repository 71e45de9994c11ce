// Package engine starts the companion engine with the launch parameters.
package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/paklaunch/paklaunch/internal/logging"
)

// Parameter flags passed to the engine. The values are passed verbatim.
const (
	FlagPakFile    = "--pakfile"
	FlagGameDir    = "--gamedir"
	FlagArgv       = "--argv"
	FlagGameLibDir = "--gamelibdir"
)

// LibraryPathVar is the search path variable the native library dir is
// prepended to.
const LibraryPathVar = "LD_LIBRARY_PATH"

// ErrNoExecutable is returned when the companion has no entry point.
var ErrNoExecutable = errors.New("companion executable not set")

// Intent carries the four launch parameters.
type Intent struct {
	PakFile    string
	GameDir    string
	Argv       string
	GameLibDir string
}

// Args returns the command line for the intent, in a fixed order.
func (i Intent) Args() []string {
	return []string{
		FlagPakFile, i.PakFile,
		FlagGameDir, i.GameDir,
		FlagArgv, i.Argv,
		FlagGameLibDir, i.GameLibDir,
	}
}

// Starter launches the companion.
type Starter interface {
	Start(ctx context.Context, exe string, intent Intent) (*Process, error)
}

// Process is a started engine.
type Process struct {
	cmd  *exec.Cmd
	done chan struct{}
	err  error
}

// Pid returns the process id.
func (p *Process) Pid() int {
	return p.cmd.Process.Pid
}

// Done is closed when the engine exits.
func (p *Process) Done() <-chan struct{} {
	return p.done
}

// Err returns the exit error once Done is closed.
func (p *Process) Err() error {
	<-p.done
	return p.err
}

// Exec starts the engine as a child process.
type Exec struct {
	// Environ is the base environment. Nil means os.Environ.
	Environ []string
	Stdout  *os.File
	Stderr  *os.File
	Log     logging.Logger
}

// NewExec returns a starter that inherits this process's stdio.
func NewExec(log logging.Logger) *Exec {
	return &Exec{Stdout: os.Stdout, Stderr: os.Stderr, Log: logging.OrNop(log)}
}

// Start runs exe with the intent's parameters. The engine is not tied to
// ctx once started; ctx only aborts a launch that has not happened yet.
func (e *Exec) Start(ctx context.Context, exe string, intent Intent) (*Process, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if exe == "" {
		return nil, ErrNoExecutable
	}

	log := logging.OrNop(e.Log)
	cmd := exec.Command(exe, intent.Args()...)
	cmd.Dir = filepath.Dir(exe)
	cmd.Env = e.environ(intent.GameLibDir)
	cmd.Stdout = e.Stdout
	cmd.Stderr = e.Stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start engine %s: %w", exe, err)
	}
	log.Info("engine started", "exe", exe, "pid", cmd.Process.Pid, "gamedir", intent.GameDir)

	p := &Process{cmd: cmd, done: make(chan struct{})}
	go func() {
		p.err = cmd.Wait()
		if p.err != nil {
			log.Warn("engine exited with error", "pid", cmd.Process.Pid, "error", p.err)
		} else {
			log.Debug("engine exited", "pid", cmd.Process.Pid)
		}
		close(p.done)
	}()
	return p, nil
}

// environ builds the child environment with libDir first on the library
// search path.
func (e *Exec) environ(libDir string) []string {
	base := e.Environ
	if base == nil {
		base = os.Environ()
	}
	return withLibraryPath(base, libDir)
}

func withLibraryPath(env []string, libDir string) []string {
	out := make([]string, 0, len(env)+1)
	prefix := LibraryPathVar + "="
	current := ""
	for _, kv := range env {
		if strings.HasPrefix(kv, prefix) {
			current = strings.TrimPrefix(kv, prefix)
			continue
		}
		out = append(out, kv)
	}

	switch {
	case libDir == "":
		if current != "" {
			out = append(out, prefix+current)
		}
	case current == "":
		out = append(out, prefix+libDir)
	default:
		out = append(out, prefix+libDir+string(os.PathListSeparator)+current)
	}
	return out
}
