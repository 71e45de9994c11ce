package assets

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/paklaunch/paklaunch/internal/logging"
)

// DefaultBufferSize is the copy buffer used when streaming a bundled file.
const DefaultBufferSize = 32 * 1024

// Deployer copies bundled files into a destination directory.
type Deployer struct {
	bundle  fs.FS
	destDir string
	bufSize int
	log     logging.Logger
}

// Config holds configuration for a Deployer.
type Config struct {
	// Bundle is the read-only source. Defaults to the embedded bundle.
	Bundle fs.FS
	// DestDir is the external directory. It must already exist.
	DestDir string
	// BufferSize bounds the intermediate copy buffer. Defaults to DefaultBufferSize.
	BufferSize int
	Logger     logging.Logger
}

// NewDeployer creates a deployer.
func NewDeployer(cfg Config) (*Deployer, error) {
	if cfg.DestDir == "" {
		return nil, fmt.Errorf("DestDir is required")
	}
	if cfg.Bundle == nil {
		cfg.Bundle = Bundle()
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = DefaultBufferSize
	}
	return &Deployer{
		bundle:  cfg.Bundle,
		destDir: cfg.DestDir,
		bufSize: cfg.BufferSize,
		log:     logging.OrNop(cfg.Logger),
	}, nil
}

// Path returns where name is deployed.
func (d *Deployer) Path(name string) string {
	return filepath.Join(d.destDir, name)
}

// Deploy copies the bundled file name into the destination directory.
// If the destination exists and overwrite is false, nothing happens.
// Errors are logged, never returned.
func (d *Deployer) Deploy(name string, overwrite bool) {
	written, err := d.deploy(name, overwrite)
	switch {
	case errors.Is(err, ErrLockHeld):
		d.log.Info("asset deploy skipped, another deploy in progress", "file", name)
	case err != nil:
		d.log.Warn("asset deploy failed", "file", name, "overwrite", overwrite, "error", err)
	case written:
		d.log.Info("asset deployed", "file", name, "dest", d.Path(name), "overwrite", overwrite)
	default:
		d.log.Debug("asset already present", "file", name, "dest", d.Path(name))
	}
}

// DeployAll deploys every file at the top level of the bundle.
func (d *Deployer) DeployAll(overwrite bool) {
	names, err := d.List()
	if err != nil {
		d.log.Warn("list asset bundle failed", "error", err)
		return
	}
	for _, name := range names {
		d.Deploy(name, overwrite)
	}
}

// List returns the names of the regular files in the bundle, sorted.
func (d *Deployer) List() ([]string, error) {
	entries, err := fs.ReadDir(d.bundle, ".")
	if err != nil {
		return nil, fmt.Errorf("read bundle: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.Type().IsRegular() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// deploy does the work behind Deploy and reports whether it wrote the
// destination.
func (d *Deployer) deploy(name string, overwrite bool) (bool, error) {
	if !fs.ValidPath(name) || name == "." || strings.Contains(name, "/") {
		return false, fmt.Errorf("invalid asset name %q", name)
	}
	dest := d.Path(name)

	if !overwrite {
		exists, err := fileExists(dest)
		if err != nil {
			return false, err
		}
		if exists {
			return false, nil
		}
	}

	lock, err := acquireLock(dest + ".lock")
	if err != nil {
		return false, err
	}
	defer lock.release()

	// Another deploy may have finished while we waited for the lock.
	if !overwrite {
		exists, err := fileExists(dest)
		if err != nil {
			return false, err
		}
		if exists {
			return false, nil
		}
	}

	if err := d.copyFile(name, dest); err != nil {
		return false, err
	}
	return true, nil
}

// copyFile streams the bundled file to a temp file next to dest and renames it
// into place.
func (d *Deployer) copyFile(name, dest string) error {
	src, err := d.bundle.Open(name)
	if err != nil {
		return fmt.Errorf("open bundled file: %w", err)
	}
	defer src.Close()

	tmp, err := os.CreateTemp(d.destDir, "."+name+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	cleanupNeeded := true
	defer func() {
		tmp.Close()
		if cleanupNeeded {
			os.Remove(tmpPath)
		}
	}()

	buf := make([]byte, d.bufSize)
	// io.CopyBuffer would bypass buf via ReaderFrom; hide it.
	if _, err := io.CopyBuffer(struct{ io.Writer }{tmp}, src, buf); err != nil {
		return fmt.Errorf("copy bundled file: %w", err)
	}

	if err := tmp.Chmod(0o644); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, dest); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}

	cleanupNeeded = false
	return nil
}

// fileExists reports whether path exists. Errors other than not-exist are returned.
func fileExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("stat destination: %w", err)
}
