package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
)

// Paths holds the directories the launcher reads and writes.
// Every field comes from the environment; empty fields are derived from Home.
type Paths struct {
	Home         string   `env:"PAKLAUNCH_HOME"`
	ExternalDir  string   `env:"PAKLAUNCH_EXTERNAL_DIR"`
	NativeLibDir string   `env:"PAKLAUNCH_NATIVE_LIB_DIR"`
	RegistryDir  string   `env:"PAKLAUNCH_REGISTRY_DIR"`
	ProfileFile  string   `env:"PAKLAUNCH_CONFIG"`
	Keyring      string   `env:"PAKLAUNCH_KEYRING"`
	DownloadDir  string   `env:"PAKLAUNCH_DOWNLOAD_DIR"`
	ABIs         []string `env:"PAKLAUNCH_ABIS" envSeparator:","`
}

// LoadPaths parses PAKLAUNCH_* variables and fills in defaults.
func LoadPaths() (*Paths, error) {
	var p Paths
	if err := env.Parse(&p); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if p.Home == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		p.Home = filepath.Join(home, ".config", "paklaunch")
	}

	if p.NativeLibDir == "" {
		exe, err := os.Executable()
		if err != nil {
			return nil, fmt.Errorf("locate executable: %w", err)
		}
		p.NativeLibDir = filepath.Dir(exe)
	}

	p.applyDefaults()
	return &p, nil
}

func (p *Paths) applyDefaults() {
	if p.ExternalDir == "" {
		p.ExternalDir = filepath.Join(p.Home, "files")
	}
	if p.RegistryDir == "" {
		p.RegistryDir = filepath.Join(p.Home, "packages")
	}
	if p.ProfileFile == "" {
		p.ProfileFile = filepath.Join(p.Home, "launcher.lua")
	}
	if p.DownloadDir == "" {
		p.DownloadDir = filepath.Join(p.Home, "downloads")
	}
}

// EnsureDirs creates the directories the launcher writes into.
// This is idempotent.
func (p *Paths) EnsureDirs() error {
	for _, dir := range []string{p.Home, p.ExternalDir, p.RegistryDir, p.DownloadDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}
