// Package registry answers "is this companion package installed, and at what
// version?" from a directory of installed packages.
//
// Each package lives in <root>/<package-name>/ and is described by a
// package.yaml manifest:
//
//	package: su.xash.engine
//	version_code: 1710
//	version_name: "0.21"
//	entry: bin/xash3d
//
// When a keyring is configured, every manifest must carry a detached OpenPGP
// signature in package.yaml.asc made by one of the keyring's keys.
//
// Lookups are read-only and uncached: each call reads the manifest again.
package registry

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/paklaunch/paklaunch/internal/config"
	"github.com/paklaunch/paklaunch/internal/logging"
)

// File names inside a package directory.
const (
	ManifestName  = "package.yaml"
	SignatureName = "package.yaml.asc"
)

// ErrNotFound means the package is not installed.
var ErrNotFound = errors.New("package not installed")

// Descriptor is a snapshot of an installed package.
type Descriptor struct {
	Name        string
	Installed   bool
	VersionCode int
	VersionName string
	// Dir is the package directory.
	Dir string
	// Entry is the executable path relative to Dir.
	Entry string
}

// Executable returns the absolute path of the package's entry point.
func (d Descriptor) Executable() string {
	if d.Entry == "" {
		return ""
	}
	return filepath.Join(d.Dir, filepath.FromSlash(d.Entry))
}

// Lookup is the query interface the gatekeeper and launcher depend on.
type Lookup interface {
	Lookup(name string) (Descriptor, error)
}

// manifest is the on-disk package.yaml schema.
type manifest struct {
	Package     string `yaml:"package"`
	VersionCode *int   `yaml:"version_code"`
	VersionName string `yaml:"version_name"`
	Entry       string `yaml:"entry"`
}

// Registry reads package manifests from a root directory.
type Registry struct {
	root     string
	verifier *Verifier
	log      logging.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithVerifier requires signed manifests.
func WithVerifier(v *Verifier) Option {
	return func(r *Registry) { r.verifier = v }
}

// WithLogger sets the registry logger.
func WithLogger(l logging.Logger) Option {
	return func(r *Registry) { r.log = logging.OrNop(l) }
}

// New creates a registry rooted at root.
func New(root string, opts ...Option) *Registry {
	r := &Registry{root: root, log: logging.Nop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Root returns the registry directory.
func (r *Registry) Root() string {
	return r.root
}

// PackageDir returns the directory a package would be installed in.
func (r *Registry) PackageDir(name string) string {
	return filepath.Join(r.root, name)
}

// Lookup returns the descriptor for name. A package that is not installed
// yields ErrNotFound; anything else wrong with the install is a wrapped error.
func (r *Registry) Lookup(name string) (Descriptor, error) {
	if !config.ValidPackageName(name) {
		return Descriptor{}, fmt.Errorf("invalid package name %q", name)
	}

	dir := r.PackageDir(name)
	manifestPath := filepath.Join(dir, ManifestName)

	data, err := os.ReadFile(manifestPath)
	if errors.Is(err, fs.ErrNotExist) {
		return Descriptor{}, ErrNotFound
	}
	if err != nil {
		return Descriptor{}, fmt.Errorf("read manifest: %w", err)
	}

	if r.verifier != nil {
		if err := r.verifier.VerifyFile(manifestPath, filepath.Join(dir, SignatureName)); err != nil {
			return Descriptor{}, fmt.Errorf("verify manifest %s: %w", name, err)
		}
	}

	var m manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Descriptor{}, fmt.Errorf("parse manifest %s: %w", name, err)
	}
	if m.Package != name {
		return Descriptor{}, fmt.Errorf("manifest in %s names package %q", dir, m.Package)
	}
	if m.VersionCode == nil {
		return Descriptor{}, fmt.Errorf("manifest %s: version_code is required", name)
	}
	if *m.VersionCode < 0 {
		return Descriptor{}, fmt.Errorf("manifest %s: version_code must be >= 0, got %d", name, *m.VersionCode)
	}
	if m.Entry != "" && (filepath.IsAbs(m.Entry) || !fs.ValidPath(m.Entry)) {
		return Descriptor{}, fmt.Errorf("manifest %s: entry %q must be a relative path inside the package", name, m.Entry)
	}

	d := Descriptor{
		Name:        name,
		Installed:   true,
		VersionCode: *m.VersionCode,
		VersionName: m.VersionName,
		Dir:         dir,
		Entry:       m.Entry,
	}
	r.log.Debug("package found", "package", name, "version_code", d.VersionCode)
	return d, nil
}
