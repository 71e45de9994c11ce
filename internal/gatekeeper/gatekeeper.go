// Package gatekeeper decides whether the companion engine package is usable
// or whether the user has to install or update it first.
//
// The check is a pure query: it reads the registry and the platform's primary
// ABI and returns a Decision. Showing the decision to the user is up to the
// caller. Builds tagged "debug" skip the check entirely (see Enabled).
package gatekeeper

import (
	"errors"
	"fmt"

	"github.com/paklaunch/paklaunch/internal/config"
	"github.com/paklaunch/paklaunch/internal/logging"
	"github.com/paklaunch/paklaunch/internal/platform"
	"github.com/paklaunch/paklaunch/internal/registry"
)

// Kind is the outcome of a companion check.
type Kind int

const (
	// OK means the companion is installed at or above the minimum version.
	OK Kind = iota
	// PromptUpdate means the companion is installed but too old.
	PromptUpdate
	// PromptInstall means the companion is not installed.
	PromptInstall
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case OK:
		return "ok"
	case PromptUpdate:
		return "prompt-update"
	case PromptInstall:
		return "prompt-install"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Decision is the result of CheckCompanion.
type Decision struct {
	Kind Kind
	// DownloadURL is set for PromptUpdate and PromptInstall.
	DownloadURL string
	// Installed is the descriptor that was found, if any.
	Installed registry.Descriptor
}

// Blocks reports whether the decision requires user action before launch.
func (d Decision) Blocks() bool {
	return d.Kind != OK
}

// Gatekeeper checks the companion package against a minimum version.
type Gatekeeper struct {
	registry registry.Lookup
	platform *platform.Info
	urls     config.DownloadURLs
	log      logging.Logger
}

// New creates a gatekeeper.
func New(reg registry.Lookup, info *platform.Info, urls config.DownloadURLs, log logging.Logger) *Gatekeeper {
	return &Gatekeeper{
		registry: reg,
		platform: info,
		urls:     urls,
		log:      logging.OrNop(log),
	}
}

// CheckCompanion looks packageName up and compares its version code with
// minVersion. A registry failure other than not-found is logged and treated
// as not installed.
func (g *Gatekeeper) CheckCompanion(packageName string, minVersion int) Decision {
	desc, err := g.registry.Lookup(packageName)
	if err != nil {
		if !errors.Is(err, registry.ErrNotFound) {
			g.log.Warn("companion lookup failed, treating as not installed", "package", packageName, "error", err)
		}
		return Decision{Kind: PromptInstall, DownloadURL: g.downloadURL()}
	}

	return decide(desc, minVersion, g.downloadURL)
}

// decide is the version comparison behind CheckCompanion.
func decide(desc registry.Descriptor, minVersion int, url func() string) Decision {
	switch {
	case !desc.Installed:
		return Decision{Kind: PromptInstall, DownloadURL: url()}
	case desc.VersionCode < minVersion:
		return Decision{Kind: PromptUpdate, DownloadURL: url(), Installed: desc}
	default:
		return Decision{Kind: OK, Installed: desc}
	}
}

// downloadURL picks the narrow or wide URL from the primary ABI.
func (g *Gatekeeper) downloadURL() string {
	return g.urls.Pick(platform.IsWideABI(g.platform.PrimaryABI()))
}
