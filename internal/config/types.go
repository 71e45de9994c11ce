package config

import (
	"fmt"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// Profile is the launcher profile.
type Profile struct {
	Game      Game
	Companion Companion
	Signals   Signals
}

// Game describes what the companion engine should load.
type Game struct {
	// Dir is the logical game directory name passed to the engine.
	Dir string
	// Archive is the bundled asset deployed into the external directory.
	Archive string
	// Args is a free-form argument string passed verbatim.
	Args string
}

// Companion describes the engine package the launcher hands off to.
type Companion struct {
	Package    string
	MinVersion int
	Download   DownloadURLs
}

// DownloadURLs holds the two per-width download locations.
type DownloadURLs struct {
	Narrow string
	Wide   string
}

// Pick returns the wide URL when wide is true, the narrow one otherwise.
func (d DownloadURLs) Pick(wide bool) string {
	if wide {
		return d.Wide
	}
	return d.Narrow
}

// Signals tunes the update-signal watcher.
type Signals struct {
	DebounceMillis int
}

// Debounce returns the debounce window as a duration.
func (s Signals) Debounce() time.Duration {
	return time.Duration(s.DebounceMillis) * time.Millisecond
}

// Default returns the profile used when no file exists.
func Default() *Profile {
	return &Profile{
		Game: Game{
			Dir:     DefaultGameDir,
			Archive: DefaultArchive,
			Args:    DefaultArgs,
		},
		Companion: Companion{
			Package:    DefaultPackage,
			MinVersion: DefaultMinVersion,
			Download: DownloadURLs{
				Narrow: DefaultNarrowURL,
				Wide:   DefaultWideURL,
			},
		},
		Signals: Signals{DebounceMillis: DefaultDebounceMillis},
	}
}

var packageNamePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*(\.[A-Za-z][A-Za-z0-9_]*)+$`)

// ValidPackageName reports whether name is a dotted package identifier
// such as "su.xash.engine".
func ValidPackageName(name string) bool {
	return len(name) <= 255 && packageNamePattern.MatchString(name)
}

// Validate checks the profile for values the launcher cannot work with.
func (p *Profile) Validate() error {
	if strings.TrimSpace(p.Game.Dir) == "" {
		return &ValidationError{Field: "game.dir", Message: "must not be empty"}
	}
	if strings.ContainsAny(p.Game.Dir, `/\`) || p.Game.Dir == ".." || p.Game.Dir == "." {
		return &ValidationError{Field: "game.dir", Message: fmt.Sprintf("must be a single directory name, got %q", p.Game.Dir)}
	}

	if p.Game.Archive == "" {
		return &ValidationError{Field: "game.archive", Message: "must not be empty"}
	}
	if filepath.Base(p.Game.Archive) != p.Game.Archive || strings.ContainsAny(p.Game.Archive, `/\`) || p.Game.Archive == ".." {
		return &ValidationError{Field: "game.archive", Message: fmt.Sprintf("must be a bare filename, got %q", p.Game.Archive)}
	}

	if !ValidPackageName(p.Companion.Package) {
		return &ValidationError{Field: "companion.package", Message: fmt.Sprintf("invalid package name %q", p.Companion.Package)}
	}
	if p.Companion.MinVersion < 0 {
		return &ValidationError{Field: "companion.min_version", Message: fmt.Sprintf("must be >= 0, got %d", p.Companion.MinVersion)}
	}

	if err := validateURL("companion.download.narrow", p.Companion.Download.Narrow); err != nil {
		return err
	}
	if err := validateURL("companion.download.wide", p.Companion.Download.Wide); err != nil {
		return err
	}

	if p.Signals.DebounceMillis < 0 {
		return &ValidationError{Field: "signals.debounce_ms", Message: "must not be negative"}
	}

	return nil
}

func validateURL(field, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return &ValidationError{Field: field, Message: fmt.Sprintf("invalid URL: %v", err)}
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return &ValidationError{Field: field, Message: fmt.Sprintf("URL must use http or https, got %q", raw)}
	}
	if u.Host == "" {
		return &ValidationError{Field: field, Message: fmt.Sprintf("URL has no host: %q", raw)}
	}
	return nil
}

// ValidationError represents a profile validation failure.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error in %s: %s", e.Field, e.Message)
}
