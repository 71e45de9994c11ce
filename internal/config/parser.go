package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/paklaunch/paklaunch/internal/logging"
	"github.com/paklaunch/paklaunch/internal/platform"
)

// Parser evaluates launcher profiles.
type Parser struct {
	detector platform.Detector
	log      logging.Logger
}

// NewParser creates a profile parser. A nil detector skips platform table injection.
func NewParser(detector platform.Detector) *Parser {
	return &Parser{detector: detector, log: logging.Nop()}
}

// WithLogger sets the logger used while parsing.
func (p *Parser) WithLogger(l logging.Logger) *Parser {
	p.log = logging.OrNop(l)
	return p
}

// LoadFile reads and parses the profile at path.
// A missing file yields Default().
func (p *Parser) LoadFile(ctx context.Context, path string) (*Profile, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		p.log.Debug("profile not found, using defaults", "path", path)
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("stat profile: %w", err)
	}
	if info.Size() > MaxProfileSize {
		return nil, &ParseError{
			Message: "profile too large",
			Detail:  fmt.Sprintf("%d bytes exceeds limit of %d", info.Size(), MaxProfileSize),
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}

	profile, err := p.ParseString(ctx, string(data))
	if err != nil {
		return nil, err
	}
	p.log.Debug("profile loaded", "path", path, "package", profile.Companion.Package)
	return profile, nil
}

// ParseString parses a profile held in memory.
func (p *Parser) ParseString(ctx context.Context, code string) (*Profile, error) {
	if len(code) > MaxProfileSize {
		return nil, &ParseError{
			Message: "profile too large",
			Detail:  fmt.Sprintf("%d bytes exceeds limit of %d", len(code), MaxProfileSize),
		}
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, ParseTimeout)
		defer cancel()
	}

	L := newSandboxedVM()
	defer L.Close()
	L.SetContext(ctx)

	if p.detector != nil {
		info, err := p.detector.Detect(ctx)
		if err != nil {
			return nil, fmt.Errorf("platform detection failed: %w", err)
		}
		if err := platform.InjectPlatformTable(L, info); err != nil {
			return nil, fmt.Errorf("inject platform table: %w", err)
		}
	}

	if err := L.DoString(code); err != nil {
		if ctx.Err() != nil {
			return nil, &ParseError{Message: "profile evaluation timed out", Detail: ctx.Err().Error()}
		}
		return nil, &ParseError{Message: "Lua syntax error", Detail: err.Error()}
	}

	return extractProfile(L)
}

// ParseError represents a profile parsing error with a friendly message.
type ParseError struct {
	Message string // User-friendly message
	Detail  string // Technical details (raw Lua error)
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Message, e.Detail)
}

// extractProfile reads the global "launcher" table over a copy of the defaults.
func extractProfile(L *lua.LState) (*Profile, error) {
	root := L.GetGlobal(luaGlobalLauncher)
	table, ok := root.(*lua.LTable)
	if !ok {
		return nil, &ParseError{
			Message: "missing or invalid 'launcher' table",
			Detail:  fmt.Sprintf("expected table, got %s", root.Type()),
		}
	}

	profile := Default()

	if game, ok := table.RawGetString(luaFieldGame).(*lua.LTable); ok {
		stringField(game, luaFieldDir, &profile.Game.Dir)
		stringField(game, luaFieldArchive, &profile.Game.Archive)
		rawStringField(game, luaFieldArgs, &profile.Game.Args)
	}

	if comp, ok := table.RawGetString(luaFieldCompanion).(*lua.LTable); ok {
		stringField(comp, luaFieldPackage, &profile.Companion.Package)
		if err := intField(comp, luaFieldMinVer, &profile.Companion.MinVersion); err != nil {
			return nil, err
		}
		if dl, ok := comp.RawGetString(luaFieldDownload).(*lua.LTable); ok {
			stringField(dl, luaFieldNarrow, &profile.Companion.Download.Narrow)
			stringField(dl, luaFieldWide, &profile.Companion.Download.Wide)
		}
	}

	if sig, ok := table.RawGetString(luaFieldSignals).(*lua.LTable); ok {
		if err := intField(sig, luaFieldDebounce, &profile.Signals.DebounceMillis); err != nil {
			return nil, err
		}
	}

	if err := profile.Validate(); err != nil {
		return nil, &ParseError{
			Message: "profile validation failed",
			Detail:  err.Error(),
		}
	}

	return profile, nil
}

// stringField copies a string field into dst when present. Other types,
// including nil from platform conditionals, leave dst alone.
func stringField(t *lua.LTable, name string, dst *string) {
	if v, ok := t.RawGetString(name).(lua.LString); ok {
		*dst = strings.TrimSpace(string(v))
	}
}

// rawStringField is stringField without trimming, for values passed on verbatim.
func rawStringField(t *lua.LTable, name string, dst *string) {
	if v, ok := t.RawGetString(name).(lua.LString); ok {
		*dst = string(v)
	}
}

func intField(t *lua.LTable, name string, dst *int) error {
	v := t.RawGetString(name)
	switch n := v.(type) {
	case lua.LNumber:
		if float64(n) != float64(int(n)) {
			return &ParseError{Message: "invalid number", Detail: fmt.Sprintf("%s must be an integer, got %v", name, n)}
		}
		*dst = int(n)
	case *lua.LNilType:
	default:
		return &ParseError{Message: "invalid type", Detail: fmt.Sprintf("%s must be a number, got %s", name, v.Type())}
	}
	return nil
}

// FormatError formats a ParseError for user display.
// In verbose mode the raw Lua error is shown in full.
func FormatError(err error, verbose bool) string {
	var parseErr *ParseError
	if errors.As(err, &parseErr) {
		if verbose {
			return fmt.Sprintf("%s\n\nDetails:\n%s", parseErr.Message, parseErr.Detail)
		}
		detail := parseErr.Detail
		if idx := strings.Index(detail, "stack traceback"); idx > 0 {
			detail = strings.TrimSpace(detail[:idx])
		}
		return fmt.Sprintf("%s: %s", parseErr.Message, detail)
	}
	return err.Error()
}
