package config

import (
	"bytes"
	"fmt"
	"strings"
	"time"
)

// Generator writes a Profile back out as Lua.
type Generator struct {
	indent string
	now    func() time.Time
}

// NewGenerator creates a new Lua profile generator.
func NewGenerator() *Generator {
	return &Generator{
		indent: "  ",
		now:    time.Now,
	}
}

// Generate renders profile as a Lua launcher profile.
func (g *Generator) Generate(profile *Profile) (string, error) {
	if profile == nil {
		return "", fmt.Errorf("profile is nil")
	}
	if err := profile.Validate(); err != nil {
		return "", err
	}

	var buf bytes.Buffer

	buf.WriteString("-- paklaunch launcher profile\n")
	buf.WriteString("-- Generated: ")
	buf.WriteString(g.now().UTC().Format(time.RFC3339))
	buf.WriteString("\n--\n")
	buf.WriteString("-- The read-only `platform` table is available here, e.g.\n")
	buf.WriteString("--   args = platform.is_wide and \"-dev 3\" or \"-dev 3 -nowide\",\n\n")

	buf.WriteString(luaGlobalLauncher + " = {\n")

	g.open(&buf, 1, luaFieldGame)
	g.str(&buf, 2, luaFieldDir, profile.Game.Dir)
	g.str(&buf, 2, luaFieldArchive, profile.Game.Archive)
	g.str(&buf, 2, luaFieldArgs, profile.Game.Args)
	g.close(&buf, 1)

	g.open(&buf, 1, luaFieldCompanion)
	g.str(&buf, 2, luaFieldPackage, profile.Companion.Package)
	g.num(&buf, 2, luaFieldMinVer, profile.Companion.MinVersion)
	g.open(&buf, 2, luaFieldDownload)
	g.str(&buf, 3, luaFieldNarrow, profile.Companion.Download.Narrow)
	g.str(&buf, 3, luaFieldWide, profile.Companion.Download.Wide)
	g.close(&buf, 2)
	g.close(&buf, 1)

	g.open(&buf, 1, luaFieldSignals)
	g.num(&buf, 2, luaFieldDebounce, profile.Signals.DebounceMillis)
	g.close(&buf, 1)

	buf.WriteString("}\n")

	return buf.String(), nil
}

func (g *Generator) open(buf *bytes.Buffer, depth int, name string) {
	buf.WriteString(strings.Repeat(g.indent, depth))
	buf.WriteString(name)
	buf.WriteString(" = {\n")
}

func (g *Generator) close(buf *bytes.Buffer, depth int) {
	buf.WriteString(strings.Repeat(g.indent, depth))
	buf.WriteString("},\n")
}

func (g *Generator) str(buf *bytes.Buffer, depth int, name, value string) {
	buf.WriteString(strings.Repeat(g.indent, depth))
	buf.WriteString(name)
	buf.WriteString(" = ")
	buf.WriteString(quoteLuaString(value))
	buf.WriteString(",\n")
}

func (g *Generator) num(buf *bytes.Buffer, depth int, name string, value int) {
	buf.WriteString(strings.Repeat(g.indent, depth))
	fmt.Fprintf(buf, "%s = %d,\n", name, value)
}

// quoteLuaString quotes a string for Lua, handling special characters.
func quoteLuaString(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\") // backslashes first
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "\n", "\\n")
	s = strings.ReplaceAll(s, "\r", "\\r")
	s = strings.ReplaceAll(s, "\t", "\\t")
	return "\"" + s + "\""
}
