package config

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestGenerator_Generate_Parses(t *testing.T) {
	g := NewGenerator()
	g.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }

	profile := Default()
	profile.Game.Args = `-dev 3 +map "c1a0"`

	code, err := g.Generate(profile)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if !strings.Contains(code, "-- Generated: 2026-01-02T03:04:05Z") {
		t.Errorf("missing header timestamp in:\n%s", code)
	}

	parsed, err := NewParser(nil).ParseString(context.Background(), code)
	if err != nil {
		t.Fatalf("generated profile does not parse: %v\n%s", err, code)
	}
	if diff := cmp.Diff(profile, parsed); diff != "" {
		t.Errorf("generated profile differs (-want +got):\n%s", diff)
	}
}

func TestGenerator_Generate_Rejects(t *testing.T) {
	g := NewGenerator()

	if _, err := g.Generate(nil); err == nil {
		t.Error("expected error for nil profile")
	}

	bad := Default()
	bad.Companion.Package = ""
	if _, err := g.Generate(bad); err == nil {
		t.Error("expected validation error")
	}
}

func TestQuoteLuaString(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", `"plain"`},
		{`a"b`, `"a\"b"`},
		{`C:\games`, `"C:\\games"`},
		{"line\nbreak\ttab", `"line\nbreak\ttab"`},
	}
	for _, tt := range tests {
		if got := quoteLuaString(tt.in); got != tt.want {
			t.Errorf("quoteLuaString(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}
