package platform

import (
	"context"
	"errors"
	"runtime"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRealDetector_Detect(t *testing.T) {
	info, err := NewDetector(nil).Detect(context.Background())
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}

	if info.OS != runtime.GOOS {
		t.Errorf("OS = %v, want %v", info.OS, runtime.GOOS)
	}
	if info.Arch == "" {
		t.Error("Arch should not be empty")
	}
	if info.ArchRaw == "" {
		t.Error("ArchRaw should not be empty")
	}
	if len(info.ABIs) == 0 {
		t.Error("ABIs should not be empty")
	}
}

func TestRealDetector_KernelArchWins(t *testing.T) {
	d := &RealDetector{
		kernelArch: func() (string, error) { return "aarch64", nil },
		goarch:     "arm",
	}

	info, err := d.Detect(context.Background())
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	if info.Arch != "arm64" {
		t.Errorf("Arch = %q, want arm64", info.Arch)
	}
	if info.PrimaryABI() != ABIArm64 {
		t.Errorf("PrimaryABI() = %q, want %q", info.PrimaryABI(), ABIArm64)
	}
}

func TestRealDetector_FallsBackToGOARCH(t *testing.T) {
	tests := []struct {
		name       string
		kernelArch func() (string, error)
	}{
		{"kernel error", func() (string, error) { return "", errors.New("uname failed") }},
		{"kernel empty", func() (string, error) { return "", nil }},
		{"kernel unknown", func() (string, error) { return "s390x", nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &RealDetector{kernelArch: tt.kernelArch, goarch: "386"}
			info, err := d.Detect(context.Background())
			if err != nil {
				t.Fatalf("Detect() error = %v", err)
			}
			if info.Arch != "386" {
				t.Errorf("Arch = %q, want 386", info.Arch)
			}
			if info.PrimaryABI() != ABIX86 {
				t.Errorf("PrimaryABI() = %q, want %q", info.PrimaryABI(), ABIX86)
			}
		})
	}
}

func TestRealDetector_UnsupportedArch(t *testing.T) {
	d := &RealDetector{
		kernelArch: func() (string, error) { return "", errors.New("no kernel") },
		goarch:     "wasm",
	}
	if _, err := d.Detect(context.Background()); err == nil {
		t.Fatal("expected error for unsupported architecture")
	}
}

func TestRealDetector_ABIOverride(t *testing.T) {
	d := &RealDetector{
		ABIOverride: []string{ABIArmV7},
		kernelArch:  func() (string, error) { return "x86_64", nil },
		goarch:      "amd64",
	}

	info, err := d.Detect(context.Background())
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	if diff := cmp.Diff([]string{ABIArmV7}, info.ABIs); diff != "" {
		t.Errorf("ABIs mismatch (-want +got):\n%s", diff)
	}
	if info.Arch != "amd64" {
		t.Errorf("Arch = %q, want amd64 (override only touches ABIs)", info.Arch)
	}
}

func TestRealDetector_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewDetector(nil).Detect(ctx); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

func TestStatic_Detect(t *testing.T) {
	want := &Info{OS: "android", ABIs: []string{ABIArm64}}
	got, err := Static{Info: want}.Detect(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Error("Static should return its Info unchanged")
	}
}
