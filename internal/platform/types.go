// Package platform detects the host OS, architecture and supported ABIs, and
// exposes them to launcher profiles as a read-only Lua table.
//
// ABIs use the Android vocabulary ("arm64-v8a", "armeabi-v7a", "x86_64",
// "x86", "riscv64") because companion engine builds are published per ABI.
// The first entry of Info.ABIs is the primary ABI; the narrow/wide download
// choice is a pure function of it (see IsWideABI).
package platform

import "context"

// ABI identifiers.
const (
	ABIArm64   = "arm64-v8a"
	ABIArmV7   = "armeabi-v7a"
	ABIX86_64  = "x86_64"
	ABIX86     = "x86"
	ABIRiscV64 = "riscv64"
)

// Info contains platform detection information.
type Info struct {
	OS            string   // "linux", "darwin", "windows", "android"
	Arch          string   // normalized GOARCH-style name ("amd64", "arm64", "arm", "386", "riscv64")
	ArchRaw       string   // kernel or runtime arch as reported (e.g. "x86_64", "aarch64")
	ABIs          []string // supported ABIs, primary first
	Distro        string   // distro ID (Linux only, e.g. "ubuntu")
	DistroVersion string   // distro version (Linux only, e.g. "22.04")
}

// PrimaryABI returns the first supported ABI, or "" if none is known.
func (i *Info) PrimaryABI() string {
	if i == nil || len(i.ABIs) == 0 {
		return ""
	}
	return i.ABIs[0]
}

// IsWide reports whether the primary ABI is a 64-bit one.
func (i *Info) IsWide() bool {
	return IsWideABI(i.PrimaryABI())
}

// IsLinux returns true if the platform is Linux or Android.
func (i *Info) IsLinux() bool {
	return i.OS == "linux" || i.OS == "android"
}

// IsAndroid returns true if running on Android.
func (i *Info) IsAndroid() bool {
	return i.OS == "android"
}

// IsWindows returns true if the platform is Windows.
func (i *Info) IsWindows() bool {
	return i.OS == "windows"
}

// Detector is the interface for platform detection.
type Detector interface {
	Detect(ctx context.Context) (*Info, error)
}

// Static is a Detector that always returns the same Info.
type Static struct {
	Info *Info
}

// Detect returns the fixed info.
func (s Static) Detect(ctx context.Context) (*Info, error) {
	return s.Info, nil
}
