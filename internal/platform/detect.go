package platform

import (
	"context"
	"fmt"
	"runtime"

	"github.com/shirou/gopsutil/v4/host"
)

// RealDetector implements Detector using actual platform detection.
type RealDetector struct {
	// ABIOverride replaces the detected ABI list when non-empty.
	ABIOverride []string

	kernelArch func() (string, error)
	goarch     string
}

// NewDetector creates a new platform detector.
func NewDetector(abiOverride []string) *RealDetector {
	return &RealDetector{
		ABIOverride: abiOverride,
		kernelArch:  host.KernelArch,
		goarch:      runtime.GOARCH,
	}
}

// Detect performs platform detection.
//
// The architecture comes from the kernel (gopsutil), so a 32-bit launcher on a
// 64-bit host still reports the host's wide ABI first. If the kernel query
// fails the runtime GOARCH is used. Distro detection failures are not fatal.
func (d *RealDetector) Detect(ctx context.Context) (*Info, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("platform detection cancelled: %w", err)
	}

	info := &Info{OS: runtime.GOOS}

	raw := d.goarch
	if d.kernelArch != nil {
		if karch, err := d.kernelArch(); err == nil && karch != "" {
			raw = karch
		}
	}
	info.ArchRaw = raw

	arch, abis, err := normalizeArch(raw)
	if err != nil {
		// The kernel may report something exotic; the runtime arch is still usable.
		arch, abis, err = normalizeArch(d.goarch)
		if err != nil {
			return nil, fmt.Errorf("platform detection failed: %w", err)
		}
	}
	info.Arch = arch
	info.ABIs = abis

	if len(d.ABIOverride) > 0 {
		info.ABIs = append([]string(nil), d.ABIOverride...)
	}

	if info.IsLinux() {
		distro, _, version, err := host.PlatformInformationWithContext(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("platform detection cancelled: %w", ctx.Err())
			}
			return info, nil
		}
		info.Distro = normalizeDistro(distro)
		info.DistroVersion = normalizeDistro(version)
	}

	return info, nil
}
