package platform

import (
	"fmt"
	"strings"
)

// archABIs maps a kernel or GOARCH architecture name to its normalized arch
// and the ABIs it can run, primary first.
var archABIs = map[string]struct {
	arch string
	abis []string
}{
	"x86_64":  {"amd64", []string{ABIX86_64, ABIX86}},
	"amd64":   {"amd64", []string{ABIX86_64, ABIX86}},
	"aarch64": {"arm64", []string{ABIArm64, ABIArmV7}},
	"arm64":   {"arm64", []string{ABIArm64, ABIArmV7}},
	"armv8l":  {"arm", []string{ABIArmV7}}, // 32-bit userland on a 64-bit core
	"armv7l":  {"arm", []string{ABIArmV7}},
	"armv7":   {"arm", []string{ABIArmV7}},
	"arm":     {"arm", []string{ABIArmV7}},
	"i386":    {"386", []string{ABIX86}},
	"i686":    {"386", []string{ABIX86}},
	"386":     {"386", []string{ABIX86}},
	"riscv64": {"riscv64", []string{ABIRiscV64}},
}

// normalizeArch converts a raw architecture name into the normalized arch and
// the supported ABI list.
func normalizeArch(raw string) (string, []string, error) {
	key := strings.ToLower(strings.TrimSpace(raw))
	entry, ok := archABIs[key]
	if !ok {
		return "", nil, fmt.Errorf("unsupported architecture: %s", raw)
	}
	abis := make([]string, len(entry.abis))
	copy(abis, entry.abis)
	return entry.arch, abis, nil
}

// IsWideABI reports whether abi names a 64-bit instruction set.
// Unknown and empty identifiers count as narrow.
func IsWideABI(abi string) bool {
	switch strings.ToLower(strings.TrimSpace(abi)) {
	case ABIArm64, ABIX86_64, ABIRiscV64, "mips64":
		return true
	default:
		return false
	}
}

// ParseABIs splits a comma separated ABI list, dropping blanks.
func ParseABIs(s string) []string {
	var abis []string
	for _, part := range strings.Split(s, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" {
			abis = append(abis, part)
		}
	}
	return abis
}

// normalizeDistro converts distro IDs to lowercase for consistency.
func normalizeDistro(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
