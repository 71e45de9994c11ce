//go:build debug

package gatekeeper

// Enabled reports whether this build runs the companion check.
// Debug builds skip it so a development engine can be launched as-is.
const Enabled = false
