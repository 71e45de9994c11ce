//go:build !debug

package gatekeeper

// Enabled reports whether this build runs the companion check.
const Enabled = true
