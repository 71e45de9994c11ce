// Package config loads the launcher profile and the environment-supplied
// paths the launcher works with.
//
// # Launcher profile
//
// The profile is a Lua file evaluated in a sandboxed gopher-lua VM. Platform
// information is injected as a read-only "platform" table, so a profile can
// pick values per ABI:
//
//	launcher = {
//	  game = {
//	    dir = "primext",
//	    archive = "extras.pak",
//	    args = platform.is_wide and "-dev 3" or "-dev 3 -nowide",
//	  },
//	  companion = {
//	    package = "su.xash.engine",
//	    min_version = 1710,
//	    download = {
//	      narrow = "https://example.org/engine-32.apk",
//	      wide = "https://example.org/engine-64.apk",
//	    },
//	  },
//	  signals = { debounce_ms = 500 },
//	}
//
// Any field left out keeps its default (see Default). A missing profile file
// is not an error: LoadFile returns the defaults.
//
// The sandbox removes os, io, debug, require, dofile, loadfile, load and
// loadstring. Evaluation is bounded by a 5 second timeout unless the caller's
// context carries its own deadline, and profiles larger than 1 MiB are
// rejected before evaluation.
//
// # Paths
//
// Directories are not part of the profile. They come from PAKLAUNCH_*
// environment variables (see Paths) so the same profile works across
// installs.
package config
