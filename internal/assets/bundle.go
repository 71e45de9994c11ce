package assets

import (
	"embed"
	"io/fs"
)

// bundled holds the read-only asset bundle compiled into the launcher.
//
//go:embed bundle
var bundled embed.FS

// Bundle returns the embedded asset bundle rooted at its top level, so
// files are addressed by bare name ("extras.pak").
func Bundle() fs.FS {
	sub, err := fs.Sub(bundled, "bundle")
	if err != nil {
		// fs.Sub only fails on an invalid path literal
		panic(err)
	}
	return sub
}
