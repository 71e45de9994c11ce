package config

import "time"

// Lua schema field names and globals
const (
	luaGlobalLauncher = "launcher"
	luaFieldGame      = "game"
	luaFieldDir       = "dir"
	luaFieldArchive   = "archive"
	luaFieldArgs      = "args"
	luaFieldCompanion = "companion"
	luaFieldPackage   = "package"
	luaFieldMinVer    = "min_version"
	luaFieldDownload  = "download"
	luaFieldNarrow    = "narrow"
	luaFieldWide      = "wide"
	luaFieldSignals   = "signals"
	luaFieldDebounce  = "debounce_ms"
)

// Limits applied while loading a profile.
const (
	MaxProfileSize = 1 << 20
	ParseTimeout   = 5 * time.Second
)

// Defaults for a fresh install.
const (
	DefaultGameDir        = "primext"
	DefaultArchive        = "extras.pak"
	DefaultArgs           = "-dev 3 -log"
	DefaultPackage        = "su.xash.engine"
	DefaultMinVersion     = 1710
	DefaultNarrowURL      = "https://github.com/FWGS/xash3d-fwgs/releases/download/continuous/xashdroid-32.apk"
	DefaultWideURL        = "https://github.com/FWGS/xash3d-fwgs/releases/download/continuous/xashdroid-64.apk"
	DefaultDebounceMillis = 500
)
