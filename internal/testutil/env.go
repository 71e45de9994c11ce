// Package testutil provides utilities for testing paklaunch in isolation.
package testutil

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"
)

// Env holds the directories created by SetupTestEnv.
type Env struct {
	Home        string
	ExternalDir string
	NativeLib   string
	RegistryDir string
	DownloadDir string
}

// SetupTestEnv points every PAKLAUNCH_* path at a fresh temp directory so
// tests never touch the user's real install. Cleanup is handled by t.TempDir.
func SetupTestEnv(t *testing.T) *Env {
	t.Helper()

	tmpDir := t.TempDir()
	e := &Env{
		Home:        filepath.Join(tmpDir, "home"),
		ExternalDir: filepath.Join(tmpDir, "external"),
		NativeLib:   filepath.Join(tmpDir, "lib"),
		RegistryDir: filepath.Join(tmpDir, "packages"),
		DownloadDir: filepath.Join(tmpDir, "downloads"),
	}

	t.Setenv("PAKLAUNCH_HOME", e.Home)
	t.Setenv("PAKLAUNCH_EXTERNAL_DIR", e.ExternalDir)
	t.Setenv("PAKLAUNCH_NATIVE_LIB_DIR", e.NativeLib)
	t.Setenv("PAKLAUNCH_REGISTRY_DIR", e.RegistryDir)
	t.Setenv("PAKLAUNCH_DOWNLOAD_DIR", e.DownloadDir)
	t.Setenv("PAKLAUNCH_CONFIG", filepath.Join(e.Home, "launcher.lua"))
	for _, key := range []string{"PAKLAUNCH_KEYRING", "PAKLAUNCH_ABIS"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	for _, dir := range []string{e.Home, e.ExternalDir, e.NativeLib, e.RegistryDir, e.DownloadDir} {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			t.Fatalf("failed to create test directory %s: %v", dir, err)
		}
	}

	return e
}

// WriteManifest installs a fake companion package into registryDir.
func WriteManifest(t *testing.T, registryDir, pkg string, versionCode int) string {
	t.Helper()

	dir := filepath.Join(registryDir, pkg)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		t.Fatalf("create package dir: %v", err)
	}
	manifest := "package: " + pkg + "\nversion_code: " + strconv.Itoa(versionCode) + "\nentry: bin/engine\n"
	path := filepath.Join(dir, "package.yaml")
	if err := os.WriteFile(path, []byte(manifest), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	return path
}
