package config

import (
	lua "github.com/yuin/gopher-lua"
)

// safeLibs are the only standard libraries opened in a profile VM. The
// package library is left out, so package.loaded cannot hand back os or io.
var safeLibs = []struct {
	name string
	open lua.LGFunction
}{
	{lua.BaseLibName, lua.OpenBase},
	{lua.TabLibName, lua.OpenTable},
	{lua.StringLibName, lua.OpenString},
	{lua.MathLibName, lua.OpenMath},
}

// unsafeGlobals are base functions that load code or bypass metatables.
var unsafeGlobals = []string{
	"os",
	"io",
	"debug",
	"package",
	"require",
	"module",
	"dofile",
	"loadfile",
	"load",
	"loadstring",
	"rawset",
	"rawget",
	"rawequal",
}

// sandboxLuaVM opens string, table and math on top of base and removes every
// global that could run commands, touch the filesystem or load external code.
func sandboxLuaVM(L *lua.LState) {
	for _, lib := range safeLibs {
		L.Push(L.NewFunction(lib.open))
		L.Push(lua.LString(lib.name))
		L.Call(1, 0)
	}
	for _, name := range unsafeGlobals {
		L.SetGlobal(name, lua.LNil)
	}
}

// newSandboxedVM creates a Lua VM with only the safe libraries loaded.
func newSandboxedVM() *lua.LState {
	L := lua.NewState(lua.Options{
		CallStackSize: 256,
		RegistrySize:  1024 * 8,
		SkipOpenLibs:  true,
	})
	sandboxLuaVM(L)
	return L
}
