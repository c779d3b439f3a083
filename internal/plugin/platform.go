package plugin

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/damillora/cyrene/internal/platform"
)

// installPlatform exposes the detected platform as a read-only table:
//
//	platform.os, platform.arch, platform.key          -- "linux", "amd64", "linux_amd64"
//	platform.arch_as("gnu" | "node" | "go")           -- "x86_64", "x64", "amd64"
//	platform.pick{ linux_amd64 = "...", darwin = "..." }
//
// pick looks up "<os>_<arch>" first, then "<os>", and returns nil when
// neither is present.
func (h *Host) installPlatform() {
	L := h.L
	info := h.caps.Platform
	if info == nil {
		info = &platform.Info{}
	}

	t := L.NewTable()
	L.SetField(t, "os", lua.LString(info.OS))
	L.SetField(t, "arch", lua.LString(info.Arch))
	L.SetField(t, "arch_raw", lua.LString(info.ArchRaw))
	L.SetField(t, "key", lua.LString(info.Key()))
	L.SetField(t, "is_linux", lua.LBool(info.IsLinux()))
	L.SetField(t, "is_macos", lua.LBool(info.IsMacOS()))
	L.SetField(t, "is_windows", lua.LBool(info.IsWindows()))
	L.SetField(t, "is_amd64", lua.LBool(info.IsAMD64()))
	L.SetField(t, "is_arm64", lua.LBool(info.IsARM64()))
	L.SetField(t, "is_musl", lua.LBool(info.IsMusl()))

	if info.IsLinux() && info.Distro != "" {
		distro := L.NewTable()
		L.SetField(distro, "id", lua.LString(info.Distro))
		L.SetField(distro, "family", lua.LString(info.Family))
		L.SetField(distro, "version", lua.LString(info.Version))
		L.SetField(t, "distro", readOnly(L, "platform.distro", distro))
	}

	L.SetField(t, "arch_as", L.NewFunction(func(L *lua.LState) int {
		var style platform.ArchStyle
		switch s := L.CheckString(1); s {
		case "go":
			style = platform.ArchGo
		case "gnu":
			style = platform.ArchGNU
		case "node":
			style = platform.ArchNode
		default:
			L.ArgError(1, "unknown arch style "+s)
			return 0
		}
		L.Push(lua.LString(info.ArchAs(style)))
		return 1
	}))

	L.SetField(t, "pick", L.NewFunction(func(L *lua.LState) int {
		choices := L.CheckTable(1)
		v := choices.RawGetString(info.Key())
		if v == lua.LNil {
			v = choices.RawGetString(info.OS)
		}
		L.Push(v)
		return 1
	}))

	L.SetGlobal("platform", readOnly(L, "platform", t))
}
