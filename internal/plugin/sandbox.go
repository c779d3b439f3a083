package plugin

import (
	lua "github.com/yuin/gopher-lua"
)

// removedGlobals are stripped after the base library is opened. They load
// code from disk or strings, or expose interpreter internals.
var removedGlobals = []string{
	"os", "io", "debug", "package", "module", "require",
	"dofile", "loadfile", "load", "loadstring",
	"collectgarbage", "_printregs",
}

// newSandbox returns an LState with only the pure libraries available.
func newSandbox() *lua.LState {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})

	for _, lib := range []struct {
		name string
		open lua.LGFunction
	}{
		{lua.LoadLibName, lua.OpenPackage},
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		L.Push(L.NewFunction(lib.open))
		L.Push(lua.LString(lib.name))
		L.Call(1, 0)
	}

	for _, name := range removedGlobals {
		L.SetGlobal(name, lua.LNil)
	}
	return L
}

// readOnly wraps table in a proxy whose writes raise an error.
func readOnly(L *lua.LState, name string, table *lua.LTable) *lua.LTable {
	mt := L.NewTable()
	L.SetField(mt, "__index", table)
	L.SetField(mt, "__newindex", L.NewFunction(func(L *lua.LState) int {
		L.RaiseError("%s is read-only", name)
		return 0
	}))
	L.SetField(mt, "__metatable", lua.LString("protected"))

	proxy := L.NewTable()
	L.SetMetatable(proxy, mt)
	return proxy
}

// module registers funcs as a read-only global table.
func module(L *lua.LState, name string, funcs map[string]lua.LGFunction) {
	L.SetGlobal(name, readOnly(L, name, L.SetFuncs(L.NewTable(), funcs)))
}
