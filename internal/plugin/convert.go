package plugin

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"
)

func toList(L *lua.LState, values []string) *lua.LTable {
	t := L.CreateTable(len(values), 0)
	for _, v := range values {
		t.Append(lua.LString(v))
	}
	return t
}

func stringList(v lua.LValue) ([]string, error) {
	t, ok := v.(*lua.LTable)
	if !ok {
		return nil, fmt.Errorf("expected a list of strings, got %s", v.Type())
	}

	out := make([]string, 0, t.Len())
	for i := 1; i <= t.Len(); i++ {
		s, ok := t.RawGetInt(i).(lua.LString)
		if !ok {
			return nil, fmt.Errorf("entry %d is %s, not a string", i, t.RawGetInt(i).Type())
		}
		out = append(out, string(s))
	}
	return out, nil
}

func binaryList(v lua.LValue) ([]Binary, error) {
	t, ok := v.(*lua.LTable)
	if !ok {
		return nil, fmt.Errorf("expected a list of binaries, got %s", v.Type())
	}

	out := make([]Binary, 0, t.Len())
	for i := 1; i <= t.Len(); i++ {
		entry, ok := t.RawGetInt(i).(*lua.LTable)
		if !ok {
			return nil, fmt.Errorf("binary %d is not a table", i)
		}
		name, p := pair(entry, "name", "path")
		if name == "" || p == "" {
			return nil, fmt.Errorf("binary %d needs a name and a path", i)
		}
		out = append(out, Binary{Name: name, Path: p})
	}
	return out, nil
}
