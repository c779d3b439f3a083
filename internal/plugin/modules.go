package plugin

import (
	"fmt"
	"path"
	"strings"

	securejoin "github.com/cyphar/filepath-securejoin"
	lua "github.com/yuin/gopher-lua"

	"github.com/damillora/cyrene/internal/fetch"
	"github.com/damillora/cyrene/internal/upstream"
)

// install binds the host modules into the sandbox.
func (h *Host) install() {
	L := h.L

	L.SetGlobal("print", L.NewFunction(h.print))

	module(L, "sources", map[string]lua.LGFunction{
		"from_tar_gz": h.source(fetch.TarGz),
		"from_tar_xz": h.source(fetch.TarXz),
		"from_zip":    h.source(fetch.Zip),
		"from_file":   h.source(fetch.File),
	})

	module(L, "versions", map[string]lua.LGFunction{
		"from_github":       h.fromGitHub,
		"from_url_jsonpath": h.fromJSONPath,
	})

	module(L, "strings", map[string]lua.LGFunction{
		"strip_prefix": stripPrefix,
		"fill":         fill,
	})

	module(L, "modify", map[string]lua.LGFunction{
		"set_exec": h.setExec,
	})

	h.installPlatform()
}

// scoped resolves p inside the current install directory.
func (h *Host) scoped(p string) (string, error) {
	if h.scope == "" {
		return "", ErrNoInstallScope
	}
	return securejoin.SecureJoin(h.scope, p)
}

func (h *Host) print(L *lua.LState) int {
	parts := make([]string, 0, L.GetTop())
	for i := 1; i <= L.GetTop(); i++ {
		parts = append(parts, L.ToStringMeta(L.Get(i)).String())
	}
	h.log.Debug().Msg(strings.Join(parts, "\t"))
	return 0
}

// source returns sources.from_*(url [, dest]). Archives default to the
// install directory itself. A plain file defaults to the last URL segment.
func (h *Host) source(kind fetch.ArchiveKind) lua.LGFunction {
	return func(L *lua.LState) int {
		url := L.CheckString(1)
		def := "."
		if kind == fetch.File {
			def = path.Base(strings.SplitN(url, "?", 2)[0])
		}
		dest, err := h.scoped(L.OptString(2, def))
		if err != nil {
			return h.raise(L, err)
		}

		if h.caps.Fetcher == nil {
			return h.raise(L, fmt.Errorf("sources.from_%s: no fetcher configured", strings.ReplaceAll(kind.String(), ".", "_")))
		}
		h.log.Debug().Str("kind", kind.String()).Str("url", url).Str("dest", dest).Msg("fetching source")
		if err := h.caps.Fetcher.Unpack(L.Context(), kind, url, dest); err != nil {
			return h.raise(L, err)
		}
		return 0
	}
}

func (h *Host) fromGitHub(L *lua.LState) int {
	steps, err := parseSteps(L.OptTable(2, nil))
	if err != nil {
		L.ArgError(2, err.Error())
		return 0
	}
	return h.discover(L, upstream.Query{Kind: upstream.GitHub, Repo: L.CheckString(1), Steps: steps})
}

func (h *Host) fromJSONPath(L *lua.LState) int {
	steps, err := parseSteps(L.OptTable(3, nil))
	if err != nil {
		L.ArgError(3, err.Error())
		return 0
	}
	return h.discover(L, upstream.Query{
		Kind:  upstream.JSONPath,
		URL:   L.CheckString(1),
		Path:  L.CheckString(2),
		Steps: steps,
	})
}

func (h *Host) discover(L *lua.LState, q upstream.Query) int {
	if h.caps.Discoverer == nil {
		return h.raise(L, fmt.Errorf("versions: no discoverer configured"))
	}
	found, err := h.caps.Discoverer.Discover(L.Context(), q)
	if err != nil {
		return h.raise(L, err)
	}
	L.Push(toList(L, found))
	return 1
}

func (h *Host) setExec(L *lua.LState) int {
	target, err := h.scoped(L.CheckString(1))
	if err != nil {
		return h.raise(L, err)
	}
	if err := fetch.SetExecutable(target); err != nil {
		return h.raise(L, err)
	}
	return 0
}

func stripPrefix(L *lua.LState) int {
	L.Push(lua.LString(strings.TrimPrefix(L.CheckString(1), L.CheckString(2))))
	return 1
}

// fill(template, values) substitutes ${key} with values[key]. values may be
// the env argument of an entry point.
func fill(L *lua.LState) int {
	tmpl := L.CheckString(1)
	values := L.CheckTable(2)
	L.Push(lua.LString(Fill(tmpl, func(key string) (string, bool) {
		v := L.GetField(values, key)
		if v == lua.LNil {
			return "", false
		}
		return L.ToStringMeta(v).String(), true
	})))
	return 1
}

// parseSteps reads { {strip_prefix = "v"}, {replace = {"a", "b"}} }.
func parseSteps(t *lua.LTable) ([]upstream.Step, error) {
	if t == nil {
		return nil, nil
	}

	var steps []upstream.Step
	for i := 1; i <= t.Len(); i++ {
		entry, ok := t.RawGetInt(i).(*lua.LTable)
		if !ok {
			return nil, fmt.Errorf("step %d is not a table", i)
		}

		if p, ok := entry.RawGetString("strip_prefix").(lua.LString); ok {
			steps = append(steps, upstream.Step{Kind: upstream.StripPrefix, Prefix: string(p)})
			continue
		}
		if r, ok := entry.RawGetString("replace").(*lua.LTable); ok {
			from, to := pair(r, "from", "to")
			steps = append(steps, upstream.Step{Kind: upstream.Replace, From: from, To: to})
			continue
		}
		return nil, fmt.Errorf("step %d: expected strip_prefix or replace", i)
	}
	return steps, nil
}

// pair reads a two-element table given either as {a, b} or {k1 = a, k2 = b}.
func pair(t *lua.LTable, k1, k2 string) (string, string) {
	a, b := t.RawGetInt(1), t.RawGetInt(2)
	if a == lua.LNil && b == lua.LNil {
		a, b = t.RawGetString(k1), t.RawGetString(k2)
	}
	return luaString(a), luaString(b)
}

func luaString(v lua.LValue) string {
	switch v := v.(type) {
	case lua.LString:
		return string(v)
	case lua.LNumber:
		return v.String()
	}
	return ""
}
