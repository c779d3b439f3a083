package plugin

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	lua "github.com/yuin/gopher-lua"
	"github.com/yuin/gopher-lua/parse"

	"github.com/damillora/cyrene/internal/fetch"
	"github.com/damillora/cyrene/internal/platform"
	"github.com/damillora/cyrene/internal/upstream"
	"github.com/damillora/cyrene/internal/version"
)

// Entry point names.
const (
	EntryGetVersions = "get_versions"
	EntryInstall     = "install_app"
	EntryPostInstall = "post_install"
	EntryBinaries    = "binaries"
)

// Fetcher downloads and unpacks artifacts. *fetch.Client satisfies it.
type Fetcher interface {
	Unpack(ctx context.Context, kind fetch.ArchiveKind, url, dest string) error
}

// Discoverer lists upstream versions. *upstream.Discoverer satisfies it.
type Discoverer interface {
	Discover(ctx context.Context, q upstream.Query) ([]string, error)
}

// Capabilities are the host services a script can reach.
type Capabilities struct {
	Fetcher    Fetcher
	Discoverer Discoverer
	Platform   *platform.Info
	Logger     zerolog.Logger
}

// Binary maps an exposed command name to a path inside the install directory.
type Binary struct {
	Name string
	Path string
}

// Host runs one app's script. Calls are serialized.
type Host struct {
	app  string
	path string
	caps Capabilities
	log  zerolog.Logger

	mu    sync.Mutex
	L     *lua.LState
	scope string // install dir of the running step, "" outside one
	fault error  // Go error behind the last raised Lua error
}

// Load reads the script at path and prepares a Host for app.
func Load(ctx context.Context, app, path string, caps Capabilities) (*Host, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	defer f.Close()
	return load(ctx, app, path, f, caps)
}

// LoadString prepares a Host from source held in memory.
func LoadString(ctx context.Context, app, source string, caps Capabilities) (*Host, error) {
	return load(ctx, app, app+".lua", strings.NewReader(source), caps)
}

func load(ctx context.Context, app, path string, r io.Reader, caps Capabilities) (*Host, error) {
	chunk, err := parse.Parse(r, path)
	if err != nil {
		le := &LoadError{Path: path, Err: err}
		var perr *parse.Error
		if errors.As(err, &perr) {
			le.Line, le.Column = perr.Pos.Line, perr.Pos.Column
		}
		return nil, le
	}
	proto, err := lua.Compile(chunk, path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	h := &Host{
		app:  app,
		path: path,
		caps: caps,
		log:  caps.Logger.With().Str("plugin", app).Logger(),
		L:    newSandbox(),
	}
	h.install()

	h.L.SetContext(ctx)
	defer h.L.RemoveContext()

	h.L.Push(h.L.NewFunctionFromProto(proto))
	if err := h.L.PCall(0, lua.MultRet, nil); err != nil {
		h.L.Close()
		le := &LoadError{Path: path, Err: err}
		if fault := h.faultFor(err); fault != nil {
			le.Err = fault
		}
		return nil, le
	}
	h.L.SetTop(0)

	h.log.Debug().Str("path", path).Msg("loaded plugin")
	return h, nil
}

// App returns the application name the host was loaded for.
func (h *Host) App() string { return h.app }

// Close releases the interpreter.
func (h *Host) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.L.Close()
}

// GetVersions calls get_versions and returns the result newest first.
func (h *Host) GetVersions(ctx context.Context) ([]string, error) {
	ret, err := h.call(ctx, EntryGetVersions, "", nil)
	if err != nil {
		return nil, err
	}
	raw, err := stringList(ret)
	if err != nil {
		return nil, h.badReturn(EntryGetVersions, err)
	}
	return version.SortDescending(raw), nil
}

// Install calls install_app with dir as the install scope.
func (h *Host) Install(ctx context.Context, v, dir string) error {
	_, err := h.call(ctx, EntryInstall, dir, h.env(v))
	return err
}

// PostInstall calls post_install with dir as the install scope.
func (h *Host) PostInstall(ctx context.Context, v, dir string) error {
	_, err := h.call(ctx, EntryPostInstall, dir, h.env(v))
	return err
}

// Binaries calls binaries and fills ${version} in every name and path.
func (h *Host) Binaries(ctx context.Context, v string) ([]Binary, error) {
	ret, err := h.call(ctx, EntryBinaries, "", h.env(v))
	if err != nil {
		return nil, err
	}
	bins, err := binaryList(ret)
	if err != nil {
		return nil, h.badReturn(EntryBinaries, err)
	}
	for i := range bins {
		bins[i].Name = FillVersion(bins[i].Name, v)
		bins[i].Path = FillVersion(bins[i].Path, v)
	}
	return bins, nil
}

// env returns a builder for the read-only table passed to entry points.
func (h *Host) env(v string) func(L *lua.LState) lua.LValue {
	return func(L *lua.LState) lua.LValue {
		t := L.NewTable()
		L.SetField(t, "version", lua.LString(v))
		return readOnly(L, "env", t)
	}
}

func (h *Host) call(ctx context.Context, entry, scope string, arg func(*lua.LState) lua.LValue) (lua.LValue, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	fn := h.L.GetGlobal(entry)
	if fn.Type() != lua.LTFunction {
		return nil, fmt.Errorf("%w: %s in %s", ErrMissingEntryPoint, entry, h.path)
	}

	h.L.SetContext(ctx)
	defer h.L.RemoveContext()
	h.scope, h.fault = scope, nil
	defer func() { h.scope, h.fault = "", nil }()

	var args []lua.LValue
	if arg != nil {
		args = append(args, arg(h.L))
	}

	h.log.Debug().Str("entry", entry).Str("scope", scope).Msg("calling plugin")
	if err := h.L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, args...); err != nil {
		if fault := h.faultFor(err); fault != nil {
			return nil, fault
		}
		return nil, &CallError{App: h.app, Entry: entry, Err: err}
	}

	ret := h.L.Get(-1)
	h.L.Pop(1)
	return ret, nil
}

// raise records err and raises it as a Lua error. When the error reaches
// the host uncaught, call returns err itself rather than its text.
func (h *Host) raise(L *lua.LState, err error) int {
	h.fault = err
	L.RaiseError("%s", err.Error())
	return 0
}

// faultFor returns the recorded Go error if luaErr is the error it raised.
// A script may catch a capability error with pcall and fail later for
// another reason.
func (h *Host) faultFor(luaErr error) error {
	if h.fault != nil && strings.Contains(luaErr.Error(), h.fault.Error()) {
		return h.fault
	}
	return nil
}

func (h *Host) badReturn(entry string, err error) error {
	return &CallError{App: h.app, Entry: entry, Err: fmt.Errorf("%w: %v", ErrBadReturn, err)}
}
