package service_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/ohler55/ojg/oj"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/damillora/cyrene/internal/apps"
	"github.com/damillora/cyrene/internal/cache"
	"github.com/damillora/cyrene/internal/config"
	"github.com/damillora/cyrene/internal/fetch"
	"github.com/damillora/cyrene/internal/lockfile"
	"github.com/damillora/cyrene/internal/logging"
	"github.com/damillora/cyrene/internal/plugin"
	"github.com/damillora/cyrene/internal/service"
	"github.com/damillora/cyrene/internal/testutil"
	"github.com/damillora/cyrene/internal/transaction"
	"github.com/damillora/cyrene/internal/upstream"
	"github.com/damillora/cyrene/internal/version"
)

const toolPlugin = `
local base = %q

function get_versions()
  return versions.from_url_jsonpath(base .. "/versions.json", "$[*].tag", { {strip_prefix = "v"} })
end

function install_app(env)
  sources.from_file(strings.fill(base .. "/download/${version}/tool", env), "bin/tool")
  modify.set_exec("bin/tool")
end

function binaries(env)
  return { {"tool", "bin/tool"}, {name = "tool-${version}", path = "bin/tool"} }
end
`

// upstreamServer publishes tool releases and counts version listings.
type upstreamServer struct {
	*httptest.Server
	listed atomic.Int32

	mu       sync.Mutex
	releases []string
}

func (u *upstreamServer) publish(v string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.releases = append(u.releases, v)
}

func (u *upstreamServer) published() []string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]string(nil), u.releases...)
}

func newUpstream(t *testing.T, releases ...string) *upstreamServer {
	t.Helper()
	u := &upstreamServer{releases: releases}
	u.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/versions.json":
			u.listed.Add(1)
			releases := u.published()
			tags := make([]any, len(releases))
			for i, rel := range releases {
				tags[i] = map[string]any{"tag": "v" + rel}
			}
			fmt.Fprint(w, oj.JSON(tags))
		case strings.HasPrefix(r.URL.Path, "/download/"):
			v := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/download/"), "/tool")
			for _, rel := range u.published() {
				if rel == v {
					fmt.Fprintf(w, "#!/bin/sh\necho tool %s\n", v)
					return
				}
			}
			http.NotFound(w, r)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(u.Close)
	return u
}

type env struct {
	dirs   *config.Dirs
	lock   *lockfile.Manager
	apps   *apps.Manager
	svc    *service.Service
	up     *upstreamServer
	events []transaction.Event
}

func newEnv(t *testing.T) *env {
	t.Helper()

	dirs := testutil.SetupTestEnv(t)
	up := newUpstream(t, "1.0.0", "1.1.0", "2.0.0")
	testutil.WritePlugin(t, dirs, "tool", fmt.Sprintf(toolPlugin, up.URL))

	client := fetch.NewClient(fetch.WithRetries(0))
	lock := lockfile.New(dirs.LockfilePath, logging.Nop())
	mgr, err := apps.NewManager(apps.Config{
		Dirs:     dirs,
		Lockfile: lock,
		Capabilities: plugin.Capabilities{
			Fetcher:    client,
			Discoverer: upstream.NewDiscoverer(client, upstream.WithGitHubToken("")),
		},
		SelfPath: filepath.Join(t.TempDir(), "cyrene"),
		Logger:   logging.Nop(),
	})
	require.NoError(t, err)
	t.Cleanup(mgr.Close)

	e := &env{dirs: dirs, lock: lock, apps: mgr, up: up}
	e.svc = service.New(service.Config{
		Dirs:     dirs,
		Apps:     mgr,
		Resolver: version.NewResolver(cache.New(dirs.VersionCachePath), mgr, logging.Nop()),
		Lockfile: lock,
		Observer: func(ev transaction.Event) { e.events = append(e.events, ev) },
		Logger:   logging.Nop(),
	})
	return e
}

// apply returns a function that takes a planner's results and applies the
// plan, so calls read e.apply(t)(e.svc.PlanInstall(...)).
func (e *env) apply(t *testing.T) func(*service.Plan, error) []*transaction.Result {
	return func(p *service.Plan, err error) []*transaction.Result {
		t.Helper()
		require.NoError(t, err)
		results, err := e.svc.Apply(context.Background(), p)
		require.NoError(t, err)
		return results
	}
}

// linkTarget returns the install-dir version a link in exe_dir points at,
// or "" when the link does not exist.
func (e *env) linkTarget(t *testing.T, name string) string {
	t.Helper()
	target, err := os.Readlink(e.dirs.LinkPath(name))
	if os.IsNotExist(err) {
		return ""
	}
	require.NoError(t, err)
	rel, err := filepath.Rel(e.dirs.InstallationRoot("tool"), target)
	require.NoError(t, err)
	return strings.SplitN(rel, string(filepath.Separator), 2)[0]
}

// assertLinkInvariant checks that tool's binaries are linked exactly when
// the active lockfile has an entry for it, and to that version.
func (e *env) assertLinkInvariant(t *testing.T) {
	t.Helper()
	v, ok, err := e.lock.FindInstalledVersion("tool")
	require.NoError(t, err)

	entries, err := os.ReadDir(e.dirs.ExeDir)
	require.NoError(t, err)

	if !ok {
		assert.Empty(t, entries, "no links without a lockfile entry")
		return
	}
	assert.True(t, e.apps.IsInstalled("tool", v), "linked version is installed")
	assert.Equal(t, v, e.linkTarget(t, "tool"))
	assert.Equal(t, v, e.linkTarget(t, "tool-"+v))
	for _, entry := range entries {
		assert.True(t, entry.Name() == "tool" || entry.Name() == "tool-"+v, "unexpected entry %s", entry.Name())
	}
}

func (e *env) writeProjectLockfile(t *testing.T, versions string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cyrene.toml")
	require.NoError(t, os.WriteFile(path, []byte("[versions]\n"+versions), 0o644))
	return path
}
