package service_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/damillora/cyrene/internal/apps"
	"github.com/damillora/cyrene/internal/fetch"
	"github.com/damillora/cyrene/internal/lockfile"
	"github.com/damillora/cyrene/internal/service"
	"github.com/damillora/cyrene/internal/testutil"
	"github.com/damillora/cyrene/internal/transaction"
)

func kinds(cmds []transaction.Command) []transaction.Kind {
	out := make([]transaction.Kind, len(cmds))
	for i, c := range cmds {
		out[i] = c.Kind
	}
	return out
}

func TestInstall_Fresh(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	p, err := e.svc.PlanInstall(ctx, []string{"tool"})
	require.NoError(t, err)
	assert.Equal(t, []transaction.Kind{transaction.KindInstall, transaction.KindLink, transaction.KindLockfileUpdate}, kinds(p.Commands))
	assert.Equal(t, []service.Row{{Action: service.ActionInstall, App: "tool", To: "2.0.0"}}, p.Rows)

	results := e.apply(t)(p, nil)
	require.Len(t, results, 1)
	assert.Empty(t, results[0].Skipped())
	assert.NotEmpty(t, e.events)

	data, err := os.ReadFile(e.dirs.LinkPath("tool"))
	require.NoError(t, err)
	assert.Equal(t, "#!/bin/sh\necho tool 2.0.0\n", string(data))

	info, err := os.Stat(e.dirs.LinkPath("tool"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())

	e.assertLinkInvariant(t)
}

func TestInstall_KeepsForeignFileInExeDir(t *testing.T) {
	e := newEnv(t)
	foreign := e.dirs.LinkPath("tool")
	require.NoError(t, os.WriteFile(foreign, []byte("user's own tool"), 0o755))

	p, err := e.svc.PlanInstall(context.Background(), []string{"tool@1.0.0"})
	require.NoError(t, err)
	require.Equal(t, transaction.KindLink, p.Commands[1].Kind)
	assert.False(t, p.Commands[1].Overwrite)

	results := e.apply(t)(p, nil)
	require.Len(t, results, 1)
	assert.Equal(t, []string{foreign}, results[0].Skipped())

	info, err := os.Lstat(foreign)
	require.NoError(t, err)
	assert.True(t, info.Mode().IsRegular(), "user's file is not replaced")
	data, err := os.ReadFile(foreign)
	require.NoError(t, err)
	assert.Equal(t, "user's own tool", string(data))

	assert.Equal(t, "1.0.0", e.linkTarget(t, "tool-1.0.0"))
	v, ok, err := e.lock.FindInstalledVersion("tool")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "1.0.0", v)
}

func TestInstall_AlreadyInstalled(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.apply(t)(e.svc.PlanInstall(ctx, []string{"tool@2.0.0"}))

	p, err := e.svc.PlanInstall(ctx, []string{"tool"})
	require.NoError(t, err)
	assert.True(t, p.Empty())
	assert.Equal(t, []string{"tool@2.0.0 is already installed"}, p.Notices)
}

func TestInstall_SecondVersionStaysUnlinked(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.apply(t)(e.svc.PlanInstall(ctx, []string{"tool@2.0.0"}))

	p, err := e.svc.PlanInstall(ctx, []string{"tool@1.0.0"})
	require.NoError(t, err)
	assert.Equal(t, []transaction.Kind{transaction.KindInstall}, kinds(p.Commands))
	require.Len(t, p.Notices, 1)
	assert.Contains(t, p.Notices[0], "cyrene link tool 1.0.0")

	e.apply(t)(p, nil)
	assert.True(t, e.apps.IsInstalled("tool", "1.0.0"))
	assert.Equal(t, "2.0.0", e.linkTarget(t, "tool"))
	e.assertLinkInvariant(t)
}

func TestInstall_Range(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	p, err := e.svc.PlanInstall(ctx, []string{"tool@^1.0.0"})
	require.NoError(t, err)
	require.Len(t, p.Rows, 1)
	assert.Equal(t, "1.1.0", p.Rows[0].To)
	e.apply(t)(p, nil)
	e.assertLinkInvariant(t)
}

func TestInstall_RangeUpgradesLinkedVersion(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.apply(t)(e.svc.PlanInstall(ctx, []string{"tool@1.0.0"}))

	p, err := e.svc.PlanInstall(ctx, []string{"tool@~1.0"})
	require.NoError(t, err)
	assert.True(t, p.Empty(), "1.0.0 already satisfies ~1.0")

	p, err = e.svc.PlanInstall(ctx, []string{"tool@^1.0.0"})
	require.NoError(t, err)
	assert.Equal(t, []service.Row{{Action: service.ActionUpgrade, App: "tool", From: "1.0.0", To: "1.1.0"}}, p.Rows)

	e.apply(t)(p, nil)
	assert.False(t, e.apps.IsInstalled("tool", "1.0.0"))
	assert.Equal(t, "1.1.0", e.linkTarget(t, "tool"))
	e.assertLinkInvariant(t)
}

func TestInstall_UnknownApp(t *testing.T) {
	e := newEnv(t)
	_, err := e.svc.PlanInstall(context.Background(), []string{"nope"})
	assert.ErrorIs(t, err, service.ErrNoSuchApp)
}

func TestInstall_DownloadFailureLeavesNothing(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	p, err := e.svc.PlanInstall(ctx, []string{"tool@9.9.9"})
	require.NoError(t, err)

	_, err = e.svc.Apply(ctx, p)
	var stepErr *transaction.StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, transaction.PhaseInstall, stepErr.Step.Phase)

	var fetchErr *fetch.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, 404, fetchErr.StatusCode)
	assert.NoDirExists(t, e.dirs.InstallationRoot("tool"))
	e.assertLinkInvariant(t)
}

func TestLinkUnlink(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.apply(t)(e.svc.PlanInstall(ctx, []string{"tool@2.0.0"}))
	e.apply(t)(e.svc.PlanInstall(ctx, []string{"tool@1.0.0"}))

	p, err := e.svc.PlanLink(ctx, "tool", "1.0.0")
	require.NoError(t, err)
	assert.Equal(t, []transaction.Kind{transaction.KindUnlink, transaction.KindLink, transaction.KindLockfileUpdate}, kinds(p.Commands))
	e.apply(t)(p, nil)

	assert.Equal(t, "1.0.0", e.linkTarget(t, "tool"))
	_, err = os.Lstat(e.dirs.LinkPath("tool-2.0.0"))
	assert.True(t, os.IsNotExist(err), "links of the old version are gone")
	e.assertLinkInvariant(t)

	e.apply(t)(e.svc.PlanUnlink(ctx, "tool"))
	e.assertLinkInvariant(t)
	assert.Equal(t, "", e.linkTarget(t, "tool"))

	_, err = e.svc.PlanUnlink(ctx, "tool")
	assert.ErrorIs(t, err, apps.ErrNotInLockfile)

	_, err = e.svc.PlanLink(ctx, "tool", "3.0.0")
	assert.ErrorIs(t, err, apps.ErrVersionNotInstalled)
}

func TestLink_LiteralVersionBeatsRange(t *testing.T) {
	e := newEnv(t)
	testutil.FakeInstall(t, e.dirs, "tool", "22.1.0", map[string]string{"bin/tool": "#!/bin/sh\n"})
	testutil.FakeInstall(t, e.dirs, "tool", "22", map[string]string{"bin/tool": "#!/bin/sh\n"})

	p, err := e.svc.PlanLink(context.Background(), "tool", "22")
	require.NoError(t, err)
	require.Equal(t, transaction.KindLink, p.Commands[0].Kind)
	assert.Equal(t, "22", p.Commands[0].Version)

	p, err = e.svc.PlanLink(context.Background(), "tool", "^22.0")
	require.NoError(t, err)
	assert.Equal(t, "22.1.0", p.Commands[0].Version)
}

func TestUpgrade(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.apply(t)(e.svc.PlanInstall(ctx, []string{"tool@1.0.0"}))

	p, err := e.svc.PlanUpgrade(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, []service.Row{{Action: service.ActionUpgrade, App: "tool", From: "1.0.0", To: "1.1.0"}}, p.Rows)
	e.apply(t)(p, nil)

	assert.False(t, e.apps.IsInstalled("tool", "1.0.0"))
	v, ok, err := e.lock.FindInstalledVersion("tool")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "1.1.0", v)
	e.assertLinkInvariant(t)

	p, err = e.svc.PlanUpgrade(ctx, []string{"tool"})
	require.NoError(t, err)
	assert.True(t, p.Empty())
	assert.Equal(t, []string{"tool@1.1.0 is up to date"}, p.Notices)
}

func TestUpgrade_RefreshesCache(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.apply(t)(e.svc.PlanInstall(ctx, []string{"tool@2.0.0"}))

	e.up.publish("2.1.0")
	p, err := e.svc.PlanUpgrade(ctx, []string{"tool"})
	require.NoError(t, err)
	require.Len(t, p.Rows, 1)
	assert.Equal(t, "2.1.0", p.Rows[0].To)
}

func TestUpgrade_NotInstalled(t *testing.T) {
	e := newEnv(t)
	_, err := e.svc.PlanUpgrade(context.Background(), []string{"tool"})
	assert.ErrorIs(t, err, service.ErrNotInstalled)
}

func TestUninstall(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.apply(t)(e.svc.PlanInstall(ctx, []string{"tool@2.0.0"}))
	e.apply(t)(e.svc.PlanInstall(ctx, []string{"tool@1.0.0"}))

	p, err := e.svc.PlanUninstall(ctx, []string{"tool@1.0.0"})
	require.NoError(t, err)
	assert.Equal(t, []transaction.Kind{transaction.KindRemove}, kinds(p.Commands), "unlinked version is only removed")
	e.apply(t)(p, nil)
	e.assertLinkInvariant(t)

	p, err = e.svc.PlanUninstall(ctx, []string{"tool@2.0.0"})
	require.NoError(t, err)
	assert.Equal(t, []transaction.Kind{transaction.KindUnlink, transaction.KindLockfileUpdate, transaction.KindRemove}, kinds(p.Commands))
	e.apply(t)(p, nil)
	e.assertLinkInvariant(t)
	assert.NoDirExists(t, e.dirs.InstallationRoot("tool"))

	_, err = e.svc.PlanUninstall(ctx, []string{"tool@2.0.0"})
	assert.ErrorIs(t, err, apps.ErrVersionNotInstalled)
	_, err = e.svc.PlanUninstall(ctx, []string{"tool"})
	assert.ErrorIs(t, err, service.ErrNotInstalled)
}

func TestUninstall_All(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.apply(t)(e.svc.PlanInstall(ctx, []string{"tool@2.0.0"}))
	e.apply(t)(e.svc.PlanInstall(ctx, []string{"tool@1.0.0"}))

	p, err := e.svc.PlanUninstall(ctx, []string{"tool"})
	require.NoError(t, err)
	assert.Len(t, p.Rows, 2)
	assert.Equal(t, []transaction.Kind{transaction.KindUnlink, transaction.KindLockfileUpdate, transaction.KindRemoveAll}, kinds(p.Commands))

	e.apply(t)(p, nil)
	e.assertLinkInvariant(t)
	assert.NoDirExists(t, e.dirs.InstallationRoot("tool"))
}

func TestLoad_ProjectAndBack(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.apply(t)(e.svc.PlanInstall(ctx, []string{"tool@2.0.0"}))

	project := e.writeProjectLockfile(t, "tool = \"1.0.0\"\n")
	p, err := e.svc.PlanLoad(ctx, project)
	require.NoError(t, err)
	assert.Equal(t, []transaction.Kind{transaction.KindUnlink}, kinds(p.Commands))
	assert.Equal(t, []transaction.Kind{transaction.KindInstall, transaction.KindLink}, kinds(p.After))
	require.NotNil(t, p.Switch)

	results := e.apply(t)(p, nil)
	assert.Len(t, results, 2)

	active, err := e.lock.ActivePath()
	require.NoError(t, err)
	want, err := filepath.EvalSymlinks(project)
	require.NoError(t, err)
	assert.Equal(t, want, active)
	assert.Equal(t, "1.0.0", e.linkTarget(t, "tool"))
	e.assertLinkInvariant(t)

	def, err := e.lock.ReadDefault()
	require.NoError(t, err)
	assert.Equal(t, "2.0.0", def.Versions["tool"], "default lockfile is untouched")

	// Back to the default lockfile. 2.0.0 is still installed.
	p, err = e.svc.PlanLoad(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []transaction.Kind{transaction.KindLink}, kinds(p.After))
	e.apply(t)(p, nil)

	active, err = e.lock.ActivePath()
	require.NoError(t, err)
	assert.Equal(t, e.dirs.LockfilePath, active)
	assert.Equal(t, "2.0.0", e.linkTarget(t, "tool"))
	e.assertLinkInvariant(t)
}

func TestLoad_UnknownVersionChangesNothing(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.apply(t)(e.svc.PlanInstall(ctx, []string{"tool@2.0.0"}))

	project := e.writeProjectLockfile(t, "tool = \"9.9.9\"\n")
	_, err := e.svc.PlanLoad(ctx, project)
	require.ErrorIs(t, err, lockfile.ErrUnknownVersion)

	active, err := e.lock.ActivePath()
	require.NoError(t, err)
	assert.Equal(t, e.dirs.LockfilePath, active)
	e.assertLinkInvariant(t)
}

func TestList(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.apply(t)(e.svc.PlanInstall(ctx, []string{"tool@2.0.0"}))
	e.apply(t)(e.svc.PlanInstall(ctx, []string{"tool@1.0.0"}))

	entries, err := e.svc.List()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, service.Entry{App: "tool", Version: "2.0.0", Path: e.dirs.InstallationPath("tool", "2.0.0"), Linked: true}, entries[0])
	assert.False(t, entries[1].Linked)
}

func TestVersionsAndRefresh(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	infos, err := e.svc.Versions(ctx, "tool")
	require.NoError(t, err)
	require.Len(t, infos, 3)
	assert.Equal(t, "2.0.0", infos[0].Version)
	assert.False(t, infos[0].Installed)
	assert.EqualValues(t, 1, e.up.listed.Load())

	_, err = e.svc.Versions(ctx, "tool")
	require.NoError(t, err)
	assert.EqualValues(t, 1, e.up.listed.Load(), "second listing is served from the cache")

	e.up.publish("3.0.0")
	refreshed, err := e.svc.Refresh(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, []service.Refreshed{{App: "tool", Count: 4}}, refreshed)

	infos, err = e.svc.Versions(ctx, "tool")
	require.NoError(t, err)
	assert.Equal(t, "3.0.0", infos[0].Version)
}
