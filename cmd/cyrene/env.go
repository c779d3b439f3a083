package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/damillora/cyrene/internal/apps"
	"github.com/damillora/cyrene/internal/cache"
	"github.com/damillora/cyrene/internal/config"
	"github.com/damillora/cyrene/internal/fetch"
	"github.com/damillora/cyrene/internal/lockfile"
	"github.com/damillora/cyrene/internal/logging"
	"github.com/damillora/cyrene/internal/platform"
	"github.com/damillora/cyrene/internal/plugin"
	"github.com/damillora/cyrene/internal/service"
	"github.com/damillora/cyrene/internal/transaction"
	"github.com/damillora/cyrene/internal/ui"
	"github.com/damillora/cyrene/internal/upstream"
	"github.com/damillora/cyrene/internal/version"
)

// env is everything a command needs, wired from the user's config.
type env struct {
	ui   *ui.UI
	dirs *config.Dirs
	apps *apps.Manager
	svc  *service.Service
}

type envOptions struct {
	out       io.Writer
	err       io.Writer
	assumeYes bool
}

func newEnv(ctx context.Context, opts envOptions) (*env, error) {
	configDir := config.DefaultConfigDir()
	cfg, err := config.Load(filepath.Join(configDir, config.ConfigFileName))
	if err != nil {
		return nil, err
	}
	dirs, err := config.ResolveDirs(cfg, configDir)
	if err != nil {
		return nil, err
	}
	if err := dirs.Init(); err != nil {
		return nil, err
	}

	u := ui.New(ui.Options{Out: opts.out, Err: opts.err, AssumeYes: opts.assumeYes})

	info, err := platform.NewDetector().Detect(ctx)
	if err != nil {
		return nil, fmt.Errorf("detect platform: %w", err)
	}

	fetchOpts := []fetch.Option{fetch.WithLogger(logging.GetLogger("fetch"))}
	if p := u.Progress(); p != nil {
		fetchOpts = append(fetchOpts, fetch.WithProgress(p))
	}
	client := fetch.NewClient(fetchOpts...)

	lock := lockfile.New(dirs.LockfilePath, logging.GetLogger("lockfile"))
	mgr, err := apps.NewManager(apps.Config{
		Dirs:     dirs,
		Lockfile: lock,
		Capabilities: plugin.Capabilities{
			Fetcher:    client,
			Discoverer: upstream.NewDiscoverer(client, upstream.WithLogger(logging.GetLogger("upstream"))),
			Platform:   info,
			Logger:     logging.GetLogger("plugin"),
		},
		Logger: logging.GetLogger("apps"),
	})
	if err != nil {
		return nil, err
	}

	resolver := version.NewResolver(cache.New(dirs.VersionCachePath), mgr, logging.GetLogger("version"))
	svc := service.New(service.Config{
		Dirs:     dirs,
		Apps:     mgr,
		Resolver: resolver,
		Lockfile: lock,
		Observer: stepPrinter(u),
		Logger:   logging.GetLogger("transaction"),
	})

	return &env{ui: u, dirs: dirs, apps: mgr, svc: svc}, nil
}

// Close releases plugin interpreters.
func (e *env) Close() {
	e.apps.Close()
}

// stepPrinter reports each transaction step as it starts.
func stepPrinter(u *ui.UI) transaction.Observer {
	return func(ev transaction.Event) {
		if ev.State != transaction.StateInProgress {
			return
		}
		c := ev.Step.Command
		label := ev.Step.Phase.String()
		if ev.Step.Phase == transaction.PhaseFinish {
			label = c.Kind.String()
		}
		if c.Version != "" {
			u.Notice("%s %s@%s", label, c.App, c.Version)
			return
		}
		u.Notice("%s %s", label, c.App)
	}
}
