// Package service turns cyrene commands into transaction plans and applies
// them.
//
// Every handler is side-effect free apart from reading state and refreshing
// the version cache. It returns a Plan that the caller can show the user
// before passing it to Apply.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/damillora/cyrene/internal/apps"
	"github.com/damillora/cyrene/internal/config"
	"github.com/damillora/cyrene/internal/lockfile"
	"github.com/damillora/cyrene/internal/transaction"
	"github.com/damillora/cyrene/internal/version"
)

var (
	// ErrNotInstalled means the app has no installed version at all.
	ErrNotInstalled = errors.New("app not installed")
	// ErrNoSuchApp means no plugin script exists for the app.
	ErrNoSuchApp = apps.ErrUnknownApp
)

// Config holds the dependencies of a Service.
type Config struct {
	Dirs     *config.Dirs
	Apps     *apps.Manager
	Resolver *version.Resolver
	Lockfile *lockfile.Manager
	Observer transaction.Observer
	Logger   zerolog.Logger
}

// Service implements the cyrene commands.
type Service struct {
	dirs     *config.Dirs
	apps     *apps.Manager
	resolver *version.Resolver
	lock     *lockfile.Manager
	observer transaction.Observer
	log      zerolog.Logger
}

// New creates a Service.
func New(cfg Config) *Service {
	return &Service{
		dirs:     cfg.Dirs,
		apps:     cfg.Apps,
		resolver: cfg.Resolver,
		lock:     cfg.Lockfile,
		observer: cfg.Observer,
		log:      cfg.Logger,
	}
}

// Apply runs a plan: its commands, then the lockfile switch, then the
// commands that depend on the switched lockfile. It returns one Result per
// executed transaction.
func (s *Service) Apply(ctx context.Context, p *Plan) ([]*transaction.Result, error) {
	var results []*transaction.Result

	if len(p.Commands) > 0 {
		res, err := s.execute(ctx, p.Commands)
		if res != nil {
			results = append(results, res)
		}
		if err != nil {
			return results, err
		}
	}

	if p.Switch != nil {
		var err error
		if p.Switch.Default {
			err = s.lock.UseDefault()
		} else {
			err = s.lock.UseLocal(p.Switch.Path)
		}
		if err != nil {
			return results, fmt.Errorf("switch lockfile: %w", err)
		}
	}

	if len(p.After) > 0 {
		res, err := s.execute(ctx, p.After)
		if res != nil {
			results = append(results, res)
		}
		if err != nil {
			return results, err
		}
	}
	return results, nil
}

func (s *Service) execute(ctx context.Context, cmds []transaction.Command) (*transaction.Result, error) {
	opts := []transaction.Option{transaction.WithLogger(s.log)}
	if s.observer != nil {
		opts = append(opts, transaction.WithObserver(s.observer))
	}
	txn := transaction.New(s.apps, opts...)
	txn.Add(cmds...)
	return txn.Execute(ctx)
}

// requireApp fails unless app has a plugin script.
func (s *Service) requireApp(app string) error {
	if err := config.ValidateName("app", app); err != nil {
		return err
	}
	if !s.apps.PackageExists(app) {
		return fmt.Errorf("%w: %s", ErrNoSuchApp, app)
	}
	return nil
}

// linked returns the lockfile version of app, or "" when it has none.
func (s *Service) linked(app string) (string, error) {
	v, ok, err := s.lock.FindInstalledVersion(app)
	if err != nil || !ok {
		return "", err
	}
	return v, nil
}

// bestInstalled returns the newest installed version of app matching req.
func (s *Service) bestInstalled(app string, req version.Requirement) (string, bool, error) {
	installed, err := s.apps.InstalledVersions(app)
	if err != nil {
		return "", false, err
	}
	if req.LiteralIn(installed) {
		return req.Raw, true, nil
	}
	for _, v := range installed {
		if matches(req, v) {
			return v, true, nil
		}
	}
	return "", false, nil
}

func matches(req version.Requirement, v string) bool {
	switch req.Kind {
	case version.Latest:
		return true
	case version.Exact:
		return req.Raw == v
	default:
		return req.Raw == v || req.Matches(version.Parse(v))
	}
}
