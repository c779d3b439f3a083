package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/damillora/cyrene/internal/transaction"
	"github.com/damillora/cyrene/internal/version"
)

// PlanUpgrade plans moving each app to the newest version on its current
// release line. With no specs, every app in the active lockfile is
// upgraded. The version cache of each app is refreshed first.
func (s *Service) PlanUpgrade(ctx context.Context, specs []string) (*Plan, error) {
	if len(specs) == 0 {
		locked, err := s.lock.Versions()
		if err != nil {
			return nil, err
		}
		for app := range locked {
			specs = append(specs, app)
		}
		sort.Strings(specs)
	}

	p := &Plan{}
	for _, spec := range specs {
		app, raw := version.SplitSpec(spec)
		if err := s.requireApp(app); err != nil {
			return nil, err
		}
		if _, err := s.resolver.Refresh(ctx, app); err != nil {
			return nil, fmt.Errorf("refresh %s: %w", app, err)
		}

		linked, err := s.linked(app)
		if err != nil {
			return nil, err
		}
		current, err := s.currentVersion(app, raw, linked)
		if err != nil {
			return nil, err
		}

		target, err := s.resolver.LatestCompatible(ctx, app, current)
		switch {
		case errors.Is(err, version.ErrNotSemver):
			p.notice("%s@%s is not a semantic version and cannot be upgraded", app, current)
			continue
		case errors.Is(err, version.ErrNoMatchingVersion):
			p.notice("%s@%s is up to date", app, current)
			continue
		case err != nil:
			return nil, err
		}

		if version.Compare(version.Parse(target), version.Parse(current)) <= 0 {
			p.notice("%s@%s is up to date", app, current)
			continue
		}

		p.row(ActionUpgrade, app, current, target)
		p.add(upgradeCommands(app, current, target, current == linked)...)
		if s.apps.IsInstalled(app, target) {
			p.Commands = dropInstall(p.Commands, app, target)
		}
	}
	return p, nil
}

// currentVersion picks the version an upgrade starts from: the newest
// installed match of raw, else the linked version, else the newest
// installed version.
func (s *Service) currentVersion(app, raw, linked string) (string, error) {
	if raw != "" {
		v, ok, err := s.bestInstalled(app, version.ParseRequirement(raw))
		if err != nil {
			return "", err
		}
		if !ok {
			return "", fmt.Errorf("%w: no installed version of %s matches %s", ErrNotInstalled, app, raw)
		}
		return v, nil
	}
	if linked != "" {
		return linked, nil
	}
	v, ok, err := s.bestInstalled(app, version.Requirement{Kind: version.Latest})
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNotInstalled, app)
	}
	return v, nil
}

// upgradeCommands replaces from with to. A linked version has its links
// moved across and its lockfile entry rewritten.
func upgradeCommands(app, from, to string, isLinked bool) []transaction.Command {
	if !isLinked {
		return []transaction.Command{
			transaction.Install(app, to),
			transaction.Remove(app, from),
		}
	}
	return []transaction.Command{
		transaction.Install(app, to),
		transaction.Unlink(app),
		transaction.Link(app, to, true),
		transaction.LockfileUpdate(app, to),
		transaction.Remove(app, from),
	}
}

func dropInstall(cmds []transaction.Command, app, v string) []transaction.Command {
	out := cmds[:0]
	for _, c := range cmds {
		if c.Kind == transaction.KindInstall && c.App == app && c.Version == v {
			continue
		}
		out = append(out, c)
	}
	return out
}
