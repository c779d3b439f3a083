package service

import (
	"context"

	"github.com/damillora/cyrene/internal/transaction"
	"github.com/damillora/cyrene/internal/version"
)

// PlanInstall plans installing each app[@requirement] spec.
//
// An app with no lockfile entry is installed, linked and recorded. An app
// that already has a linked version is only installed; switching to the
// new version is left to an explicit link.
func (s *Service) PlanInstall(ctx context.Context, specs []string) (*Plan, error) {
	p := &Plan{}
	seen := map[string]bool{}

	for _, spec := range specs {
		app, raw := version.SplitSpec(spec)
		if err := s.requireApp(app); err != nil {
			return nil, err
		}
		req := version.ParseRequirement(raw)

		target, err := s.resolver.Resolve(ctx, app, req)
		if err != nil {
			return nil, err
		}
		key := app + "@" + target
		if seen[key] {
			continue
		}
		seen[key] = true

		if s.apps.IsInstalled(app, target) {
			p.notice("%s@%s is already installed", app, target)
			continue
		}

		linked, err := s.linked(app)
		if err != nil {
			return nil, err
		}

		if req.Kind == version.Range && target != req.Raw {
			current, ok, err := s.bestInstalled(app, req)
			if err != nil {
				return nil, err
			}
			if ok && current == linked {
				// Upgrade the linked version within the range.
				p.row(ActionUpgrade, app, current, target)
				p.add(upgradeCommands(app, current, target, true)...)
				continue
			}
		}

		p.row(ActionInstall, app, "", target)
		if linked == "" {
			// Files already in exe_dir are kept; the skipped links are
			// reported so the user can run an explicit link.
			p.add(
				transaction.Install(app, target),
				transaction.Link(app, target, false),
				transaction.LockfileUpdate(app, target),
			)
			continue
		}
		p.add(transaction.Install(app, target))
		p.notice("%s@%s is linked; run `cyrene link %s %s` to switch", app, linked, app, target)
	}
	return p, nil
}
