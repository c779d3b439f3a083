package service

import (
	"context"
	"fmt"

	"github.com/damillora/cyrene/internal/apps"
	"github.com/damillora/cyrene/internal/transaction"
	"github.com/damillora/cyrene/internal/version"
)

// PlanLink plans linking the newest installed version of app that matches
// raw and recording it in the lockfile. The links of a previously linked
// version are removed first.
func (s *Service) PlanLink(_ context.Context, app, raw string) (*Plan, error) {
	if err := s.requireApp(app); err != nil {
		return nil, err
	}
	v, ok, err := s.bestInstalled(app, version.ParseRequirement(raw))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s@%s", apps.ErrVersionNotInstalled, app, raw)
	}

	linked, err := s.linked(app)
	if err != nil {
		return nil, err
	}

	p := &Plan{}
	p.row(ActionLink, app, linked, v)
	if linked != "" {
		p.add(transaction.Unlink(app))
	}
	p.add(transaction.Link(app, v, true), transaction.LockfileUpdate(app, v))
	return p, nil
}

// PlanUnlink plans removing the links of app and its lockfile entry.
func (s *Service) PlanUnlink(_ context.Context, app string) (*Plan, error) {
	linked, err := s.linked(app)
	if err != nil {
		return nil, err
	}
	if linked == "" {
		return nil, fmt.Errorf("%w: %s", apps.ErrNotInLockfile, app)
	}

	p := &Plan{}
	p.row(ActionUnlink, app, linked, "")
	p.add(transaction.Unlink(app), transaction.LockfileClear(app))
	return p, nil
}
