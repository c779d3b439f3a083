package service

import (
	"context"
	"fmt"

	"github.com/damillora/cyrene/internal/apps"
	"github.com/damillora/cyrene/internal/transaction"
	"github.com/damillora/cyrene/internal/version"
)

// PlanUninstall plans removing app@version, or every version of app when
// no version is given. A linked version is unlinked and dropped from the
// lockfile first.
func (s *Service) PlanUninstall(_ context.Context, specs []string) (*Plan, error) {
	p := &Plan{}
	for _, spec := range specs {
		app, v := version.SplitSpec(spec)
		linked, err := s.linked(app)
		if err != nil {
			return nil, err
		}

		if v != "" {
			if !s.apps.IsInstalled(app, v) {
				return nil, fmt.Errorf("%w: %s@%s", apps.ErrVersionNotInstalled, app, v)
			}
			p.row(ActionUninstall, app, v, "")
			if linked == v {
				p.add(transaction.Unlink(app), transaction.LockfileClear(app))
			}
			p.add(transaction.Remove(app, v))
			continue
		}

		installed, err := s.apps.InstalledVersions(app)
		if err != nil {
			return nil, err
		}
		if len(installed) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrNotInstalled, app)
		}
		for _, iv := range installed {
			p.row(ActionUninstall, app, iv, "")
		}
		if linked != "" {
			p.add(transaction.Unlink(app), transaction.LockfileClear(app))
		}
		p.add(transaction.RemoveAll(app))
	}
	return p, nil
}
