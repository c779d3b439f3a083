package service

import (
	"context"
	"sort"

	"github.com/damillora/cyrene/internal/transaction"
)

// PlanLoad plans making the lockfile at path active, or the default
// lockfile when path is empty. Every entry of the target is checked
// against upstream first and the first unknown version fails the plan.
//
// Apps whose linked version changes or disappears are unlinked before the
// switch. Afterwards missing versions are installed and every entry of the
// target is linked.
func (s *Service) PlanLoad(ctx context.Context, path string) (*Plan, error) {
	var (
		target map[string]string
		err    error
		sw     *Switch
	)
	if path == "" {
		target, err = s.lock.LoadDefault(ctx, s.resolver)
		sw = &Switch{Default: true}
	} else {
		target, err = s.lock.LoadFile(ctx, path, s.resolver)
		sw = &Switch{Path: path}
	}
	if err != nil {
		return nil, err
	}

	current, err := s.lock.Versions()
	if err != nil {
		return nil, err
	}

	p := &Plan{Switch: sw}
	for _, app := range sortedKeys(current) {
		if target[app] != current[app] {
			p.row(ActionUnlink, app, current[app], "")
			p.add(transaction.Unlink(app))
		}
	}

	for _, app := range sortedKeys(target) {
		if err := s.requireApp(app); err != nil {
			return nil, err
		}
		v := target[app]
		if !s.apps.IsInstalled(app, v) {
			p.row(ActionInstall, app, "", v)
			p.After = append(p.After, transaction.Install(app, v))
		}
		if current[app] != v {
			p.row(ActionLink, app, "", v)
		}
		p.After = append(p.After, transaction.Link(app, v, true))
	}
	return p, nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
