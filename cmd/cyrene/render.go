package main

import (
	"context"
	"fmt"

	"github.com/damillora/cyrene/internal/service"
)

// run shows a plan, asks for confirmation and applies it.
func (e *env) run(ctx context.Context, p *service.Plan) error {
	for _, n := range p.Notices {
		e.ui.Notice("%s", n)
	}
	if p.Empty() {
		return nil
	}

	for _, r := range p.Rows {
		e.ui.Println("  " + e.row(r))
	}
	if err := e.ui.Confirm("Proceed?"); err != nil {
		return err
	}

	results, err := e.svc.Apply(ctx, p)
	for _, res := range results {
		for _, l := range res.Links {
			if len(l.Skipped) == 0 {
				continue
			}
			for _, dest := range l.Skipped {
				e.ui.Warn("%s already exists and was not replaced", e.ui.Path(dest))
			}
			e.ui.Warn("run `cyrene link %s %s` to replace it with %s@%s", l.App, l.Version, l.App, l.Version)
		}
	}
	return err
}

func (e *env) row(r service.Row) string {
	app := e.ui.App(r.App)
	switch {
	case r.From != "" && r.To != "":
		return fmt.Sprintf("%-9s %s %s -> %s", r.Action, app, e.ui.Version(r.From), e.ui.Version(r.To))
	case r.To != "":
		return fmt.Sprintf("%-9s %s %s", r.Action, app, e.ui.Version(r.To))
	case r.From != "":
		return fmt.Sprintf("%-9s %s %s", r.Action, app, e.ui.Version(r.From))
	}
	return fmt.Sprintf("%-9s %s", r.Action, app)
}
