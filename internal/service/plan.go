package service

import (
	"fmt"

	"github.com/damillora/cyrene/internal/transaction"
)

// Action labels a row of a plan.
type Action string

const (
	ActionInstall   Action = "install"
	ActionUpgrade   Action = "upgrade"
	ActionUninstall Action = "uninstall"
	ActionLink      Action = "link"
	ActionUnlink    Action = "unlink"
)

// Row is one line of a plan shown to the user.
type Row struct {
	Action Action
	App    string
	From   string
	To     string
}

func (r Row) String() string {
	switch {
	case r.From != "" && r.To != "":
		return fmt.Sprintf("%s %s %s -> %s", r.Action, r.App, r.From, r.To)
	case r.To != "":
		return fmt.Sprintf("%s %s@%s", r.Action, r.App, r.To)
	case r.From != "":
		return fmt.Sprintf("%s %s@%s", r.Action, r.App, r.From)
	}
	return fmt.Sprintf("%s %s", r.Action, r.App)
}

// Switch changes which lockfile is active.
type Switch struct {
	Path    string // project lockfile, when Default is false
	Default bool
}

// Plan is the work a command will do.
type Plan struct {
	Rows     []Row
	Notices  []string
	Commands []transaction.Command
	Switch   *Switch
	After    []transaction.Command // run once Switch is applied
}

// Empty reports whether applying the plan would do nothing.
func (p *Plan) Empty() bool {
	return len(p.Commands) == 0 && p.Switch == nil && len(p.After) == 0
}

func (p *Plan) row(action Action, app, from, to string) {
	p.Rows = append(p.Rows, Row{Action: action, App: app, From: from, To: to})
}

func (p *Plan) notice(format string, args ...any) {
	p.Notices = append(p.Notices, fmt.Sprintf(format, args...))
}

func (p *Plan) add(cmds ...transaction.Command) {
	p.Commands = append(p.Commands, cmds...)
}
