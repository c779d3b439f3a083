package transaction

import "fmt"

// Kind is the closed set of command types.
type Kind int

const (
	KindInstall Kind = iota
	KindRemove
	KindRemoveAll
	KindLockfileUpdate
	KindLink
	KindUnlink
)

func (k Kind) String() string {
	switch k {
	case KindInstall:
		return "install"
	case KindRemove:
		return "remove"
	case KindRemoveAll:
		return "remove-all"
	case KindLockfileUpdate:
		return "lockfile-update"
	case KindLink:
		return "link"
	case KindUnlink:
		return "unlink"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Command is one unit of queued work. Commands are data; the Executor
// decides when each runs.
type Command struct {
	Kind      Kind
	App       string
	Version   string // empty for RemoveAll and Unlink, and for a LockfileUpdate that clears
	Overwrite bool   // Link only
}

func Install(app, version string) Command {
	return Command{Kind: KindInstall, App: app, Version: version}
}

func Remove(app, version string) Command {
	return Command{Kind: KindRemove, App: app, Version: version}
}

func RemoveAll(app string) Command {
	return Command{Kind: KindRemoveAll, App: app}
}

// LockfileUpdate records version for app. An empty version removes the entry.
func LockfileUpdate(app, version string) Command {
	return Command{Kind: KindLockfileUpdate, App: app, Version: version}
}

// LockfileClear removes app from the lockfile.
func LockfileClear(app string) Command {
	return LockfileUpdate(app, "")
}

func Link(app, version string, overwrite bool) Command {
	return Command{Kind: KindLink, App: app, Version: version, Overwrite: overwrite}
}

func Unlink(app string) Command {
	return Command{Kind: KindUnlink, App: app}
}

func (c Command) String() string {
	switch c.Kind {
	case KindRemoveAll, KindUnlink:
		return fmt.Sprintf("%s %s", c.Kind, c.App)
	case KindLockfileUpdate:
		if c.Version == "" {
			return fmt.Sprintf("%s %s (clear)", c.Kind, c.App)
		}
	case KindLink:
		if c.Overwrite {
			return fmt.Sprintf("%s %s@%s (overwrite)", c.Kind, c.App, c.Version)
		}
	}
	return fmt.Sprintf("%s %s@%s", c.Kind, c.App, c.Version)
}

// Phase orders execution. Lower phases always run first.
type Phase int

const (
	PhaseInstall Phase = iota
	PhasePostInstall
	PhaseRemove
	PhaseFinish
	numPhases
)

func (p Phase) String() string {
	switch p {
	case PhaseInstall:
		return "install"
	case PhasePostInstall:
		return "post-install"
	case PhaseRemove:
		return "remove"
	case PhaseFinish:
		return "finish"
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// phases lists the phases a command kind runs in.
func (k Kind) phases() []Phase {
	switch k {
	case KindInstall:
		return []Phase{PhaseInstall, PhasePostInstall}
	case KindRemove, KindRemoveAll:
		return []Phase{PhaseRemove}
	default:
		return []Phase{PhaseFinish}
	}
}
