// Package transaction runs batches of install, remove, link and lockfile
// commands in a fixed phase order.
//
// Whatever order commands are added in, every install runs first, then
// every post-install hook, then every removal, and finally lockfile
// updates, links and unlinks in the order they were added. The first
// failure stops the batch. Completed steps are not rolled back.
package transaction

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrAlreadyExecuted is returned by a second call to Execute.
var ErrAlreadyExecuted = errors.New("transaction already executed")

// State is the lifecycle state of one step.
type State string

const (
	StateInProgress State = "in_progress"
	StateCompleted  State = "completed"
	StateFailed     State = "failed"
)

// LinkReport describes the outcome of a Link command.
type LinkReport struct {
	App     string
	Version string
	Linked  []string // destination paths created or replaced
	Skipped []string // destination paths that existed and were left alone
}

// Backend performs the side effects of each command.
type Backend interface {
	InstallVersion(ctx context.Context, app, version string) error
	PostInstallVersion(ctx context.Context, app, version string) error
	UninstallVersion(ctx context.Context, app, version string) error
	UninstallAll(ctx context.Context, app string) error
	UpdateLockfile(ctx context.Context, app, version string) error
	LinkBinaries(ctx context.Context, app, version string, overwrite bool) (*LinkReport, error)
	UnlinkBinaries(ctx context.Context, app string) error
}

// Step is a command scheduled in a phase.
type Step struct {
	Phase   Phase
	Command Command
}

func (s Step) String() string {
	if s.Phase == PhasePostInstall {
		return "post-install " + s.Command.App + "@" + s.Command.Version
	}
	return s.Command.String()
}

// Event is sent to the Observer as each step starts and ends.
type Event struct {
	TxnID string
	Step  Step
	State State
	Err   error
}

// Observer receives step events.
type Observer func(Event)

// Result summarizes an executed transaction.
type Result struct {
	ID        string
	Completed []Step
	Links     []*LinkReport
}

// Skipped returns every link destination that was left in place.
func (r *Result) Skipped() []string {
	var out []string
	for _, l := range r.Links {
		out = append(out, l.Skipped...)
	}
	return out
}

// StepError reports the step that stopped a transaction.
type StepError struct {
	TxnID string
	Step  Step
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s phase: %s: %v", e.Step.Phase, e.Step, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// Executor queues commands and runs them.
type Executor struct {
	id       string
	backend  Backend
	queues   [numPhases][]Command
	observer Observer
	log      zerolog.Logger
	done     bool
}

// Option configures an Executor.
type Option func(*Executor)

// WithObserver sets a callback for step events.
func WithObserver(o Observer) Option {
	return func(e *Executor) { e.observer = o }
}

// WithLogger sets the logger. Log lines carry the transaction ID.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Executor) { e.log = l }
}

// New returns an empty Executor over backend.
func New(backend Backend, opts ...Option) *Executor {
	e := &Executor{
		id:      uuid.New().String(),
		backend: backend,
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.log = e.log.With().Str("txn", e.id).Logger()
	return e
}

// ID returns the transaction's unique identifier.
func (e *Executor) ID() string { return e.id }

// Add queues commands.
func (e *Executor) Add(cmds ...Command) {
	for _, c := range cmds {
		for _, p := range c.Kind.phases() {
			e.queues[p] = append(e.queues[p], c)
		}
	}
}

// Len returns the number of queued steps.
func (e *Executor) Len() int {
	n := 0
	for _, q := range e.queues {
		n += len(q)
	}
	return n
}

// Steps returns the queued steps in execution order.
func (e *Executor) Steps() []Step {
	steps := make([]Step, 0, e.Len())
	for p, q := range e.queues {
		for _, c := range q {
			steps = append(steps, Step{Phase: Phase(p), Command: c})
		}
	}
	return steps
}

// Execute runs every queued step. On failure it returns the partial Result
// together with a *StepError.
func (e *Executor) Execute(ctx context.Context) (*Result, error) {
	if e.done {
		return nil, ErrAlreadyExecuted
	}
	e.done = true

	res := &Result{ID: e.id}
	e.log.Debug().Int("steps", e.Len()).Msg("executing transaction")

	for _, step := range e.Steps() {
		if err := ctx.Err(); err != nil {
			return res, &StepError{TxnID: e.id, Step: step, Err: err}
		}

		e.notify(step, StateInProgress, nil)
		if err := e.run(ctx, step, res); err != nil {
			e.notify(step, StateFailed, err)
			e.log.Error().Err(err).Str("step", step.String()).Msg("transaction step failed")
			return res, &StepError{TxnID: e.id, Step: step, Err: err}
		}
		res.Completed = append(res.Completed, step)
		e.notify(step, StateCompleted, nil)
		e.log.Debug().Str("step", step.String()).Msg("step completed")
	}
	return res, nil
}

func (e *Executor) run(ctx context.Context, step Step, res *Result) error {
	c := step.Command
	switch step.Phase {
	case PhaseInstall:
		return e.backend.InstallVersion(ctx, c.App, c.Version)
	case PhasePostInstall:
		return e.backend.PostInstallVersion(ctx, c.App, c.Version)
	}

	switch c.Kind {
	case KindRemove:
		return e.backend.UninstallVersion(ctx, c.App, c.Version)
	case KindRemoveAll:
		return e.backend.UninstallAll(ctx, c.App)
	case KindLockfileUpdate:
		return e.backend.UpdateLockfile(ctx, c.App, c.Version)
	case KindLink:
		report, err := e.backend.LinkBinaries(ctx, c.App, c.Version, c.Overwrite)
		if report != nil {
			res.Links = append(res.Links, report)
		}
		return err
	case KindUnlink:
		return e.backend.UnlinkBinaries(ctx, c.App)
	}
	return fmt.Errorf("unknown command kind %s", c.Kind)
}

func (e *Executor) notify(step Step, state State, err error) {
	if e.observer != nil {
		e.observer(Event{TxnID: e.id, Step: step, State: state, Err: err})
	}
}
