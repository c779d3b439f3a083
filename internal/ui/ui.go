package ui

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/pterm/pterm"
)

// ErrNotConfirmed is returned when the user declines a prompt.
var ErrNotConfirmed = errors.New("aborted")

// ErrNonInteractive is returned when confirmation is needed but stdin or
// stdout is not a terminal.
var ErrNonInteractive = errors.New("confirmation required; rerun with --yes")

// UI writes user-facing output.
type UI struct {
	out         io.Writer
	err         io.Writer
	color       bool
	interactive bool
	assumeYes   bool
}

// Options configures a UI.
type Options struct {
	Out       io.Writer
	Err       io.Writer
	AssumeYes bool
	// Color and Interactive are detected from the terminal when nil.
	Color       *bool
	Interactive *bool
}

// New creates a UI. By default it writes to stdout and stderr.
func New(opts Options) *UI {
	u := &UI{out: opts.Out, err: opts.Err, assumeYes: opts.AssumeYes}
	if u.out == nil {
		u.out = os.Stdout
	}
	if u.err == nil {
		u.err = os.Stderr
	}

	tty := isTerminal(u.out)
	u.color = tty && os.Getenv("NO_COLOR") == ""
	u.interactive = tty && isTerminal(os.Stdin)
	if opts.Color != nil {
		u.color = *opts.Color
	}
	if opts.Interactive != nil {
		u.interactive = *opts.Interactive
	}
	if !u.color {
		pterm.DisableColor()
	}
	return u
}

func isTerminal(w any) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Interactive reports whether prompts and live widgets are shown.
func (u *UI) Interactive() bool { return u.interactive }

// Println writes a line to stdout.
func (u *UI) Println(a ...any) {
	fmt.Fprintln(u.out, a...)
}

// Printf writes formatted text to stdout.
func (u *UI) Printf(format string, a ...any) {
	fmt.Fprintf(u.out, format, a...)
}

// Notice writes an informational line to stderr.
func (u *UI) Notice(format string, a ...any) {
	fmt.Fprintln(u.err, u.render(mutedStyle, fmt.Sprintf(format, a...)))
}

// Warn writes a warning line to stderr.
func (u *UI) Warn(format string, a ...any) {
	fmt.Fprintln(u.err, u.render(warnStyle, "warning:")+" "+fmt.Sprintf(format, a...))
}

// Error writes the final diagnostic of a failed command.
func (u *UI) Error(err error) {
	fmt.Fprintf(u.err, "Error: %v\n", err)
}

// Table renders rows under header.
func (u *UI) Table(header []string, rows [][]string) error {
	data := make(pterm.TableData, 0, len(rows)+1)
	data = append(data, header)
	data = append(data, rows...)

	s, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return fmt.Errorf("render table: %w", err)
	}
	_, err = fmt.Fprintln(u.out, s)
	return err
}

// Confirm asks a yes/no question. --yes answers it in advance. Without a
// terminal the question cannot be asked and ErrNonInteractive is returned.
func (u *UI) Confirm(prompt string) error {
	if u.assumeYes {
		return nil
	}
	if !u.interactive {
		return ErrNonInteractive
	}
	ok, err := pterm.DefaultInteractiveConfirm.WithDefaultValue(true).Show(prompt)
	if err != nil {
		return fmt.Errorf("prompt: %w", err)
	}
	if !ok {
		return ErrNotConfirmed
	}
	return nil
}
