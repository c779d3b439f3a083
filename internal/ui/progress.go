package ui

import (
	"github.com/pterm/pterm"

	"github.com/damillora/cyrene/internal/fetch"
)

// Progress returns the download progress display, or nil when output is
// not interactive.
func (u *UI) Progress() fetch.Progress {
	if !u.interactive {
		return nil
	}
	return &progress{ui: u}
}

type progress struct {
	ui *UI
}

// Start shows a progress bar when the size is known and a spinner
// otherwise.
func (p *progress) Start(name string, total int64) fetch.Tracker {
	if total <= 0 {
		sp, err := pterm.DefaultSpinner.WithWriter(p.ui.err).Start("downloading " + name)
		if err != nil {
			return nopTracker{}
		}
		return &spinnerTracker{sp: sp}
	}

	bar, err := pterm.DefaultProgressbar.
		WithTotal(int(total)).
		WithTitle(name).
		WithWriter(p.ui.err).
		WithRemoveWhenDone(true).
		Start()
	if err != nil {
		return nopTracker{}
	}
	return &barTracker{bar: bar}
}

type barTracker struct {
	bar *pterm.ProgressbarPrinter
}

func (t *barTracker) Add(n int) { t.bar.Add(n) }

func (t *barTracker) Done() { _, _ = t.bar.Stop() }

type spinnerTracker struct {
	sp *pterm.SpinnerPrinter
}

func (t *spinnerTracker) Add(int) {}

func (t *spinnerTracker) Done() { _ = t.sp.Stop() }

type nopTracker struct{}

func (nopTracker) Add(int) {}
func (nopTracker) Done()   {}
