package ui

import "github.com/charmbracelet/lipgloss"

var (
	appStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("219")).
			Bold(true)

	versionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10")).
			Bold(true)

	pathStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Italic(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11")).
			Bold(true)
)

// App styles an app name.
func (u *UI) App(s string) string { return u.render(appStyle, s) }

// Version styles a version string.
func (u *UI) Version(s string) string { return u.render(versionStyle, s) }

// Path styles a filesystem path.
func (u *UI) Path(s string) string { return u.render(pathStyle, s) }

// Muted styles secondary text.
func (u *UI) Muted(s string) string { return u.render(mutedStyle, s) }

func (u *UI) render(st lipgloss.Style, s string) string {
	if !u.color || s == "" {
		return s
	}
	return st.Render(s)
}
