package cli

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme is the colour palette of the terminal output.
type Theme struct {
	Primary lipgloss.Color
	Match   lipgloss.Color
	Muted   lipgloss.Color
	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
	Border  lipgloss.Color
}

// DefaultTheme returns the default palette.
func DefaultTheme() Theme {
	return Theme{
		Primary: lipgloss.Color("#7C3AED"),
		Match:   lipgloss.Color("#F9E2AF"),
		Muted:   lipgloss.Color("#6C7086"),
		Success: lipgloss.Color("#A6E3A1"),
		Warning: lipgloss.Color("#FAB387"),
		Error:   lipgloss.Color("#F38BA8"),
		Border:  lipgloss.Color("#45475A"),
	}
}

// Styles are the pre-built lipgloss styles used by the commands.
type Styles struct {
	Title   lipgloss.Style
	Plain   lipgloss.Style
	Match   lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Header  lipgloss.Style
	Border  lipgloss.Style
}

// NewStyles builds styles from a theme.
func NewStyles(t Theme) Styles {
	return Styles{
		Title:   lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		Plain:   lipgloss.NewStyle(),
		Match:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#1E1E2E")).Background(t.Match),
		Muted:   lipgloss.NewStyle().Foreground(t.Muted),
		Success: lipgloss.NewStyle().Foreground(t.Success),
		Warning: lipgloss.NewStyle().Foreground(t.Warning),
		Error:   lipgloss.NewStyle().Foreground(t.Error),
		Header:  lipgloss.NewStyle().Bold(true).Padding(0, 1),
		Border:  lipgloss.NewStyle().Foreground(t.Border),
	}
}

var styles = NewStyles(DefaultTheme())
