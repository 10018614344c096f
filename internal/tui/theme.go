package tui

import "github.com/charmbracelet/lipgloss"

// Minimum window dimensions enforced across the UI.
const (
	minWindowWidth  = 60
	minWindowHeight = 10
)

// Theme centralizes colors and styles.
type Theme struct {
	ColorNormal    lipgloss.Color
	ColorHighlight lipgloss.Color
	ColorSuccess   lipgloss.Color
	ColorError     lipgloss.Color
	ColorMuted     lipgloss.Color

	Header        lipgloss.Style
	Muted         lipgloss.Style
	Echo          lipgloss.Style
	StatusSuccess lipgloss.Style
	StatusError   lipgloss.Style
	StatusBar     lipgloss.Style
}

// NewTheme returns the default 16-color theme.
func NewTheme() *Theme {
	t := &Theme{
		ColorNormal:    lipgloss.Color("15"),
		ColorHighlight: lipgloss.Color("4"),
		ColorSuccess:   lipgloss.Color("2"),
		ColorError:     lipgloss.Color("1"),
		ColorMuted:     lipgloss.Color("8"),
	}

	t.Header = lipgloss.NewStyle().Bold(true).Foreground(t.ColorHighlight)
	t.Muted = lipgloss.NewStyle().Foreground(t.ColorMuted)
	t.Echo = lipgloss.NewStyle().Bold(true)
	t.StatusSuccess = lipgloss.NewStyle().Foreground(t.ColorSuccess)
	t.StatusError = lipgloss.NewStyle().Foreground(t.ColorError)
	t.StatusBar = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderTop(true).
		BorderForeground(t.ColorMuted)
	return t
}
