package tui

import "github.com/charmbracelet/lipgloss"

// Color palette for the overlay chrome. Widget colors come from the tier
// swatches.
const (
	colorPrimary = lipgloss.Color("#7C3AED") // Purple
	colorText    = lipgloss.Color("#E5E7EB") // Light gray
	colorMuted   = lipgloss.Color("#6B7280") // Gray
	colorBorder  = lipgloss.Color("#4B4662") // Dim purple
)

// theme holds the styles derived from the configured background.
type theme struct {
	background     lipgloss.Color
	frame          lipgloss.Style
	activeButton   lipgloss.Style
	inactiveButton lipgloss.Style
	muted          lipgloss.Style
	help           lipgloss.Style
}

func newTheme(background lipgloss.Color, borderSize int) theme {
	frame := lipgloss.NewStyle().
		Background(background).
		Padding(0, 1)
	if borderSize > 0 {
		frame = frame.
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			BorderBackground(background)
	}

	return theme{
		background: background,
		frame:      frame,
		activeButton: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(colorPrimary),
		inactiveButton: lipgloss.NewStyle().
			Foreground(colorMuted),
		muted: lipgloss.NewStyle().
			Foreground(colorMuted),
		help: lipgloss.NewStyle().
			Foreground(colorText).
			MarginTop(1),
	}
}
