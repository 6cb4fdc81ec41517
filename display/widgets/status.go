package widgets

import (
	"github.com/charmbracelet/lipgloss"
)

// StatusLevel represents the state of the sampler as shown to the user.
type StatusLevel int

const (
	// StatusOK indicates live samples.
	StatusOK StatusLevel = iota
	// StatusPending indicates the counters are still being acquired.
	StatusPending
	// StatusWarning indicates the last sample failed and the display is
	// frozen at the previous value.
	StatusWarning
)

// StatusConfig holds the configuration for rendering a status indicator.
type StatusConfig struct {
	// Level determines the color and icon.
	Level StatusLevel
	// Text is the label shown next to the indicator.
	Text string
	// ShowIcon controls whether the colored dot is shown.
	ShowIcon bool
}

// statusIcons maps each status level to its display icon.
var statusIcons = map[StatusLevel]string{
	StatusOK:      "●", // ● dot
	StatusPending: "◌", // ◌ dotted circle
	StatusWarning: "○", // ○ outline
}

// statusColors maps each status level to its display color.
var statusColors = map[StatusLevel]lipgloss.Color{
	StatusOK:      lipgloss.Color("#22C55E"),
	StatusPending: lipgloss.Color("#3B82F6"),
	StatusWarning: lipgloss.Color("#EAB308"),
}

// RenderStatus renders a status indicator with an optional colored icon and text.
func RenderStatus(cfg StatusConfig) string {
	style := lipgloss.NewStyle().Foreground(statusColors[cfg.Level])

	if cfg.ShowIcon {
		icon := style.Render(statusIcons[cfg.Level])
		if cfg.Text == "" {
			return icon
		}
		return icon + " " + cfg.Text
	}

	return style.Render(cfg.Text)
}

// SamplerStatus maps the loop state of the last tick to a status line.
// An empty name renders as "cpu".
func SamplerStatus(name string, loading bool, err error) StatusConfig {
	if name == "" {
		name = "cpu"
	}
	switch {
	case loading:
		return StatusConfig{Level: StatusPending, Text: "loading " + name + " counters", ShowIcon: true}
	case err != nil:
		return StatusConfig{Level: StatusWarning, Text: name + " unavailable", ShowIcon: true}
	default:
		return StatusConfig{Level: StatusOK, Text: name, ShowIcon: true}
	}
}
