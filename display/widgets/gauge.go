package widgets

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"gitlab.com/tinyland/lab/transparency/display/color"
	"gitlab.com/tinyland/lab/transparency/internal/format"
	"gitlab.com/tinyland/lab/transparency/tier"
)

// needleBlocks are the left-aligned eighth blocks used for the partial cell
// at the needle tip, ordered from one eighth to a full cell.
var needleBlocks = []rune{'▏', '▎', '▍', '▌', '▋', '▊', '▉', '█'}

// GaugeConfig controls the appearance of the horizontal needle gauge.
type GaugeConfig struct {
	// Width is the character width of the bar, excluding label and value.
	Width int
	// Raw is the unscaled CPU percentage shown as the value text.
	Raw float64
	// Magnitude is the scaled needle position in [1, Max]. The overlay
	// passes the animated position here, not the target.
	Magnitude float64
	// Max is the scaler ceiling K.
	Max float64
	// Tier selects the fill color.
	Tier tier.Tier
	// Background is the color the swatch is blended over.
	Background lipgloss.Color
	// Label is optional text shown to the left of the bar.
	Label string
	// EmptyChar is the character for the unfilled track (default: "░").
	EmptyChar string
}

// DefaultGaugeConfig returns a GaugeConfig with sensible defaults.
func DefaultGaugeConfig() GaugeConfig {
	return GaugeConfig{
		Width:      24,
		Max:        150,
		Tier:       tier.Tier1,
		Background: lipgloss.Color("#1E1B2E"),
		Label:      "CPU",
		EmptyChar:  "░",
	}
}

// FillColor returns the tier swatch blended over bg at the swatch opacity.
func FillColor(t tier.Tier, bg lipgloss.Color) lipgloss.Color {
	sw := tier.Style(t)
	return color.Blend(sw.Color, bg, sw.Opacity)
}

// RenderGauge renders a horizontal needle bar with eighth-cell resolution.
// Format: [Label] [██████▍░░░░░] [XX%]
func RenderGauge(cfg GaugeConfig) string {
	width := cfg.Width
	if width <= 0 {
		width = 24
	}
	emptyChar := cfg.EmptyChar
	if emptyChar == "" {
		emptyChar = "░"
	}

	frac := fraction(cfg.Magnitude, cfg.Max)
	eighths := int(math.Round(frac * float64(width*8)))
	full := eighths / 8
	partial := eighths % 8

	var bar strings.Builder
	bar.WriteString(strings.Repeat("█", full))
	filled := full
	if partial > 0 && full < width {
		bar.WriteRune(needleBlocks[partial-1])
		filled++
	}

	style := lipgloss.NewStyle().Foreground(FillColor(cfg.Tier, cfg.Background))
	track := lipgloss.NewStyle().Foreground(lipgloss.Color("#4B4662"))

	var sb strings.Builder
	if cfg.Label != "" {
		sb.WriteString(cfg.Label)
		sb.WriteString(" ")
	}
	sb.WriteString(style.Render(bar.String()))
	sb.WriteString(track.Render(strings.Repeat(emptyChar, width-filled)))
	sb.WriteString(" ")
	sb.WriteString(padLeft(format.Percent(cfg.Raw), 4))
	return sb.String()
}

// fraction returns magnitude/max clamped to [0, 1].
func fraction(magnitude, max float64) float64 {
	if max <= 0 || math.IsNaN(magnitude) {
		return 0
	}
	return math.Max(0, math.Min(1, magnitude/max))
}

func padLeft(s string, n int) string {
	if w := lipgloss.Width(s); w < n {
		return strings.Repeat(" ", n-w) + s
	}
	return s
}
