package widgets

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"gitlab.com/tinyland/lab/transparency/display/color"
	"gitlab.com/tinyland/lab/transparency/history"
	"gitlab.com/tinyland/lab/transparency/tier"
)

// sparkBlocks contains 8 unicode block characters ordered from lowest to
// highest. A histogram cell shows sparkBlocks[n-1] for n eighths filled.
var sparkBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// HistogramConfig controls the appearance of the history histogram.
type HistogramConfig struct {
	// Samples are the history entries, newest first.
	Samples []history.Sample
	// Width is the number of columns. Only the newest Width samples are shown.
	Width int
	// Height is the number of rows.
	Height int
	// Max is the scaler ceiling K.
	Max float64
	// Background is the color each column is blended over.
	Background lipgloss.Color
}

// ColumnColor returns the sample's tier swatch blended over bg at the
// sample's opacity.
func ColumnColor(s history.Sample, bg lipgloss.Color) lipgloss.Color {
	return color.Blend(tier.Style(s.Tier).Color, bg, s.Opacity)
}

// ColumnEighths returns the column height of s in eighths of a row.
func ColumnEighths(s history.Sample, max float64, height int) int {
	n := int(fraction(s.Magnitude, max)*float64(height*8) + 0.5)
	if n < 1 && s.Magnitude > 0 {
		n = 1
	}
	return n
}

// RenderHistogram renders one column per sample, newest at the left. Rows
// are joined with newlines, top first. Columns without a sample are blank.
func RenderHistogram(cfg HistogramConfig) string {
	width := cfg.Width
	if width <= 0 {
		width = len(cfg.Samples)
	}
	height := cfg.Height
	if height <= 0 {
		height = 4
	}
	if width == 0 {
		return strings.Repeat("\n", height-1)
	}

	samples := cfg.Samples
	if len(samples) > width {
		samples = samples[:width]
	}

	heights := make([]int, len(samples))
	styles := make([]lipgloss.Style, len(samples))
	for i, s := range samples {
		heights[i] = ColumnEighths(s, cfg.Max, height)
		styles[i] = lipgloss.NewStyle().Foreground(ColumnColor(s, cfg.Background))
	}

	rows := make([]string, height)
	for r := 0; r < height; r++ {
		// Eighths below this row's floor.
		floor := (height - 1 - r) * 8
		var sb strings.Builder
		for i := range samples {
			level := heights[i] - floor
			switch {
			case level <= 0:
				sb.WriteByte(' ')
			case level >= 8:
				sb.WriteString(styles[i].Render(string(sparkBlocks[7])))
			default:
				sb.WriteString(styles[i].Render(string(sparkBlocks[level-1])))
			}
		}
		sb.WriteString(strings.Repeat(" ", width-len(samples)))
		rows[r] = sb.String()
	}
	return strings.Join(rows, "\n")
}
