package widgets

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"

	"gitlab.com/tinyland/lab/transparency/display/color"
	"gitlab.com/tinyland/lab/transparency/history"
	"gitlab.com/tinyland/lab/transparency/scale"
	"gitlab.com/tinyland/lab/transparency/tier"
)

func sample(raw, magnitude float64) history.Sample {
	return history.Sample{
		Timestamp: time.Now(),
		Raw:       raw,
		Magnitude: magnitude,
		Tier:      tier.For(raw),
		Opacity:   0.6,
	}
}

func TestRenderHistogram_NewestOnLeft(t *testing.T) {
	color.ForceDisable()
	out := RenderHistogram(HistogramConfig{
		Samples: []history.Sample{sample(90, 200), sample(5, 25)},
		Width:   4,
		Height:  1,
		Max:     200,
	})

	// One row: newest (full) at column 0, older (one eighth) at column 1.
	runes := []rune(out)
	if len(runes) != 4 {
		t.Fatalf("row = %q, want 4 cells", out)
	}
	if runes[0] != '█' {
		t.Errorf("newest column = %q, want full block", runes[0])
	}
	if runes[1] != '▁' {
		t.Errorf("older column = %q, want one eighth", runes[1])
	}
	if runes[2] != ' ' || runes[3] != ' ' {
		t.Errorf("unused columns should be blank, got %q", out)
	}
}

func TestRenderHistogram_Rows(t *testing.T) {
	color.ForceDisable()
	out := RenderHistogram(HistogramConfig{
		Samples: []history.Sample{sample(50, 100)},
		Width:   1,
		Height:  4,
		Max:     200,
	})

	rows := strings.Split(out, "\n")
	if len(rows) != 4 {
		t.Fatalf("rows = %d, want 4", len(rows))
	}
	// Half of 32 eighths = 16: top two rows empty, bottom two full.
	want := []string{" ", " ", "█", "█"}
	for i := range want {
		if rows[i] != want[i] {
			t.Errorf("row %d = %q, want %q", i, rows[i], want[i])
		}
	}
}

func TestRenderHistogram_TruncatesToWidth(t *testing.T) {
	color.ForceDisable()
	var samples []history.Sample
	for i := 0; i < 100; i++ {
		samples = append(samples, sample(float64(i%100), 200))
	}
	out := RenderHistogram(HistogramConfig{Samples: samples, Width: 30, Height: 2, Max: 200})
	for _, row := range strings.Split(out, "\n") {
		if w := lipgloss.Width(row); w != 30 {
			t.Errorf("row width = %d, want 30", w)
		}
	}
}

func TestRenderHistogram_Empty(t *testing.T) {
	color.ForceDisable()
	out := RenderHistogram(HistogramConfig{Width: 5, Height: 3, Max: 200})
	rows := strings.Split(out, "\n")
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	for _, r := range rows {
		if strings.TrimSpace(r) != "" {
			t.Errorf("expected blank row, got %q", r)
		}
	}
}

func TestColumnEighths(t *testing.T) {
	s := history.NewSample(time.Now(), 0, scale.Log{Ceiling: 200}, 0.6)
	if got := ColumnEighths(s, 200, 4); got != 1 {
		t.Errorf("idle sample height = %d, want minimum visible 1", got)
	}
	full := sample(100, 200)
	if got := ColumnEighths(full, 200, 4); got != 32 {
		t.Errorf("full sample height = %d, want 32", got)
	}
}

func TestColumnColorUsesSampleOpacity(t *testing.T) {
	bg := lipgloss.Color("#000000")
	low := sample(90, 200)
	low.Opacity = 0.2
	high := low
	high.Opacity = 1

	if ColumnColor(high, bg) != color.Blend(tier.Style(tier.Tier6).Color, bg, 1) {
		t.Error("opaque column should be the plain swatch")
	}
	if ColumnColor(low, bg) == ColumnColor(high, bg) {
		t.Error("opacity should change the column color")
	}
}
