// Package color handles color profile detection and the opacity emulation
// used by the overlay.
//
// A terminal has no alpha channel, so a swatch drawn at opacity a is
// rendered as the swatch blended over the overlay background by a. Profile
// detection follows NO_COLOR (https://no-color.org/) and disables color when
// the output is not a terminal; lipgloss then renders plain text.
package color

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

// ShouldDisableColor reports whether color output to f should be suppressed:
// NO_COLOR is set (any value), or f is not a terminal.
func ShouldDisableColor(f *os.File) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return true
	}
	if f == nil {
		return true
	}
	return !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd())
}

// Apply configures the global lipgloss renderer for output to f and
// returns whether color is enabled.
func Apply(f *os.File) bool {
	if ShouldDisableColor(f) {
		lipgloss.SetColorProfile(termenv.Ascii)
		return false
	}
	return true
}

// ForceDisable sets the lipgloss color profile to Ascii. Tests use it to
// compare rendered output as plain text.
func ForceDisable() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

// Parse converts a "#RRGGBB" string into a colorful.Color.
func Parse(hex string) (colorful.Color, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return colorful.Color{}, fmt.Errorf("color: parse %q: %w", hex, err)
	}
	return c, nil
}

// Blend returns fg drawn over bg at the given opacity. alpha is clamped to
// [0, 1]; 1 yields fg and 0 yields bg. A color that fails to parse is
// returned unchanged so a bad theme value never hides the widget.
func Blend(fg, bg lipgloss.Color, alpha float64) lipgloss.Color {
	f, err := Parse(string(fg))
	if err != nil {
		return fg
	}
	b, err := Parse(string(bg))
	if err != nil {
		return fg
	}
	alpha = max(0, min(1, alpha))
	return lipgloss.Color(b.BlendRgb(f, alpha).Clamped().Hex())
}

// StripANSI removes ANSI escape sequences from a string.
func StripANSI(s string) string {
	var result []byte
	inEscape := false
	for i := 0; i < len(s); i++ {
		if inEscape {
			if (s[i] >= 'a' && s[i] <= 'z') || (s[i] >= 'A' && s[i] <= 'Z') || s[i] == '~' {
				inEscape = false
			}
			continue
		}
		if s[i] == '\x1b' {
			inEscape = true
			continue
		}
		result = append(result, s[i])
	}
	return string(result)
}
