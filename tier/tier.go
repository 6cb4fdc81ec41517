// Package tier maps a CPU utilization percentage onto one of six ordered
// severity bands. Each band is bound to a fixed display swatch.
package tier

import (
	"fmt"
	"math"

	"github.com/charmbracelet/lipgloss"
)

// Tier is a severity band. Higher values are more severe.
type Tier int

const (
	Tier1 Tier = iota + 1
	Tier2
	Tier3
	Tier4
	Tier5
	Tier6
)

// Count is the number of tiers.
const Count = 6

// All returns every tier in ascending severity.
func All() []Tier {
	return []Tier{Tier1, Tier2, Tier3, Tier4, Tier5, Tier6}
}

// String returns "tier1" through "tier6".
func (t Tier) String() string {
	if !t.Valid() {
		return fmt.Sprintf("tier(%d)", int(t))
	}
	return fmt.Sprintf("tier%d", int(t))
}

// Valid reports whether t is one of the six defined tiers.
func (t Tier) Valid() bool {
	return t >= Tier1 && t <= Tier6
}

// For returns the tier for a raw percentage. Thresholds are strict
// greater-than comparisons evaluated from the highest band down, so a value
// of exactly 80 is Tier5. Values oscillating around a threshold flap between
// tiers; there is no hysteresis.
func For(value float64) Tier {
	switch {
	case math.IsNaN(value):
		return Tier1
	case value > 80:
		return Tier6
	case value > 70:
		return Tier5
	case value > 40:
		return Tier4
	case value > 20:
		return Tier3
	case value > 10:
		return Tier2
	default:
		return Tier1
	}
}

// Swatch is the static display color of a tier.
type Swatch struct {
	// Name is the CSS color name.
	Name string
	// Color is the opaque hex color.
	Color lipgloss.Color
	// Opacity is the alpha the color is drawn with (0.6-0.7).
	Opacity float64
}

var swatches = map[Tier]Swatch{
	Tier6: {Name: "OrangeRed", Color: lipgloss.Color("#FF4500"), Opacity: 0.7},
	Tier5: {Name: "Orange", Color: lipgloss.Color("#FFA500"), Opacity: 0.7},
	Tier4: {Name: "Yellow", Color: lipgloss.Color("#FFFF00"), Opacity: 0.6},
	Tier3: {Name: "YellowGreen", Color: lipgloss.Color("#9ACD32"), Opacity: 0.7},
	Tier2: {Name: "SpringGreen", Color: lipgloss.Color("#00FF7F"), Opacity: 0.7},
	Tier1: {Name: "RoyalBlue", Color: lipgloss.Color("#4169E1"), Opacity: 0.7},
}

// Style returns the swatch bound to t. Unknown tiers get the Tier1 swatch.
func Style(t Tier) Swatch {
	if s, ok := swatches[t]; ok {
		return s
	}
	return swatches[Tier1]
}
