// Package scale converts a raw CPU percentage into a display magnitude.
// Linear sizing makes 1-10% readings invisible on a fixed-size bar, so both
// curves here amplify small inputs.
package scale

import (
	"fmt"
	"math"
	"strings"
)

// View-specific magnitude ceilings.
const (
	// GaugeMax is the maximum magnitude used by the gauge view.
	GaugeMax = 150.0
	// HistogramMax is the maximum magnitude used by the histogram view.
	HistogramMax = 200.0
	// DefaultClamp is the default upper clamp for the linear curve.
	DefaultClamp = 200.0
)

// Mode selects the scaling curve.
type Mode string

const (
	ModeLog    Mode = "log"
	ModeLinear Mode = "linear"
)

// ParseMode parses a mode name. Matching is case-insensitive.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeLog:
		return ModeLog, nil
	case ModeLinear:
		return ModeLinear, nil
	default:
		return "", fmt.Errorf("scale: unknown mode %q (want log or linear)", s)
	}
}

// Scaler maps a raw percentage onto [1, Max()].
type Scaler interface {
	Scale(value float64) float64
	Max() float64
}

// Log is the logarithmic curve. It rises steeply for small inputs and
// flattens near 100.
type Log struct {
	// Ceiling is K, the magnitude returned for 100%.
	Ceiling float64
}

// Scale clamps value to [1, 100] and returns
// 1 + (K-1) * log10(1 + 10*value/100) / log10(11).
func (l Log) Scale(value float64) float64 {
	v := clamp(value, 1, 100)
	return 1 + (l.Ceiling-1)*math.Log10(1+10*v/100)/math.Log10(11)
}

// Max returns K.
func (l Log) Max() float64 {
	return l.Ceiling
}

// Tiered is the piecewise linear curve used by the histogram.
type Tiered struct {
	// Clamp is the upper bound of the result.
	Clamp float64
}

// Scale multiplies value by a band-specific factor and clamps the result
// to [1, Clamp].
func (t Tiered) Scale(value float64) float64 {
	if math.IsNaN(value) {
		return 1
	}
	var factor float64
	switch {
	case value < 10:
		factor = 6
	case value < 20:
		factor = 5
	case value < 40:
		factor = 4
	case value < 60:
		factor = 3
	case value < 80:
		factor = 2.5
	default:
		factor = 2
	}
	return clamp(value*factor, 1, t.Clamp)
}

// Max returns the clamp ceiling.
func (t Tiered) Max() float64 {
	return t.Clamp
}

// For builds the scaler for mode. ceiling is K for the log curve and clampMax
// bounds the linear curve; non-positive values fall back to the histogram
// defaults.
func For(mode Mode, ceiling, clampMax float64) Scaler {
	if mode == ModeLinear {
		if clampMax <= 1 {
			clampMax = DefaultClamp
		}
		return Tiered{Clamp: clampMax}
	}
	if ceiling <= 1 {
		ceiling = HistogramMax
	}
	return Log{Ceiling: ceiling}
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}
