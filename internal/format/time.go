// Package format provides shared string and time formatting utilities.
package format

import (
	"fmt"
	"math"
	"time"
)

// ClockLayout renders sample timestamps as "3:04:05 PM".
const ClockLayout = "3:04:05 PM"

// Clock formats t with ClockLayout. The zero time renders as "--:--:--".
func Clock(t time.Time) string {
	if t.IsZero() {
		return "--:--:--"
	}
	return t.Format(ClockLayout)
}

// Percent formats a 0-100 percentage with no decimals, e.g. "42%".
// NaN renders as "--%".
func Percent(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "--%"
	}
	return fmt.Sprintf("%.0f%%", v)
}

// FormatTimeSince formats a time.Time as a human-readable duration since that time.
// Returns strings like "45s ago", "3m ago", or "just now".
func FormatTimeSince(t time.Time) string {
	if t.IsZero() {
		return "never"
	}

	d := time.Since(t)
	if d < 0 {
		d = -d
	}

	if d < 10*time.Second {
		return "just now"
	}

	if d < time.Minute {
		return fmt.Sprintf("%ds ago", int(d.Seconds()))
	}

	if d < time.Hour {
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	}

	return fmt.Sprintf("%dh ago", int(d.Hours()))
}

// Interval renders a refresh period concisely: "750ms", "2s", "1.5s", "2m 30s".
func Interval(d time.Duration) string {
	if d < 0 {
		d = -d
	}

	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		if d%time.Second == 0 {
			return fmt.Sprintf("%ds", int(d.Seconds()))
		}
		return fmt.Sprintf("%.1fs", d.Seconds())
	}

	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60
	if seconds == 0 {
		return fmt.Sprintf("%dm", minutes)
	}
	return fmt.Sprintf("%dm %ds", minutes, seconds)
}
