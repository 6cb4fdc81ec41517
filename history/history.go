// Package history keeps a bounded, newest-first log of CPU samples.
package history

import (
	"time"

	"gitlab.com/tinyland/lab/transparency/internal/format"
	"gitlab.com/tinyland/lab/transparency/scale"
	"gitlab.com/tinyland/lab/transparency/tier"
)

// DefaultCapacity is the number of samples retained by NewBuffer(0).
const DefaultCapacity = 100

// Sample is one observation of system CPU utilization.
type Sample struct {
	// Timestamp is the local wall-clock time the sample was taken.
	Timestamp time.Time `json:"timestamp"`
	// Raw is the unclamped utilization percentage.
	Raw float64 `json:"raw"`
	// Amount is the formatted percentage, e.g. "42%".
	Amount string `json:"amount"`
	// Magnitude is the scaled bar/needle size.
	Magnitude float64 `json:"magnitude"`
	// Tier is the severity band of Raw.
	Tier tier.Tier `json:"tier"`
	// Opacity is the configured opacity at creation time.
	Opacity float64 `json:"opacity"`
}

// NewSample derives every display field of a sample from its raw value.
// A nil scaler yields the log curve with the histogram ceiling.
func NewSample(at time.Time, raw float64, s scale.Scaler, opacity float64) Sample {
	if s == nil {
		s = scale.Log{Ceiling: scale.HistogramMax}
	}
	return Sample{
		Timestamp: at,
		Raw:       raw,
		Amount:    format.Percent(raw),
		Magnitude: s.Scale(raw),
		Tier:      tier.For(raw),
		Opacity:   opacity,
	}
}

// Key is the integer used for duplicate suppression: the raw value
// truncated toward zero, so 12.4 and 12.9 compare equal.
func (s Sample) Key() int {
	return int(s.Raw)
}

// Buffer is a fixed-capacity sample log ordered newest first. Consecutive
// samples with the same Key are stored once.
//
// Buffer is not safe for concurrent use; the refresh loop owns it and hands
// consumers copies from Snapshot.
type Buffer struct {
	samples  []Sample
	capacity int
}

// NewBuffer creates an empty buffer. A non-positive capacity uses
// DefaultCapacity.
func NewBuffer(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Buffer{
		samples:  make([]Sample, 0, capacity+1),
		capacity: capacity,
	}
}

// Add inserts s at the front and evicts the oldest sample past capacity.
// It returns false, leaving the buffer untouched, when s has the same Key as
// the current newest sample.
func (b *Buffer) Add(s Sample) bool {
	if len(b.samples) > 0 && b.samples[0].Key() == s.Key() {
		return false
	}

	b.samples = append(b.samples, Sample{})
	copy(b.samples[1:], b.samples)
	b.samples[0] = s

	if len(b.samples) > b.capacity {
		b.samples = b.samples[:b.capacity]
	}
	return true
}

// Len returns the number of stored samples.
func (b *Buffer) Len() int {
	return len(b.samples)
}

// Cap returns the capacity.
func (b *Buffer) Cap() int {
	return b.capacity
}

// Latest returns the newest sample, if any.
func (b *Buffer) Latest() (Sample, bool) {
	if len(b.samples) == 0 {
		return Sample{}, false
	}
	return b.samples[0], true
}

// Snapshot returns a copy of the stored samples, newest first.
func (b *Buffer) Snapshot() []Sample {
	out := make([]Sample, len(b.samples))
	copy(out, b.samples)
	return out
}

// Values returns the raw values, newest first.
func (b *Buffer) Values() []float64 {
	out := make([]float64, len(b.samples))
	for i, s := range b.samples {
		out[i] = s.Raw
	}
	return out
}

// Reset drops every sample.
func (b *Buffer) Reset() {
	b.samples = b.samples[:0]
}
