package refresh

import (
	"time"

	"gitlab.com/tinyland/lab/transparency/history"
	"gitlab.com/tinyland/lab/transparency/tier"
)

// Update is what the display consumer receives once per tick.
type Update struct {
	Time      time.Time
	Raw       float64
	Tier      tier.Tier
	Magnitude float64
	Opacity   float64

	// Appended reports whether this tick added a history entry. A tick whose
	// value truncates to the newest entry's integer does not.
	Appended bool

	// History is a copy of the buffer, newest first.
	History []history.Sample

	// Loading is set while the sampler is still acquiring its counters.
	// Raw and Magnitude are zero in that case.
	Loading bool

	// Err carries a sampling failure. The display value is left unchanged
	// and only the status should be updated.
	Err error
}

// Consumer receives tick updates. Consume is called from the loop goroutine
// and must not block for long.
type Consumer interface {
	Consume(Update)
}

// ConsumerFunc adapts a function to Consumer.
type ConsumerFunc func(Update)

// Consume calls f(u).
func (f ConsumerFunc) Consume(u Update) { f(u) }

// Fanout delivers every update to each consumer in order.
type Fanout []Consumer

// Consume forwards u to every non-nil consumer.
func (f Fanout) Consume(u Update) {
	for _, c := range f {
		if c != nil {
			c.Consume(u)
		}
	}
}

var (
	_ Consumer = ConsumerFunc(nil)
	_ Consumer = Fanout(nil)
)
