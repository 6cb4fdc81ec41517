package cache

import (
	"log/slog"
	"time"

	"gitlab.com/tinyland/lab/transparency/history"
	"gitlab.com/tinyland/lab/transparency/refresh"
)

// SnapshotKey is the cache key of the current CPU reading.
const SnapshotKey = "cpu"

// recentLen is how many history values a snapshot carries.
const recentLen = 20

// Snapshot is the document written to cpu.json.
type Snapshot struct {
	Timestamp time.Time `json:"timestamp"`
	Raw       float64   `json:"raw"`
	Amount    string    `json:"amount"`
	Tier      string    `json:"tier"`

	// Recent holds up to 20 raw values, newest first.
	Recent []float64 `json:"recent"`
}

// NewSnapshot builds a snapshot from a history buffer copy (newest first).
func NewSnapshot(samples []history.Sample) (Snapshot, bool) {
	if len(samples) == 0 {
		return Snapshot{}, false
	}
	newest := samples[0]
	n := min(len(samples), recentLen)
	recent := make([]float64, n)
	for i := range n {
		recent[i] = samples[i].Raw
	}
	return Snapshot{
		Timestamp: newest.Timestamp,
		Raw:       newest.Raw,
		Amount:    newest.Amount,
		Tier:      newest.Tier.String(),
		Recent:    recent,
	}, true
}

// SnapshotWriter is a refresh consumer that persists the newest sample after
// every tick that appended one.
type SnapshotWriter struct {
	store *Store
}

// NewSnapshotWriter returns a writer backed by store.
func NewSnapshotWriter(store *Store) *SnapshotWriter {
	return &SnapshotWriter{store: store}
}

// Consume writes cpu.json when u appended a history entry.
func (w *SnapshotWriter) Consume(u refresh.Update) {
	if !u.Appended {
		return
	}
	snap, ok := NewSnapshot(u.History)
	if !ok {
		return
	}
	if err := w.store.Set(SnapshotKey, snap); err != nil {
		w.store.logger.Warn("cache: write snapshot", slog.String("error", err.Error()))
	}
}

// ReadSnapshot returns the stored snapshot and whether it is younger than ttl.
func ReadSnapshot(s *Store, ttl time.Duration) (*Snapshot, bool, error) {
	return GetTyped[Snapshot](s, SnapshotKey, ttl)
}

var _ refresh.Consumer = (*SnapshotWriter)(nil)
