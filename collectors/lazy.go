package collectors

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

const (
	// DefaultReopenAfter is the number of consecutive unavailable samples
	// after which the counter handle is dropped and reacquired.
	DefaultReopenAfter = 5

	defaultInitialBackoff = time.Second
	defaultMaxBackoff     = 30 * time.Second
)

// LazyConfig configures a Lazy sampler.
type LazyConfig struct {
	// Name is reported by Name() before and after acquisition.
	Name string
	// Open acquires the counter handle.
	Open Opener
	// ReopenAfter is the consecutive failure count that triggers
	// reacquisition. Zero uses DefaultReopenAfter; negative disables it.
	ReopenAfter int
	// InitialBackoff and MaxBackoff bound the retry delay of a failed
	// acquisition. Zero values use 1s and 30s.
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	// Logger for acquisition events. Nil is safe (a discard logger is used).
	Logger *slog.Logger
}

// Lazy is a Sampler whose counter handle is acquired on a background
// goroutine. Until the handle is published Sample returns ErrNotReady.
//
// The acquired sampler is published through an atomic pointer, so the
// goroutine calling Warmup and the goroutine calling Sample need no other
// synchronization.
type Lazy struct {
	cfg    LazyConfig
	logger *slog.Logger

	current  atomic.Pointer[samplerBox]
	opening  atomic.Bool
	failures int // consecutive ErrSamplingUnavailable; touched only by Sample

	mu      sync.Mutex
	ctx     context.Context
	wg      sync.WaitGroup
	lastErr error
}

type samplerBox struct {
	s Sampler
}

// NewLazy creates a Lazy sampler. Call Warmup to begin acquisition.
func NewLazy(cfg LazyConfig) *Lazy {
	if cfg.ReopenAfter == 0 {
		cfg.ReopenAfter = DefaultReopenAfter
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = defaultInitialBackoff
	}
	if cfg.MaxBackoff < cfg.InitialBackoff {
		cfg.MaxBackoff = defaultMaxBackoff
		if cfg.MaxBackoff < cfg.InitialBackoff {
			cfg.MaxBackoff = cfg.InitialBackoff
		}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Lazy{cfg: cfg, logger: logger}
}

// Name returns the configured backend name.
func (l *Lazy) Name() string {
	return l.cfg.Name
}

// Ready reports whether a counter handle has been published.
func (l *Lazy) Ready() bool {
	return l.current.Load() != nil
}

// LastError returns the most recent acquisition error, if any.
func (l *Lazy) LastError() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastErr
}

// Warmup starts acquiring the counter handle in the background and returns
// immediately. Failed acquisitions are retried with exponential backoff until
// one succeeds or ctx is cancelled. Calling Warmup while an acquisition is in
// flight or a handle is already published is a no-op.
func (l *Lazy) Warmup(ctx context.Context) {
	l.mu.Lock()
	l.ctx = ctx
	l.mu.Unlock()
	l.startOpen(ctx)
}

// Wait blocks until every background acquisition started so far has
// finished.
func (l *Lazy) Wait() {
	l.wg.Wait()
}

func (l *Lazy) startOpen(ctx context.Context) {
	if ctx == nil || l.Ready() {
		return
	}
	if !l.opening.CompareAndSwap(false, true) {
		return
	}
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		defer l.opening.Store(false)
		l.acquire(ctx)
	}()
}

func (l *Lazy) acquire(ctx context.Context) {
	backoff := l.cfg.InitialBackoff
	for attempt := 1; ; attempt++ {
		start := time.Now()
		s, err := l.cfg.Open(ctx)
		if err == nil {
			l.current.Store(&samplerBox{s: s})
			l.mu.Lock()
			l.lastErr = nil
			l.mu.Unlock()
			l.logger.Debug("sampler acquired",
				"name", l.cfg.Name,
				"attempt", attempt,
				"duration", time.Since(start).String(),
			)
			return
		}

		l.mu.Lock()
		l.lastErr = err
		l.mu.Unlock()
		l.logger.Warn("sampler acquisition failed",
			"name", l.cfg.Name,
			"attempt", attempt,
			"retry_in", backoff.String(),
			"error", err,
		)

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		backoff *= 2
		if backoff > l.cfg.MaxBackoff {
			backoff = l.cfg.MaxBackoff
		}
	}
}

// Sample returns ErrNotReady until acquisition completes, then delegates to
// the acquired sampler. After ReopenAfter consecutive ErrSamplingUnavailable
// results the handle is dropped and reacquired in the background; Sample
// reports ErrNotReady again until that finishes.
func (l *Lazy) Sample() (float64, error) {
	box := l.current.Load()
	if box == nil {
		return 0, ErrNotReady
	}

	v, err := box.s.Sample()
	if err == nil {
		l.failures = 0
		return v, nil
	}

	if errors.Is(err, ErrSamplingUnavailable) {
		l.failures++
		if l.cfg.ReopenAfter > 0 && l.failures >= l.cfg.ReopenAfter {
			l.failures = 0
			l.reopen(box)
		}
	}
	return 0, err
}

func (l *Lazy) reopen(stale *samplerBox) {
	if !l.current.CompareAndSwap(stale, nil) {
		return
	}
	if c, ok := stale.s.(io.Closer); ok {
		_ = c.Close()
	}

	l.mu.Lock()
	ctx := l.ctx
	l.mu.Unlock()

	l.logger.Warn("sampler unavailable, reacquiring counter", "name", l.cfg.Name)
	l.startOpen(ctx)
}

// Compile-time interface compliance check.
var _ Sampler = (*Lazy)(nil)
