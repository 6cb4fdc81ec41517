package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/charmbracelet/lipgloss"

	"gitlab.com/tinyland/lab/transparency/cache"
	"gitlab.com/tinyland/lab/transparency/collectors"
	"gitlab.com/tinyland/lab/transparency/collectors/cpu"
	"gitlab.com/tinyland/lab/transparency/config"
	"gitlab.com/tinyland/lab/transparency/internal/format"
	"gitlab.com/tinyland/lab/transparency/tier"
)

const (
	// segmentWindow is how long a direct sample measures over when no
	// fresh snapshot exists.
	segmentWindow = 250 * time.Millisecond

	// openTimeout bounds counter acquisition for one-shot commands.
	openTimeout = 5 * time.Second
)

// segment returns the prompt line for the current CPU reading. A snapshot
// younger than three refresh intervals is used as is; otherwise the
// configured backend is sampled once.
func segment(ctx context.Context, cfg *config.Config, logger *slog.Logger) (string, error) {
	if raw, ok := freshSnapshot(cfg, logger); ok {
		return formatSegment(raw), nil
	}

	open, err := cpu.NewRegistry().Get(cfg.Sampler)
	if err != nil {
		return "", err
	}
	raw, err := sampleOnce(ctx, open, segmentWindow)
	if err != nil {
		return "", err
	}
	return formatSegment(raw), nil
}

func freshSnapshot(cfg *config.Config, logger *slog.Logger) (float64, bool) {
	store, err := cache.NewStore(cfg.CacheDir, logger)
	if err != nil {
		logger.Debug("segment: open cache", slog.String("error", err.Error()))
		return 0, false
	}
	snap, fresh, err := cache.ReadSnapshot(store, 3*cfg.Interval())
	if err != nil {
		logger.Debug("segment: read snapshot", slog.String("error", err.Error()))
		return 0, false
	}
	if snap == nil {
		return 0, false
	}
	if !fresh {
		logger.Debug("segment: snapshot stale", slog.Duration("age", store.Age(cache.SnapshotKey)))
		return 0, false
	}
	return snap.Raw, true
}

// sampleOnce acquires a sampler, waits window so the counters advance, and
// returns one reading.
func sampleOnce(ctx context.Context, open collectors.Opener, window time.Duration) (float64, error) {
	openCtx, cancel := context.WithTimeout(ctx, openTimeout)
	defer cancel()

	s, err := open(openCtx)
	if err != nil {
		return 0, fmt.Errorf("open sampler: %w", err)
	}

	timer := time.NewTimer(window)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	case <-timer.C:
	}

	return s.Sample()
}

// formatSegment renders "CPU 42%" in the tier color.
func formatSegment(raw float64) string {
	sw := tier.Style(tier.For(raw))
	return lipgloss.NewStyle().Foreground(sw.Color).Render("CPU " + format.Percent(raw))
}
