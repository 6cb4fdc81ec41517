package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gitlab.com/tinyland/lab/transparency/cache"
	"gitlab.com/tinyland/lab/transparency/config"
	"gitlab.com/tinyland/lab/transparency/display/render"
	"gitlab.com/tinyland/lab/transparency/display/tui"
	"gitlab.com/tinyland/lab/transparency/history"
	"gitlab.com/tinyland/lab/transparency/internal/format"
	"gitlab.com/tinyland/lab/transparency/scale"
)

var errNoSnapshot = errors.New("no cached history (run the overlay with snapshot enabled first)")

// exportSnapshot renders the cached recent readings to path and, when stdout
// is a terminal, previews the image inline.
func exportSnapshot(cfg *config.Config, path, preview string, logger *slog.Logger, w io.Writer) error {
	store, err := cache.NewStore(cfg.CacheDir, logger)
	if err != nil {
		return err
	}
	// Any age will do: the export is of whatever the overlay last saw.
	snap, _, err := cache.ReadSnapshot(store, 0)
	if err != nil {
		return err
	}
	if snap == nil || len(snap.Recent) == 0 {
		return errNoSnapshot
	}

	scaler := scale.For(cfg.Scale, cfg.HistogramMax, cfg.LinearClamp)
	samples := snapshotSamples(*snap, cfg.Interval(), scaler, cfg.Opacity)

	written, err := render.ExportPNG(samples, cfg.HistogramMax, path, exportOptions(cfg))
	if err != nil {
		return err
	}
	if !isTerminal() {
		fmt.Fprintln(w, written)
		return nil
	}
	fmt.Fprintln(w, format.FileLink(written))

	p := render.ParseProtocol(preview)
	if p == render.ProtocolNone {
		return nil
	}
	data, err := os.ReadFile(written)
	if err != nil {
		return fmt.Errorf("read export: %w", err)
	}
	cols, rows := terminalSize()
	out, err := render.Preview(p, data, cols, max(rows/3, 4))
	if err != nil {
		logger.Warn("export preview failed", slog.String("error", err.Error()))
		return nil
	}
	fmt.Fprintln(w, out)
	return nil
}

// snapshotSamples rebuilds history samples from the raw values of a
// snapshot. Timestamps step back one interval per entry from the newest.
func snapshotSamples(snap cache.Snapshot, interval time.Duration, s scale.Scaler, opacity float64) []history.Sample {
	samples := make([]history.Sample, len(snap.Recent))
	for i, raw := range snap.Recent {
		at := snap.Timestamp.Add(-time.Duration(i) * interval)
		samples[i] = history.NewSample(at, raw, s, opacity)
	}
	return samples
}

func exportOptions(cfg *config.Config) render.ExportOptions {
	opts := render.DefaultExportOptions()
	opts.Background = cfg.Background
	return opts
}

// overlayExporter writes overlay exports into the cache directory under a
// timestamped name.
func overlayExporter(cfg *config.Config, now func() time.Time) tui.Exporter {
	opts := exportOptions(cfg)
	dir := cfg.CacheDir
	return func(samples []history.Sample, max float64) (string, error) {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return "", fmt.Errorf("export: create directory: %w", err)
		}
		name := "histogram-" + now().Format("20060102-150405") + ".png"
		return render.ExportPNG(samples, max, filepath.Join(dir, name), opts)
	}
}
