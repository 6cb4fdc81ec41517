package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"gitlab.com/tinyland/lab/transparency/cache"
	"gitlab.com/tinyland/lab/transparency/collectors"
	"gitlab.com/tinyland/lab/transparency/collectors/cpu"
	"gitlab.com/tinyland/lab/transparency/config"
	"gitlab.com/tinyland/lab/transparency/display/tui"
	"gitlab.com/tinyland/lab/transparency/history"
	"gitlab.com/tinyland/lab/transparency/refresh"
)

var errNoTerminal = errors.New("the overlay needs a terminal (use -segment for pipes)")

// consumers builds the fan-out the refresh loop publishes to: the overlay
// program first, then the snapshot writer when enabled. With snapshots off,
// a snapshot left by an earlier run is removed so prompts stop showing it.
func consumers(cfg *config.Config, send func(tea.Msg), logger *slog.Logger) refresh.Fanout {
	out := refresh.Fanout{
		refresh.ConsumerFunc(func(u refresh.Update) {
			send(tui.UpdateMsg(u))
		}),
	}
	store, err := cache.NewStore(cfg.CacheDir, logger)
	if err != nil {
		logger.Warn("snapshot disabled", slog.String("error", err.Error()))
		return out
	}
	if !cfg.Snapshot {
		if err := store.Remove(cache.SnapshotKey); err != nil {
			logger.Warn("remove stale snapshot", slog.String("error", err.Error()))
		}
		return out
	}
	return append(out, cache.NewSnapshotWriter(store))
}

// runOverlay wires sampler, refresh loop and overlay program together and
// blocks until the user quits or ctx is cancelled. Configuration changes
// made in the overlay are saved to cfgPath on the way out, on top of file,
// the configuration as loaded before any overrides.
func runOverlay(ctx context.Context, cfg, file *config.Config, cfgPath string, logger *slog.Logger) (err error) {
	if !isTerminal() {
		return errNoTerminal
	}

	open, err := cpu.NewRegistry().Get(cfg.Sampler)
	if err != nil {
		return err
	}
	sampler := collectors.NewLazy(collectors.LazyConfig{
		Name:   cfg.Sampler,
		Open:   open,
		Logger: logger,
	})

	// The program is created after the loop because the model drives the
	// loop; the loop is not started until the program exists.
	var program *tea.Program
	loop := refresh.New(refresh.Options{
		Sampler:  sampler,
		Buffer:   history.NewBuffer(history.DefaultCapacity),
		Consumer: consumers(cfg, func(msg tea.Msg) { program.Send(msg) }, logger),
		Logger:   logger,
		Interval: cfg.Interval(),
		Settings: refresh.Settings{Scaler: cfg.Scaler(), Opacity: cfg.Opacity},
	})

	model := tui.NewModel(tui.Options{
		Config:      *cfg,
		Controller:  loop,
		Exporter:    overlayExporter(cfg, time.Now),
		SamplerName: cfg.Sampler,
		Logger:      logger,
	})
	program = tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)

	defer func() {
		if r := recover(); r != nil {
			// Attempt to restore terminal from alt-screen before reporting.
			fmt.Print("\x1b[?1049l\x1b[?25h")
			err = fmt.Errorf("overlay panic: %v", r)
		}
	}()

	// Acquisition retries until it succeeds, so it gets its own context
	// that is cancelled once the program is gone.
	warmCtx, cancelWarm := context.WithCancel(ctx)
	defer cancelWarm()
	sampler.Warmup(warmCtx)
	if err := loop.Start(); err != nil {
		return err
	}
	logger.Info("overlay started",
		slog.String("sampler", cfg.Sampler),
		slog.Duration("interval", cfg.Interval()),
		slog.String("view", string(cfg.View)),
	)

	final, runErr := program.Run()
	loop.Shutdown()
	cancelWarm()
	sampler.Wait()

	stats := loop.Stats()
	logger.Info("overlay stopped",
		slog.Int64("ticks", stats.Ticks),
		slog.Int64("appended", stats.Appended),
		slog.Int64("failures", stats.Failures),
	)

	if m, ok := final.(tui.Model); ok {
		saveChanges(m, *cfg, *file, cfgPath, logger)
	}

	if runErr != nil && !errors.Is(runErr, tea.ErrProgramKilled) {
		return runErr
	}
	return nil
}

// saveChanges persists the settings the user changed in the overlay.
// started is the configuration the overlay was seeded with; only fields
// that differ from it are written over file.
func saveChanges(m tui.Model, started, file config.Config, path string, logger *slog.Logger) {
	changed, dirty := m.Config()
	if !dirty {
		return
	}
	merged := mergeChanges(file, started, changed)
	if err := config.SaveConfig(&merged, path); err != nil {
		logger.Warn("config save failed", slog.String("path", path), slog.String("error", err.Error()))
		fmt.Fprintf(os.Stderr, "transparency: could not save settings: %v\n", err)
		return
	}
	logger.Info("config saved", slog.String("path", path))
}

// mergeChanges copies the overlay-adjustable fields that changed between
// started and changed onto file.
func mergeChanges(file, started, changed config.Config) config.Config {
	if changed.RefreshMS != started.RefreshMS {
		file.RefreshMS = changed.RefreshMS
	}
	if changed.Opacity != started.Opacity {
		file.Opacity = changed.Opacity
	}
	if changed.View != started.View {
		file.View = changed.View
	}
	if changed.Scale != started.Scale {
		file.Scale = changed.Scale
	}
	return file
}
