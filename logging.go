package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"gitlab.com/tinyland/lab/transparency/config"
)

// newLogger builds the process logger. The terminal belongs to the overlay,
// so records go to the configured log file or nowhere. The returned close
// func is safe to call more than once.
func newLogger(cfg *config.Config, verbose bool) (*slog.Logger, func(), error) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	if !cfg.Logging || cfg.LogFile == "" {
		return slog.New(slog.NewTextHandler(io.Discard, opts)), func() {}, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err != nil {
		return nil, nil, fmt.Errorf("log: create directory: %w", err)
	}
	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("log: open %s: %w", cfg.LogFile, err)
	}

	var once sync.Once
	closeFn := func() {
		once.Do(func() { _ = f.Close() })
	}
	return slog.New(slog.NewTextHandler(f, opts)), closeFn, nil
}
