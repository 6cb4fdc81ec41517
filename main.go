// transparency is a compact always-on CPU overlay for the terminal.
//
// It samples system-wide CPU utilization on a fixed interval, keeps a short
// de-duplicated history, and shows either a needle gauge or a histogram of
// recent readings. Colors follow six utilization tiers. A JSON snapshot of
// the newest reading lets a shell prompt print the current value without
// sampling.
//
// Usage:
//
//	transparency [flags]
//
// Flags:
//
//	-config string    Path to configuration file (default: ~/.config/transparency/config.yaml)
//	-view string      Presentation override (gauge|histogram)
//	-interval int     Refresh interval override in milliseconds
//	-scale string     Scaling mode override (log|linear)
//	-segment          Print a one-line prompt segment and exit
//	-export string    Write the cached history as a PNG histogram and exit
//	-preview string   Inline image protocol for -export (auto|kitty|iterm2|unicode|none)
//	-keys             Print the key bindings and exit
//	-shell string     Output shell integration script (bash|zsh|fish)
//	-verbose          Enable debug logging
//	-version          Print version and exit
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"gitlab.com/tinyland/lab/transparency/config"
	"gitlab.com/tinyland/lab/transparency/display/color"
	"gitlab.com/tinyland/lab/transparency/display/tui"
	"gitlab.com/tinyland/lab/transparency/scale"
	"gitlab.com/tinyland/lab/transparency/shell"
)

func main() {
	var (
		configPath  = flag.String("config", "", "Path to configuration file (default: ~/.config/transparency/config.yaml)")
		viewFlag    = flag.String("view", "", "Presentation override (gauge|histogram)")
		intervalMS  = flag.Int("interval", 0, "Refresh interval override in milliseconds")
		scaleFlag   = flag.String("scale", "", "Scaling mode override (log|linear)")
		runSegment  = flag.Bool("segment", false, "Print a one-line prompt segment and exit")
		exportPath  = flag.String("export", "", "Write the cached history as a PNG histogram and exit")
		previewFlag = flag.String("preview", "auto", "Inline image protocol for -export (auto|kitty|iterm2|unicode|none)")
		showKeys    = flag.Bool("keys", false, "Print the key bindings and exit")
		shellType   = flag.String("shell", "", "Output shell integration script (bash|zsh|fish)")
		verbose     = flag.Bool("verbose", false, "Enable debug logging")
		showVersion = flag.Bool("version", false, "Print version and exit")
	)
	flag.Parse()

	// ---------------------------------------------------------------
	// Commands that don't require config
	// ---------------------------------------------------------------

	if *showVersion {
		fmt.Printf("transparency %s (%s) built %s\n", version, commit, date)
		os.Exit(0)
	}

	if *showKeys {
		fmt.Print(tui.DefaultRegistry().FormatTable())
		os.Exit(0)
	}

	if *shellType != "" {
		st, err := shell.ParseShellType(*shellType)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		ic := shell.DefaultIntegrationConfig()
		ic.ConfigPath = *configPath
		fmt.Print(shell.GenerateIntegration(st, ic))
		os.Exit(0)
	}

	// ---------------------------------------------------------------
	// Load configuration (required for remaining modes)
	// ---------------------------------------------------------------

	path := *configPath
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	// The file config is kept apart so overlay changes can be saved
	// without the command-line overrides.
	fileCfg := *cfg
	fileCfg.Normalize()
	applyOverrides(cfg, overrides{
		View:       *viewFlag,
		IntervalMS: *intervalMS,
		Scale:      *scaleFlag,
	})
	corrections := cfg.Normalize()

	logger, closeLog, err := newLogger(cfg, *verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open log: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()
	slog.SetDefault(logger)

	for _, c := range corrections {
		logger.Warn("config: using default", slog.String("error", c.Error()))
	}

	// ---------------------------------------------------------------
	// Context with signal handling
	// ---------------------------------------------------------------

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	// ---------------------------------------------------------------
	// Segment mode
	// ---------------------------------------------------------------

	if *runSegment {
		color.Apply(os.Stdout)
		line, err := segment(ctx, cfg, logger)
		if err != nil {
			logger.Warn("segment failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		fmt.Print(line)
		os.Exit(0)
	}

	// ---------------------------------------------------------------
	// Export mode
	// ---------------------------------------------------------------

	if *exportPath != "" {
		if err := exportSnapshot(cfg, *exportPath, *previewFlag, logger, os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "export failed: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	// ---------------------------------------------------------------
	// Overlay mode (default)
	// ---------------------------------------------------------------

	if err := runOverlay(ctx, cfg, &fileCfg, path, logger); err != nil {
		fmt.Fprintf(os.Stderr, "transparency: %v\n", err)
		closeLog()
		os.Exit(1)
	}
}

// overrides carries command-line values that take precedence over the file.
// Zero values leave the configured field untouched.
type overrides struct {
	View       string
	IntervalMS int
	Scale      string
}

// applyOverrides copies the non-empty flag values into cfg. Validation is
// left to Normalize so a bad flag gets the same warning as a bad file.
func applyOverrides(cfg *config.Config, o overrides) {
	if o.View != "" {
		cfg.View = config.View(o.View)
	}
	if o.IntervalMS != 0 {
		cfg.RefreshMS = o.IntervalMS
	}
	if o.Scale != "" {
		cfg.Scale = scale.Mode(o.Scale)
	}
}
