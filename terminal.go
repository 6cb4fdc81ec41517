package main

import (
	"os"
	"strconv"

	"github.com/charmbracelet/x/term"
)

// terminalSize returns the dimensions of stdout. It asks the TTY first,
// then COLUMNS/LINES, and finally falls back to 80x24.
func terminalSize() (width, height int) {
	return detectSize(func() (int, int, error) {
		return term.GetSize(os.Stdout.Fd())
	}, os.Getenv)
}

func detectSize(getSize func() (int, int, error), getenv func(string) string) (width, height int) {
	if w, h, err := getSize(); err == nil && w > 0 && h > 0 {
		return w, h
	}

	if cols := getenv("COLUMNS"); cols != "" {
		if w, err := strconv.Atoi(cols); err == nil && w > 0 {
			width = w
		}
	}
	if lines := getenv("LINES"); lines != "" {
		if h, err := strconv.Atoi(lines); err == nil && h > 0 {
			height = h
		}
	}

	if width == 0 {
		width = 80
	}
	if height == 0 {
		height = 24
	}
	return width, height
}

// isTerminal reports whether stdout is attached to a terminal.
func isTerminal() bool {
	return term.IsTerminal(os.Stdout.Fd())
}
