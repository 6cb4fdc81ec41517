// Package shell generates shell integration scripts for transparency.
//
// Each supported shell gets a generator function that produces a script snippet
// users can source in their shell RC file (~/.bashrc, ~/.zshrc, etc.). The
// generated scripts provide:
//
//   - A prompt hook that shows the cached CPU reading via -segment
//   - A keybinding (default Ctrl+T) to open the overlay
//   - Convenience functions for one-shot readings and PNG export
package shell

import (
	"fmt"
	"strings"
)

// ShellType identifies a supported shell.
type ShellType int

const (
	// Bash is the Bourne Again Shell.
	Bash ShellType = iota
	// Zsh is the Z Shell.
	Zsh
	// Fish is the Friendly Interactive Shell.
	Fish
)

// String returns the lowercase name of the shell type.
func (s ShellType) String() string {
	switch s {
	case Bash:
		return "bash"
	case Zsh:
		return "zsh"
	case Fish:
		return "fish"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// ParseShellType maps a flag value to a ShellType.
func ParseShellType(s string) (ShellType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bash":
		return Bash, nil
	case "zsh":
		return Zsh, nil
	case "fish":
		return Fish, nil
	default:
		return 0, fmt.Errorf("shell: unknown shell %q (supported: bash, zsh, fish)", s)
	}
}

// IntegrationConfig controls how the generated shell integration behaves.
type IntegrationConfig struct {
	// BinaryPath is the path to the transparency binary.
	BinaryPath string
	// ConfigPath is passed to every invocation when set.
	ConfigPath string
	// OverlayKeybinding is the key combo that opens the overlay
	// (readline notation, default "\C-t").
	OverlayKeybinding string
	// PromptSegment adds the CPU reading to the prompt.
	PromptSegment bool
}

// DefaultIntegrationConfig returns an IntegrationConfig with sensible defaults.
// It assumes transparency is available on PATH and uses the standard XDG config
// location.
func DefaultIntegrationConfig() IntegrationConfig {
	return IntegrationConfig{
		BinaryPath:        "transparency",
		OverlayKeybinding: `\C-t`,
		PromptSegment:     true,
	}
}

// command returns the binary invocation, with -config when one is set.
func (c IntegrationConfig) command() string {
	if c.ConfigPath == "" {
		return c.BinaryPath
	}
	return fmt.Sprintf("%s -config %q", c.BinaryPath, c.ConfigPath)
}

// GenerateIntegration dispatches to the appropriate shell-specific generator.
func GenerateIntegration(shell ShellType, cfg IntegrationConfig) string {
	switch shell {
	case Bash:
		return GenerateBashIntegration(cfg)
	case Zsh:
		return GenerateZshIntegration(cfg)
	case Fish:
		return GenerateFishIntegration(cfg)
	default:
		return fmt.Sprintf("# transparency: %s integration is not implemented\n", shell)
	}
}
