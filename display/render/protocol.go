package render

import (
	"os"
	"strings"
)

// ImageProtocol is a terminal inline image protocol used to preview an
// exported histogram.
type ImageProtocol int

const (
	// ProtocolKitty uses the Kitty Graphics Protocol (Ghostty, Kitty, WezTerm).
	ProtocolKitty ImageProtocol = iota
	// ProtocolITerm2 uses the iTerm2 inline images protocol.
	ProtocolITerm2
	// ProtocolUnicode uses half-block characters with 24-bit ANSI color.
	ProtocolUnicode
	// ProtocolNone disables the preview.
	ProtocolNone
)

func (p ImageProtocol) String() string {
	switch p {
	case ProtocolKitty:
		return "kitty"
	case ProtocolITerm2:
		return "iterm2"
	case ProtocolUnicode:
		return "unicode"
	case ProtocolNone:
		return "none"
	default:
		return "unknown"
	}
}

// DetectProtocol picks an inline image protocol from the environment.
// Graphics protocols are not forwarded reliably over SSH or through tmux,
// so those sessions fall back to half-blocks.
func DetectProtocol() ImageProtocol {
	return detectProtocol(os.Getenv)
}

func detectProtocol(getenv func(string) string) ImageProtocol {
	if getenv("SSH_CLIENT") != "" || getenv("SSH_CONNECTION") != "" || getenv("SSH_TTY") != "" {
		return ProtocolUnicode
	}
	tmux := getenv("TMUX") != ""

	switch strings.ToLower(getenv("TERM_PROGRAM")) {
	case "ghostty", "kitty", "wezterm":
		if tmux {
			return ProtocolUnicode
		}
		return ProtocolKitty
	case "iterm.app":
		return ProtocolITerm2
	}

	if getenv("TERM") == "xterm-kitty" || getenv("KITTY_WINDOW_ID") != "" {
		if tmux {
			return ProtocolUnicode
		}
		return ProtocolKitty
	}
	if getenv("ITERM_SESSION_ID") != "" || getenv("LC_TERMINAL") == "iTerm2" {
		return ProtocolITerm2
	}
	return ProtocolUnicode
}

// ParseProtocol maps a flag value to a protocol. "auto" and "" detect.
func ParseProtocol(s string) ImageProtocol {
	switch strings.ToLower(s) {
	case "kitty":
		return ProtocolKitty
	case "iterm2":
		return ProtocolITerm2
	case "unicode":
		return ProtocolUnicode
	case "none", "off":
		return ProtocolNone
	default:
		return DetectProtocol()
	}
}
