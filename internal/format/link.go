package format

import (
	"fmt"
	"net/url"
	"path/filepath"
)

// Link creates an OSC 8 hyperlink escape sequence.
// Terminal emulators that support OSC 8 (Ghostty, iTerm2, WezTerm, etc.)
// render the text as a clickable hyperlink. Unsupported terminals display
// the text without the link.
func Link(target, text string) string {
	return fmt.Sprintf("\033]8;;%s\033\\%s\033]8;;\033\\", target, text)
}

// FileLink returns path as a clickable file:// hyperlink labelled with the
// path itself.
func FileLink(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
	return Link(u.String(), path)
}
