package format

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestLink(t *testing.T) {
	got := Link("https://example.com", "site")
	want := "\033]8;;https://example.com\033\\site\033]8;;\033\\"
	if got != want {
		t.Errorf("Link = %q, want %q", got, want)
	}
}

func TestFileLink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cpu histogram.png")
	got := FileLink(path)
	if !strings.Contains(got, "file://") {
		t.Errorf("FileLink = %q, want a file:// target", got)
	}
	if !strings.Contains(got, "cpu%20histogram.png") {
		t.Errorf("FileLink = %q, want an escaped target", got)
	}
	if !strings.Contains(got, "\033\\"+path+"\033]8;;") {
		t.Errorf("FileLink = %q, want the path as label", got)
	}
}
