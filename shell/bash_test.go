package shell

import (
	"strings"
	"testing"
)

func TestGenerateBashIntegration_ContainsKeybinding(t *testing.T) {
	cfg := DefaultIntegrationConfig()
	output := GenerateBashIntegration(cfg)

	if !strings.Contains(output, `bind -x '"\C-t": _transparency_overlay'`) {
		t.Error("output should bind \\C-t to the overlay")
	}
}

func TestGenerateBashIntegration_ContainsFunctions(t *testing.T) {
	cfg := DefaultIntegrationConfig()
	output := GenerateBashIntegration(cfg)

	for _, fn := range []string{"tp-cpu", "tp-export", "tp-keys", "_transparency_prompt"} {
		if !strings.Contains(output, fn+"()") {
			t.Errorf("output should contain function %s()", fn)
		}
	}
}

func TestGenerateBashIntegration_UsesBinaryPath(t *testing.T) {
	cfg := DefaultIntegrationConfig()
	cfg.BinaryPath = "/usr/local/bin/transparency"
	output := GenerateBashIntegration(cfg)

	for _, want := range []string{
		"/usr/local/bin/transparency -segment",
		"/usr/local/bin/transparency -export",
		"/usr/local/bin/transparency -keys",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("output should contain %q", want)
		}
	}
}

func TestGenerateBashIntegration_PromptCommandIdempotent(t *testing.T) {
	output := GenerateBashIntegration(DefaultIntegrationConfig())
	if !strings.Contains(output, `*";_transparency_prompt;"*) ;;`) {
		t.Error("PROMPT_COMMAND hook should guard against double install")
	}
}

func TestGenerateBashIntegration_Header(t *testing.T) {
	output := GenerateBashIntegration(DefaultIntegrationConfig())
	if !strings.HasPrefix(output, "# transparency shell integration for Bash") {
		t.Error("output should start with Bash header comment")
	}
}
