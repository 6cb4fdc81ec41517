package shell

import (
	"fmt"
	"strings"
)

// GenerateBashIntegration returns a Bash script snippet that provides
// transparency shell integration. Source the output in ~/.bashrc.
func GenerateBashIntegration(cfg IntegrationConfig) string {
	var b strings.Builder
	fmt.Fprintf(&b, `# transparency shell integration for Bash
# Source this in your ~/.bashrc or ~/.bash_profile

# Open the CPU overlay with %[2]s
_transparency_overlay() {
    %[1]s
}
bind -x '"%[2]s": _transparency_overlay'

# Print the current CPU reading
tp-cpu() {
    %[1]s -segment
    echo
}

# Export the recent history as a PNG
tp-export() {
    %[1]s -export "${1:-cpu-histogram.png}"
}

# Show all keybindings
tp-keys() {
    %[1]s -keys
}
`, cfg.command(), cfg.OverlayKeybinding)

	if cfg.PromptSegment {
		fmt.Fprintf(&b, `
# CPU reading in the prompt, read from the overlay snapshot
_transparency_prompt() {
    TRANSPARENCY_SEGMENT="$(%[1]s -segment 2>/dev/null)"
}
case ";${PROMPT_COMMAND};" in
    *";_transparency_prompt;"*) ;;
    *) PROMPT_COMMAND="_transparency_prompt${PROMPT_COMMAND:+;$PROMPT_COMMAND}" ;;
esac
PS1='${TRANSPARENCY_SEGMENT:+[$TRANSPARENCY_SEGMENT] }'"${PS1}"
`, cfg.command())
	}
	return b.String()
}
