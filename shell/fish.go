package shell

import (
	"fmt"
	"strings"
)

// GenerateFishIntegration returns a Fish shell script snippet that provides
// transparency keybindings, helper functions, and tab completions.
func GenerateFishIntegration(cfg IntegrationConfig) string {
	var b strings.Builder
	fmt.Fprintf(&b, `# transparency shell integration for Fish

# Open the CPU overlay with Ctrl+T
function _transparency_overlay
    commandline -f repaint
    %[1]s
    commandline -f repaint
end
bind \ct _transparency_overlay

# Print the current CPU reading
function tp-cpu -d "Print the current CPU reading"
    %[1]s -segment
    echo
end

# Export the recent history as a PNG
function tp-export -d "Export CPU history as PNG"
    set -l out cpu-histogram.png
    if set -q argv[1]
        set out $argv[1]
    end
    %[1]s -export $out
end

# Completions
complete -c %[2]s -o segment -d "Print a one-line prompt segment"
complete -c %[2]s -o export -d "Write the cached history as a PNG" -rF
complete -c %[2]s -o view -d "Presentation override" -xa "gauge histogram"
complete -c %[2]s -o scale -d "Scaling mode override" -xa "log linear"
complete -c %[2]s -o interval -d "Refresh interval in milliseconds" -x
complete -c %[2]s -o keys -d "Print the key bindings"
complete -c %[2]s -o config -d "Config file path" -rF
complete -c %[2]s -o version -d "Show version"
`, cfg.command(), cfg.BinaryPath)

	if cfg.PromptSegment {
		fmt.Fprintf(&b, `
# CPU reading in the right prompt, read from the overlay snapshot
function fish_right_prompt
    %[1]s -segment 2>/dev/null
end
`, cfg.command())
	}
	return b.String()
}
