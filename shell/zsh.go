package shell

import (
	"fmt"
	"strings"
)

// GenerateZshIntegration returns a Zsh script snippet that provides
// transparency shell integration. Source the output in ~/.zshrc.
func GenerateZshIntegration(cfg IntegrationConfig) string {
	var b strings.Builder
	fmt.Fprintf(&b, `# transparency shell integration for Zsh
# Source this in your ~/.zshrc

# Open the CPU overlay with Ctrl+T
_transparency_overlay() {
    BUFFER=""
    zle reset-prompt
    %[1]s
    zle reset-prompt
}
zle -N _transparency_overlay
bindkey '^T' _transparency_overlay

# Print the current CPU reading
tp-cpu() {
    %[1]s -segment
    echo
}

# Export the recent history as a PNG
tp-export() {
    %[1]s -export "${1:-cpu-histogram.png}"
}

# Zsh completion for transparency
_transparency_completion() {
    local -a commands
    commands=(
        '-segment:Print a one-line prompt segment'
        '-export:Write the cached history as a PNG'
        '-view:Presentation override'
        '-interval:Refresh interval in milliseconds'
        '-scale:Scaling mode override'
        '-keys:Print the key bindings'
        '-config:Config file path'
        '-version:Show version'
        '-verbose:Debug logging'
    )
    _describe 'transparency' commands
}
compdef _transparency_completion transparency
`, cfg.command())

	if cfg.PromptSegment {
		fmt.Fprintf(&b, `
# CPU reading in the right prompt, read from the overlay snapshot
autoload -Uz add-zsh-hook
_transparency_prompt() {
    TRANSPARENCY_SEGMENT="$(%[1]s -segment 2>/dev/null)"
}
add-zsh-hook precmd _transparency_prompt
setopt prompt_subst
RPROMPT='${TRANSPARENCY_SEGMENT}'"${RPROMPT}"
`, cfg.command())
	}
	return b.String()
}
