package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

// KeyCategory groups keybindings by function.
type KeyCategory string

const (
	CategoryView    KeyCategory = "view"
	CategoryRefresh KeyCategory = "refresh"
	CategorySystem  KeyCategory = "system"
)

// KeyEntry represents a single registered keybinding with metadata.
type KeyEntry struct {
	// Binding is the charmbracelet key binding.
	Binding key.Binding
	// Category groups this binding by function.
	Category KeyCategory
}

// KeyRegistry lists every overlay keybinding for documentation output.
type KeyRegistry struct {
	Entries []KeyEntry
}

// DefaultRegistry returns the registry of the bindings the overlay handles.
func DefaultRegistry() *KeyRegistry {
	return &KeyRegistry{
		Entries: []KeyEntry{
			{Binding: keys.View, Category: CategoryView},
			{Binding: keys.Scale, Category: CategoryView},
			{Binding: keys.OpacityDown, Category: CategoryView},
			{Binding: keys.OpacityUp, Category: CategoryView},
			{Binding: keys.Slower, Category: CategoryRefresh},
			{Binding: keys.Faster, Category: CategoryRefresh},
			{Binding: keys.Export, Category: CategorySystem},
			{Binding: keys.Help, Category: CategorySystem},
			{Binding: keys.Quit, Category: CategorySystem},
		},
	}
}

// ByCategory returns all entries matching the given category.
func (r *KeyRegistry) ByCategory(cat KeyCategory) []KeyEntry {
	var result []KeyEntry
	for _, e := range r.Entries {
		if e.Category == cat {
			result = append(result, e)
		}
	}
	return result
}

// HasDuplicateKeys checks for keys bound more than once.
// Returns a list of conflicts (empty if none).
func (r *KeyRegistry) HasDuplicateKeys() []string {
	seen := make(map[string]string)
	var conflicts []string

	for _, e := range r.Entries {
		for _, k := range e.Binding.Keys() {
			if existing, ok := seen[k]; ok {
				conflicts = append(conflicts, fmt.Sprintf(
					"duplicate key %q: %s vs %s", k, existing, e.Binding.Help().Desc))
			} else {
				seen[k] = e.Binding.Help().Desc
			}
		}
	}

	return conflicts
}

// FormatTable returns a formatted table of all keybindings.
func (r *KeyRegistry) FormatTable() string {
	var sb strings.Builder

	for _, cat := range []KeyCategory{CategoryView, CategoryRefresh, CategorySystem} {
		entries := r.ByCategory(cat)
		if len(entries) == 0 {
			continue
		}

		fmt.Fprintf(&sb, "\n%s:\n", strings.ToUpper(string(cat)))
		sb.WriteString(strings.Repeat("-", 40) + "\n")

		for _, e := range entries {
			keysStr := strings.Join(e.Binding.Keys(), ", ")
			fmt.Fprintf(&sb, "  %-16s  %s\n", keysStr, e.Binding.Help().Desc)
		}
	}

	return sb.String()
}
