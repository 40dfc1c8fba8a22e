// Package keymap defines keybindings for the interactive question prompt.
package keymap

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines the prompt keybindings.
type KeyMap struct {
	// Submit sends the question.
	Submit key.Binding

	// Cancel leaves the prompt without asking.
	Cancel key.Binding

	// Clear empties the input.
	Clear key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "preguntar"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc", "ctrl+c"),
			key.WithHelp("esc", "salir"),
		),
		Clear: key.NewBinding(
			key.WithKeys("ctrl+u"),
			key.WithHelp("ctrl+u", "borrar"),
		),
	}
}

// ShortHelp returns the bindings shown under the prompt.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.Clear, k.Cancel}
}

// Matches checks if a key string matches a binding.
func Matches(keyStr string, binding key.Binding) bool {
	for _, k := range binding.Keys() {
		if k == keyStr {
			return true
		}
	}
	return false
}
