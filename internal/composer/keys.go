// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package composer

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the composer's bindings.
type KeyMap struct {
	Submit         key.Binding
	Newline        key.Binding
	ToggleAdvanced key.Binding
	MoreChunks     key.Binding
	FewerChunks    key.Binding
}

// DefaultKeyMap returns the default composer bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Enter", "ask"),
		),
		Newline: key.NewBinding(
			key.WithKeys("alt+enter", "ctrl+j"),
			key.WithHelp("Alt+Enter/C-j", "new line"),
		),
		ToggleAdvanced: key.NewBinding(
			key.WithKeys("ctrl+o"),
			key.WithHelp("C-o", "advanced"),
		),
		MoreChunks: key.NewBinding(
			key.WithKeys("alt+up", "ctrl+up"),
			key.WithHelp("Alt+Up", "more chunks"),
		),
		FewerChunks: key.NewBinding(
			key.WithKeys("alt+down", "ctrl+down"),
			key.WithHelp("Alt+Down", "fewer chunks"),
		),
	}
}

// ShortHelp returns the bindings shown in the footer.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.Newline, k.ToggleAdvanced}
}
