package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap centralizes all key bindings.
type KeyMap struct {
	Quit       key.Binding
	Submit     key.Binding
	ToggleMode key.Binding
	Refresh    key.Binding
	Test       key.Binding
	ScrollUp   key.Binding
	ScrollDown key.Binding
}

func defaultKeyMap() KeyMap {
	return KeyMap{
		Quit:       key.NewBinding(key.WithKeys("ctrl+c", "ctrl+d"), key.WithHelp("ctrl+c", "quit")),
		Submit:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "run")),
		ToggleMode: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "natural/direct")),
		Refresh:    key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "refresh logs")),
		Test:       key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("ctrl+t", "test connection")),
		ScrollUp:   key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "scroll up")),
		ScrollDown: key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdn", "scroll down")),
	}
}

// shortHelp renders the bindings shown under the prompt.
func (k KeyMap) shortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.ToggleMode, k.Refresh, k.Test, k.Quit}
}
