package components

import "charm.land/bubbles/v2/key"

// KeyMap is the set of bindings shared by all screens.
type KeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Next    key.Binding
	Prev    key.Binding
	Choose  key.Binding
	Confirm key.Binding
	Back    key.Binding
	Theme   key.Binding
	History key.Binding
	Quit    key.Binding
}

// Keys is the application key map.
var Keys = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑", "hoch"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓", "runter"),
	),
	Next: key.NewBinding(
		key.WithKeys("right", "l", "tab"),
		key.WithHelp("→", "weiter"),
	),
	Prev: key.NewBinding(
		key.WithKeys("left", "h", "shift+tab"),
		key.WithHelp("←", "zurück"),
	),
	Choose: key.NewBinding(
		key.WithKeys("space"),
		key.WithHelp("Leertaste", "auswählen"),
	),
	Confirm: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("Enter", "bestätigen"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("Esc", "zurück"),
	),
	Theme: key.NewBinding(
		key.WithKeys("t"),
		key.WithHelp("t", "Farbschema"),
	),
	History: key.NewBinding(
		key.WithKeys("v"),
		key.WithHelp("v", "Verlauf"),
	),
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("Ctrl+C", "beenden"),
	),
}

// DigitIndex maps the keys "1".."9" to a zero-based index.
func DigitIndex(s string) (int, bool) {
	if len(s) != 1 || s[0] < '1' || s[0] > '9' {
		return 0, false
	}
	return int(s[0] - '1'), true
}
