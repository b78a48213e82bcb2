package components

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/medienreflexion/internal/content"
	"github.com/abhisek/medienreflexion/internal/ui/theme"
)

// OptionChosenMsg reports that the user picked an option in an OptionList.
type OptionChosenMsg struct {
	Value int
}

// OptionList is the vertical answer scale of a question. Cursor is the
// highlighted row; Chosen marks the recorded answer, if any.
type OptionList struct {
	Options   []content.Option
	Cursor    int
	Chosen    int
	HasChoice bool
}

// NewOptionList creates a list with the cursor on the recorded answer, or
// on the first option when there is none.
func NewOptionList(options []content.Option, value int, answered bool) OptionList {
	l := OptionList{Options: options}
	if answered {
		l.SetChosen(value)
	}
	return l
}

// SetChosen marks value as the recorded answer and moves the cursor to it.
func (l *OptionList) SetChosen(value int) {
	for i, o := range l.Options {
		if o.Value == value {
			l.Cursor = i
			l.Chosen = value
			l.HasChoice = true
			return
		}
	}
}

// Highlighted returns the option under the cursor.
func (l OptionList) Highlighted() content.Option {
	return l.Options[l.Cursor]
}

// Update handles cursor movement. Space and digit keys emit OptionChosenMsg.
func (l OptionList) Update(msg tea.Msg) (OptionList, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok || len(l.Options) == 0 {
		return l, nil
	}

	switch {
	case key.Matches(kmsg, Keys.Up):
		if l.Cursor > 0 {
			l.Cursor--
		}
	case key.Matches(kmsg, Keys.Down):
		if l.Cursor < len(l.Options)-1 {
			l.Cursor++
		}
	case key.Matches(kmsg, Keys.Choose):
		return l, l.choose()
	default:
		if i, ok := DigitIndex(kmsg.String()); ok && i < len(l.Options) {
			l.Cursor = i
			return l, l.choose()
		}
	}
	return l, nil
}

func (l OptionList) choose() tea.Cmd {
	v := l.Highlighted().Value
	return func() tea.Msg { return OptionChosenMsg{Value: v} }
}

// View renders one row per option.
func (l OptionList) View() string {
	var b strings.Builder
	for i, o := range l.Options {
		mark := "○"
		if l.HasChoice && o.Value == l.Chosen {
			mark = "●"
		}
		prefix := "  "
		if i == l.Cursor {
			prefix = "▸ "
		}

		line := fmt.Sprintf("%s%s %d) %s", prefix, mark, i+1, o.Label)
		switch {
		case i == l.Cursor:
			b.WriteString(theme.Selected.Render(line))
		case l.HasChoice && o.Value == l.Chosen:
			b.WriteString(lipgloss.NewStyle().Foreground(theme.Secondary).Render(line))
		default:
			b.WriteString(theme.Unselected.Render(line))
		}
		b.WriteString("\n")
	}
	return b.String()
}
