// Package quiz presents one question at a time during PhaseAnswering.
package quiz

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/medienreflexion/internal/screen"
	"github.com/abhisek/medienreflexion/internal/screens/flow"
	"github.com/abhisek/medienreflexion/internal/session"
	"github.com/abhisek/medienreflexion/internal/ui/components"
	"github.com/abhisek/medienreflexion/internal/ui/layout"
	"github.com/abhisek/medienreflexion/internal/ui/theme"
)

// HintAnswerRequired is shown when the user tries to move on without an
// answer.
const HintAnswerRequired = "Bitte wählen Sie eine Antwort aus."

// QuizScreen implements screen.Screen for PhaseAnswering.
type QuizScreen struct {
	flow    *flow.Flow
	options components.OptionList
	hint    string
}

var _ screen.Screen = (*QuizScreen)(nil)
var _ screen.KeyHintProvider = (*QuizScreen)(nil)
var _ screen.StatusProvider = (*QuizScreen)(nil)

// New creates the question screen for f.
func New(f *flow.Flow) *QuizScreen {
	s := &QuizScreen{flow: f}
	s.syncOptions()
	return s
}

func (s *QuizScreen) Init() tea.Cmd {
	return nil
}

func (s *QuizScreen) Title() string {
	return "Fragebogen"
}

func (s *QuizScreen) Status() string {
	sess := s.flow.Session
	return fmt.Sprintf("Frage %d/%d", sess.Cursor()+1, len(sess.Questionnaire().Questions))
}

func (s *QuizScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Antwort"},
		{Key: "1-5", Description: "Wählen"},
		{Key: "Enter", Description: "Wählen & weiter"},
		{Key: "←→", Description: "Zurück/Weiter"},
	}
}

func (s *QuizScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case components.OptionChosenMsg:
		return s, s.choose(msg.Value)

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, components.Keys.Confirm):
			if cmd := s.choose(s.options.Highlighted().Value); cmd != nil {
				return s, cmd
			}
			return s, s.advance()
		case key.Matches(msg, components.Keys.Next):
			return s, s.advance()
		case key.Matches(msg, components.Keys.Prev, components.Keys.Back):
			return s, s.retreat()
		}
	}

	var cmd tea.Cmd
	s.options, cmd = s.options.Update(msg)
	return s, cmd
}

// choose records value for the current question. It returns a command only
// when the phase unexpectedly changed and the screen must be swapped.
func (s *QuizScreen) choose(value int) tea.Cmd {
	if err := s.flow.Session.SelectOption(value); err != nil {
		return s.reject("select option", err)
	}
	s.options.SetChosen(value)
	s.hint = ""
	return nil
}

func (s *QuizScreen) advance() tea.Cmd {
	if err := s.flow.Session.Advance(); err != nil {
		return s.reject("advance", err)
	}
	s.hint = ""
	if s.flow.Session.Phase() != session.PhaseAnswering {
		return s.flow.Navigate()
	}
	s.syncOptions()
	return nil
}

func (s *QuizScreen) retreat() tea.Cmd {
	if err := s.flow.Session.Retreat(); err != nil {
		return s.reject("retreat", err)
	}
	s.hint = ""
	if s.flow.Session.Phase() != session.PhaseAnswering {
		return s.flow.Navigate()
	}
	s.syncOptions()
	return nil
}

func (s *QuizScreen) reject(op string, err error) tea.Cmd {
	switch {
	case errors.Is(err, session.ErrAnswerRequired):
		s.hint = HintAnswerRequired
	case errors.Is(err, session.ErrInvalidTransition):
		slog.Warn("quiz event out of phase", "op", op, "error", err)
		return s.flow.Navigate()
	default:
		slog.Warn("quiz event rejected", "op", op, "error", err)
		s.hint = err.Error()
	}
	return nil
}

func (s *QuizScreen) syncOptions() {
	sess := s.flow.Session
	q := sess.Questionnaire()
	value, answered := sess.Answer(sess.CurrentQuestion().ID)
	s.options = components.NewOptionList(q.Options, value, answered)
}

func (s *QuizScreen) View(width, height int) string {
	sess := s.flow.Session
	q := sess.Questionnaire()
	textWidth := layout.TextWidth(width)

	var b strings.Builder
	b.WriteString("\n")

	label := fmt.Sprintf("Frage %d von %d", sess.Cursor()+1, len(q.Questions))
	bar := components.NewProgressBar(label, sess.Progress(), true, textWidth)
	b.WriteString(layout.Center(width, bar.View()))
	b.WriteString("\n\n")

	questionStyle := lipgloss.NewStyle().
		Width(textWidth).
		Foreground(theme.Text).
		Bold(true)
	b.WriteString(layout.Center(width, questionStyle.Render(sess.CurrentQuestion().Text)))
	b.WriteString("\n\n")

	b.WriteString(layout.Center(width, s.options.View()))
	b.WriteString("\n")

	next := "Weiter →"
	if sess.IsLastQuestion() {
		next = "Zur Übersicht →"
	}
	buttons := components.ButtonRow(
		components.NewButton("← Zurück", true),
		components.NewButton(next, sess.IsCurrentAnswered()),
	)
	b.WriteString(layout.Center(width, buttons))

	if s.hint != "" {
		b.WriteString("\n\n")
		b.WriteString(layout.Center(width, lipgloss.NewStyle().Foreground(theme.Warning).Render(s.hint)))
	}
	return b.String()
}
