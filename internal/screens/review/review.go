// Package review shows every answer at once during PhaseReviewing and lets
// the user change any of them before submitting.
package review

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/abhisek/medienreflexion/internal/screen"
	"github.com/abhisek/medienreflexion/internal/screens/flow"
	"github.com/abhisek/medienreflexion/internal/session"
	"github.com/abhisek/medienreflexion/internal/ui/components"
	"github.com/abhisek/medienreflexion/internal/ui/layout"
	"github.com/abhisek/medienreflexion/internal/ui/theme"
)

// ReviewScreen implements screen.Screen for PhaseReviewing.
type ReviewScreen struct {
	flow     *flow.Flow
	selected int
	hint     string
}

var _ screen.Screen = (*ReviewScreen)(nil)
var _ screen.KeyHintProvider = (*ReviewScreen)(nil)
var _ screen.StatusProvider = (*ReviewScreen)(nil)

// New creates the review screen for f.
func New(f *flow.Flow) *ReviewScreen {
	return &ReviewScreen{flow: f}
}

func (s *ReviewScreen) Init() tea.Cmd {
	return nil
}

func (s *ReviewScreen) Title() string {
	return "Übersicht"
}

func (s *ReviewScreen) Status() string {
	sess := s.flow.Session
	return fmt.Sprintf("%d/%d beantwortet", sess.AnsweredCount(), len(sess.Questionnaire().Questions))
}

func (s *ReviewScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Frage"},
		{Key: "←→/1-5", Description: "Antwort ändern"},
		{Key: "Enter", Description: "Auswerten"},
		{Key: "Esc", Description: "Zurück zu den Fragen"},
	}
}

// Selected returns the index of the highlighted question.
func (s *ReviewScreen) Selected() int {
	return s.selected
}

func (s *ReviewScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil
	}

	q := s.flow.Questionnaire
	switch {
	case key.Matches(kmsg, components.Keys.Up):
		if s.selected > 0 {
			s.selected--
		}
	case key.Matches(kmsg, components.Keys.Down):
		if s.selected < q.LastIndex() {
			s.selected++
		}
	case key.Matches(kmsg, components.Keys.Prev):
		return s, s.step(-1)
	case key.Matches(kmsg, components.Keys.Next):
		return s, s.step(+1)
	case key.Matches(kmsg, components.Keys.Confirm):
		return s, s.submit()
	case key.Matches(kmsg, components.Keys.Back):
		return s, s.back()
	default:
		if i, ok := components.DigitIndex(kmsg.String()); ok && i < len(q.Options) {
			return s, s.edit(q.Options[i].Value)
		}
	}
	return s, nil
}

// step moves the selected question's answer one option up or down the
// scale. An unanswered question starts at the low or high end.
func (s *ReviewScreen) step(delta int) tea.Cmd {
	q := s.flow.Questionnaire
	id := q.Questions[s.selected].ID

	idx := -1
	if v, ok := s.flow.Session.Answer(id); ok {
		for i, o := range q.Options {
			if o.Value == v {
				idx = i
				break
			}
		}
	}

	switch {
	case idx < 0 && delta > 0:
		idx = 0
	case idx < 0:
		idx = len(q.Options) - 1
	default:
		idx = min(max(idx+delta, 0), len(q.Options)-1)
	}
	return s.edit(q.Options[idx].Value)
}

func (s *ReviewScreen) edit(value int) tea.Cmd {
	id := s.flow.Questionnaire.Questions[s.selected].ID
	if err := s.flow.Session.EditAnswer(id, value); err != nil {
		return s.reject("edit answer", err)
	}
	s.hint = ""
	return nil
}

func (s *ReviewScreen) submit() tea.Cmd {
	if err := s.flow.Session.Submit(); err != nil {
		return s.reject("submit", err)
	}
	return s.flow.Navigate()
}

func (s *ReviewScreen) back() tea.Cmd {
	if err := s.flow.Session.BackToAnswering(); err != nil {
		return s.reject("back to answering", err)
	}
	return s.flow.Navigate()
}

func (s *ReviewScreen) reject(op string, err error) tea.Cmd {
	slog.Warn("review event rejected", "op", op, "error", err)
	if errors.Is(err, session.ErrInvalidTransition) {
		return s.flow.Navigate()
	}
	s.hint = err.Error()
	return nil
}

func (s *ReviewScreen) View(width, height int) string {
	sess := s.flow.Session
	textWidth := layout.TextWidth(width)
	lines := session.AnswerLines(s.flow.Questionnaire, sess.Answers())

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(theme.Title.Width(width).Render("Ihre Antworten im Überblick"))
	b.WriteString("\n\n")

	// Keep the selection visible when the list does not fit.
	visible := max(height-10, 3)
	first := 0
	if len(lines) > visible {
		first = min(max(s.selected-visible/2, 0), len(lines)-visible)
	}
	last := min(first+visible, len(lines))

	const answerWidth = 16
	for i := first; i < last; i++ {
		b.WriteString(layout.Center(width, s.renderLine(i, lines[i], textWidth, answerWidth)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if open := len(sess.Unanswered()); open > 0 {
		warn := fmt.Sprintf("%d Frage(n) unbeantwortet. Offene Fragen werden mit 0 Punkten gewertet.", open)
		b.WriteString(layout.Center(width, lipgloss.NewStyle().Foreground(theme.Warning).Render(warn)))
		b.WriteString("\n\n")
	}

	buttons := components.ButtonRow(
		components.NewButton("Zurück zu den Fragen", false),
		components.NewButton("Auswertung anzeigen", true),
	)
	b.WriteString(layout.Center(width, buttons))

	if s.hint != "" {
		b.WriteString("\n\n")
		b.WriteString(layout.Center(width, lipgloss.NewStyle().Foreground(theme.Error).Render(s.hint)))
	}
	return b.String()
}

func (s *ReviewScreen) renderLine(i int, line session.AnswerLine, textWidth, answerWidth int) string {
	prefix := "  "
	if i == s.selected {
		prefix = "▸ "
	}
	question := fmt.Sprintf("%s%2d. %s", prefix, line.Question.ID, line.Question.Text)
	question = ansi.Truncate(question, max(textWidth-answerWidth-2, 10), "…")

	answer := "offen"
	answerStyle := lipgloss.NewStyle().Foreground(theme.Warning).Italic(true)
	if line.Answered {
		answer = line.Label
		answerStyle = lipgloss.NewStyle().Foreground(theme.Secondary)
	}
	if i == s.selected {
		answer = "◂ " + answer + " ▸"
		answerStyle = answerStyle.Bold(true)
	}

	questionStyle := theme.Unselected
	if i == s.selected {
		questionStyle = theme.Selected
	}

	left := questionStyle.Width(textWidth - answerWidth).Render(question)
	right := answerStyle.Width(answerWidth).Align(lipgloss.Right).Render(answer)
	return left + right
}
