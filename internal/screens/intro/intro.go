// Package intro is the start screen: title, lead text and the main menu.
package intro

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/medienreflexion/internal/router"
	"github.com/abhisek/medienreflexion/internal/screen"
	"github.com/abhisek/medienreflexion/internal/screens/flow"
	"github.com/abhisek/medienreflexion/internal/screens/history"
	"github.com/abhisek/medienreflexion/internal/store"
	"github.com/abhisek/medienreflexion/internal/ui/components"
	"github.com/abhisek/medienreflexion/internal/ui/layout"
	"github.com/abhisek/medienreflexion/internal/ui/theme"
)

// latestMsg carries the most recent stored result, if any.
type latestMsg struct {
	Result *store.ResultRecord
}

// IntroScreen implements screen.Screen for PhaseIntro.
type IntroScreen struct {
	flow   *flow.Flow
	menu   components.Menu
	latest *store.ResultRecord
}

var _ screen.Screen = (*IntroScreen)(nil)
var _ screen.KeyHintProvider = (*IntroScreen)(nil)

// New creates the intro screen for f.
func New(f *flow.Flow) *IntroScreen {
	s := &IntroScreen{flow: f}
	s.menu = components.NewMenu([]components.MenuItem{
		{Label: "Test starten", Action: s.start},
		{Label: "Bisherige Ergebnisse", Action: s.openHistory, Disabled: f.Results == nil},
		{Label: "Beenden", Action: func() tea.Cmd { return tea.Quit }},
	})
	return s
}

// Init loads the latest stored result for the "last time" line.
func (s *IntroScreen) Init() tea.Cmd {
	repo := s.flow.Results
	if repo == nil {
		return nil
	}
	return func() tea.Msg {
		rec, err := repo.Latest(context.Background())
		if err != nil {
			slog.Warn("load latest result", "error", err)
		}
		return latestMsg{Result: rec}
	}
}

func (s *IntroScreen) Title() string {
	return "Start"
}

func (s *IntroScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Auswahl"},
		{Key: "Enter", Description: "Bestätigen"},
		{Key: "t", Description: "Farbschema"},
		{Key: "q", Description: "Beenden"},
	}
}

func (s *IntroScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok && kmsg.String() == "q" {
		return s, tea.Quit
	}
	if m, ok := msg.(latestMsg); ok {
		s.latest = m.Result
		return s, nil
	}

	var cmd tea.Cmd
	s.menu, cmd = s.menu.Update(msg)
	return s, cmd
}

func (s *IntroScreen) start() tea.Cmd {
	if err := s.flow.Session.Start(); err != nil {
		slog.Warn("start session", "error", err)
	}
	return s.flow.Navigate()
}

func (s *IntroScreen) openHistory() tea.Cmd {
	h := history.New(s.flow.Results, s.flow.Questionnaire)
	return func() tea.Msg { return router.PushScreenMsg{Screen: h} }
}

func (s *IntroScreen) View(width, height int) string {
	q := s.flow.Questionnaire
	textWidth := layout.TextWidth(width)

	var b strings.Builder
	if !layout.IsCompactHeight(height) {
		b.WriteString("\n")
	}
	b.WriteString(theme.Title.Width(width).Render(q.Title))
	b.WriteString("\n\n")

	body := lipgloss.NewStyle().Width(textWidth).Foreground(theme.Text)
	b.WriteString(layout.Center(width, body.Render(q.Lead)))
	b.WriteString("\n\n")

	if len(q.Notes) > 0 {
		var notes strings.Builder
		for _, n := range q.Notes {
			notes.WriteString("• " + n + "\n")
		}
		card := theme.Card.Width(textWidth).Foreground(theme.TextDim)
		b.WriteString(layout.Center(width, card.Render(strings.TrimRight(notes.String(), "\n"))))
		b.WriteString("\n\n")
	}

	b.WriteString(layout.Center(width, s.menu.View()))
	if s.latest != nil {
		b.WriteString("\n\n")
		b.WriteString(layout.Center(width, theme.Hint.Render(lastResult(s.latest))))
	}
	return b.String()
}

func lastResult(r *store.ResultRecord) string {
	return fmt.Sprintf("Zuletzt am %s: %d/%d Punkte · %s",
		r.Timestamp.Local().Format("02.01.2006"), r.Score, r.MaxScore, r.BandTitle)
}
