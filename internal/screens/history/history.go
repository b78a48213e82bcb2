// Package history lists earlier results stored on this machine.
package history

import (
	"context"
	"fmt"
	"strings"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/medienreflexion/internal/content"
	"github.com/abhisek/medienreflexion/internal/router"
	"github.com/abhisek/medienreflexion/internal/screen"
	"github.com/abhisek/medienreflexion/internal/session"
	"github.com/abhisek/medienreflexion/internal/store"
	"github.com/abhisek/medienreflexion/internal/ui/components"
	"github.com/abhisek/medienreflexion/internal/ui/layout"
	"github.com/abhisek/medienreflexion/internal/ui/theme"
)

// Limit is the number of results loaded.
const Limit = 50

type historyLoadedMsg struct {
	Results []store.ResultRecord
	Err     error
}

// HistoryScreen displays past results, newest first.
type HistoryScreen struct {
	repo     store.ResultRepo
	q        *content.Questionnaire
	results  []store.ResultRecord
	selected int
	expanded map[int]bool
	loaded   bool
	errMsg   string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a new HistoryScreen.
func New(repo store.ResultRepo, q *content.Questionnaire) *HistoryScreen {
	return &HistoryScreen{
		repo:     repo,
		q:        q,
		expanded: make(map[int]bool),
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	repo := s.repo
	return func() tea.Msg {
		if repo == nil {
			return historyLoadedMsg{}
		}
		results, err := repo.List(context.Background(), store.QueryOpts{Limit: Limit})
		return historyLoadedMsg{Results: results, Err: err}
	}
}

func (s *HistoryScreen) Title() string {
	return "Verlauf"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Details"},
		{Key: "↑↓", Description: "Auswahl"},
		{Key: "Esc", Description: "Zurück"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.results = msg.Results
		}
		s.loaded = true
		return s, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, components.Keys.Back, components.Keys.History):
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case key.Matches(msg, components.Keys.Up):
			if s.selected > 0 {
				s.selected--
			}
		case key.Matches(msg, components.Keys.Down):
			if s.selected < len(s.results)-1 {
				s.selected++
			}
		case key.Matches(msg, components.Keys.Confirm, components.Keys.Choose):
			s.expanded[s.selected] = !s.expanded[s.selected]
		}
	}
	return s, nil
}

func (s *HistoryScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\nFehler: %s", s.errMsg))
	}
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Verlauf wird geladen …")
	}
	if len(s.results) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n  Noch keine gespeicherten Ergebnisse.")
	}

	var b strings.Builder
	b.WriteString("\n")

	for i, r := range s.results {
		prefix := "  "
		if i == s.selected {
			prefix = "> "
		}

		incomplete := ""
		if !r.Complete {
			incomplete = "  (unvollständig)"
		}
		line := fmt.Sprintf("%s%s  %2d/%d  ",
			prefix, r.Timestamp.Local().Format("02.01.2006 15:04"), r.Score, r.MaxScore)

		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == s.selected {
			style = style.Foreground(theme.Primary).Bold(true)
		}
		band := lipgloss.NewStyle().Foreground(theme.BandColor(r.StyleTag)).Render(r.BandTitle)
		b.WriteString(layout.Center(width, style.Render(line)+band+theme.Hint.Render(incomplete)))
		b.WriteString("\n")

		if s.expanded[i] && s.q != nil {
			b.WriteString(s.renderAnswers(width, r))
		}
	}

	return b.String()
}

func (s *HistoryScreen) renderAnswers(width int, r store.ResultRecord) string {
	var b strings.Builder
	dim := lipgloss.NewStyle().Foreground(theme.TextDim)
	for _, line := range session.AnswerLines(s.q, session.Answers(r.Answers)) {
		label := "offen"
		if line.Answered {
			label = line.Label
		}
		text := fmt.Sprintf("    %2d. %-12s", line.Question.ID, label)
		b.WriteString(layout.Center(width, dim.Render(text)))
		b.WriteString("\n")
	}
	return b.String()
}
