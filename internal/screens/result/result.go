// Package result shows the frozen evaluation of a finished session.
package result

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/medienreflexion/internal/countup"
	"github.com/abhisek/medienreflexion/internal/insight"
	"github.com/abhisek/medienreflexion/internal/router"
	"github.com/abhisek/medienreflexion/internal/screen"
	"github.com/abhisek/medienreflexion/internal/screens/flow"
	"github.com/abhisek/medienreflexion/internal/screens/history"
	"github.com/abhisek/medienreflexion/internal/session"
	"github.com/abhisek/medienreflexion/internal/ui/components"
	"github.com/abhisek/medienreflexion/internal/ui/layout"
	"github.com/abhisek/medienreflexion/internal/ui/theme"
)

type insightState int

const (
	insightOff insightState = iota
	insightLoading
	insightReady
	insightFailed
)

// insightMsg carries the outcome of the background insight request.
type insightMsg struct {
	Insight *insight.Insight
	Err     error
}

// ResultScreen implements screen.Screen for PhaseFinished.
type ResultScreen struct {
	flow    *flow.Flow
	result  session.Result
	counter countup.Counter

	insightState insightState
	insight      *insight.Insight
	spinner      spinner.Model
	cancel       context.CancelFunc

	// saved is set once SaveResult has reported back. Opening the history
	// before that is deferred until the result is in the store.
	saved       bool
	historyWait bool
}

var _ screen.Screen = (*ResultScreen)(nil)
var _ screen.KeyHintProvider = (*ResultScreen)(nil)
var _ screen.Stopper = (*ResultScreen)(nil)
var _ screen.Background = (*ResultScreen)(nil)

// New creates the result screen for f. The session must be finished.
func New(f *flow.Flow) *ResultScreen {
	res, _ := f.Session.Result()
	return &ResultScreen{
		flow:    f,
		result:  res,
		counter: countup.New(f.CountUp),
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
}

func (s *ResultScreen) Init() tea.Cmd {
	cmds := []tea.Cmd{
		s.counter.Start(s.result.Score),
		s.flow.SaveResult(),
	}
	if s.flow.Insight.Enabled() {
		s.insightState = insightLoading
		cmds = append(cmds, s.requestInsight(), s.spinner.Tick)
	}
	return tea.Batch(cmds...)
}

func (s *ResultScreen) Title() string {
	return "Auswertung"
}

func (s *ResultScreen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{
		{Key: "Enter", Description: "Neu starten"},
	}
	if s.counter.Running() {
		hints = append(hints, layout.KeyHint{Key: "Leertaste", Description: "Überspringen"})
	}
	if s.flow.Results != nil {
		hints = append(hints, layout.KeyHint{Key: "v", Description: "Verlauf"})
	}
	return append(hints, layout.KeyHint{Key: "q", Description: "Beenden"})
}

// Stop cancels the count-up and any pending insight request.
func (s *ResultScreen) Stop() {
	s.counter.Cancel()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// DisplayScore is the animated score currently shown.
func (s *ResultScreen) DisplayScore() int {
	return s.counter.Value()
}

func (s *ResultScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, components.Keys.Confirm):
			return s, s.restart()
		case key.Matches(msg, components.Keys.Choose):
			s.counter.Finish()
		case key.Matches(msg, components.Keys.History):
			return s, s.openHistory()
		case msg.String() == "q":
			return s, tea.Quit
		}
		return s, nil
	}
	return s, s.Background(msg)
}

// Background advances the count-up, the spinner and the insight request.
// The router calls it while the history screen covers the result.
func (s *ResultScreen) Background(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case countup.TickMsg:
		var cmd tea.Cmd
		s.counter, cmd = s.counter.Update(msg)
		return cmd

	case spinner.TickMsg:
		if s.insightState != insightLoading {
			return nil
		}
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return cmd

	case insightMsg:
		s.cancel = nil
		if msg.Err != nil {
			slog.Warn("insight failed", "session", s.flow.SessionID, "error", msg.Err)
			s.insightState = insightFailed
			return nil
		}
		s.insight = msg.Insight
		s.insightState = insightReady

	case flow.ResultSavedMsg:
		s.saved = true
		if s.historyWait {
			s.historyWait = false
			return s.pushHistory()
		}
	}
	return nil
}

// openHistory shows the stored results. The count-up is settled first so
// the score is final when the user comes back.
func (s *ResultScreen) openHistory() tea.Cmd {
	if s.flow.Results == nil {
		return nil
	}
	s.counter.Finish()
	if !s.saved {
		s.historyWait = true
		return nil
	}
	return s.pushHistory()
}

func (s *ResultScreen) pushHistory() tea.Cmd {
	h := history.New(s.flow.Results, s.flow.Questionnaire)
	return func() tea.Msg { return router.PushScreenMsg{Screen: h} }
}

func (s *ResultScreen) restart() tea.Cmd {
	if err := s.flow.Session.Reset(); err != nil {
		slog.Warn("reset session", "error", err)
	}
	return s.flow.Navigate()
}

func (s *ResultScreen) requestInsight() tea.Cmd {
	in, ok := s.flow.InsightInput()
	if !ok {
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	svc := s.flow.Insight
	return func() tea.Msg {
		defer cancel()
		ins, err := svc.Generate(ctx, in)
		return insightMsg{Insight: ins, Err: err}
	}
}

func (s *ResultScreen) View(width, height int) string {
	textWidth := layout.TextWidth(width)
	band := s.result.Band
	bandColor := theme.BandColor(band.StyleTag)

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(theme.Title.Width(width).Render("Ihr Ergebnis"))
	b.WriteString("\n\n")

	score := lipgloss.NewStyle().
		Bold(true).
		Foreground(bandColor).
		Render(fmt.Sprintf("%d", s.counter.Value()))
	maxScore := lipgloss.NewStyle().
		Foreground(theme.TextDim).
		Render(fmt.Sprintf(" / %d Punkten", s.result.MaxScore))
	b.WriteString(layout.Center(width, score+maxScore))
	b.WriteString("\n\n")

	b.WriteString(layout.Center(width, lipgloss.NewStyle().
		Bold(true).
		Foreground(bandColor).
		Render(band.Title)))
	b.WriteString("\n\n")

	body := lipgloss.NewStyle().Width(textWidth).Foreground(theme.Text)
	b.WriteString(layout.Center(width, body.Render(band.Description)))
	b.WriteString("\n")

	if !s.result.Complete {
		open := len(s.flow.Questionnaire.Questions) - len(s.result.Answers)
		note := fmt.Sprintf("%d Frage(n) wurden nicht beantwortet und mit 0 Punkten gewertet.", open)
		b.WriteString("\n")
		b.WriteString(layout.Center(width, lipgloss.NewStyle().Foreground(theme.Warning).Render(note)))
		b.WriteString("\n")
	}

	if view := s.insightView(textWidth); view != "" {
		b.WriteString("\n")
		b.WriteString(layout.Center(width, view))
		b.WriteString("\n")
	}

	notices := s.flow.Questionnaire.Notices
	b.WriteString("\n")
	b.WriteString(layout.Center(width, theme.Card.Width(textWidth).Foreground(theme.TextDim).Render(notices.Disclaimer)))
	if notices.Finished != "" && !layout.IsCompactHeight(height) {
		b.WriteString("\n\n")
		b.WriteString(layout.Center(width, theme.Hint.Render(notices.Finished)))
	}
	return b.String()
}

func (s *ResultScreen) insightView(textWidth int) string {
	switch s.insightState {
	case insightLoading:
		return s.spinner.View() + theme.Hint.Render(" Denkanstoß wird erstellt …")
	case insightFailed:
		return theme.Hint.Render("Kein Denkanstoß verfügbar.")
	case insightReady:
		var b strings.Builder
		b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(theme.Primary).Render(s.insight.Headline))
		b.WriteString("\n")
		b.WriteString(s.insight.Reflection)
		for _, sug := range s.insight.Suggestions {
			b.WriteString("\n• " + sug)
		}
		return lipgloss.NewStyle().
			Width(textWidth).
			Foreground(theme.Text).
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(theme.Primary).
			PaddingLeft(2).
			Render(b.String())
	default:
		return ""
	}
}
