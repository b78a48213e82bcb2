// Package flow holds the state shared by the questionnaire screens.
package flow

import (
	"context"
	"log/slog"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/medienreflexion/internal/content"
	"github.com/abhisek/medienreflexion/internal/insight"
	"github.com/abhisek/medienreflexion/internal/router"
	"github.com/abhisek/medienreflexion/internal/screen"
	"github.com/abhisek/medienreflexion/internal/session"
	"github.com/abhisek/medienreflexion/internal/store"

	"github.com/google/uuid"
)

// Deps are the collaborators of the questionnaire screens. Every field
// except Questionnaire may be nil.
type Deps struct {
	Questionnaire *content.Questionnaire
	Results       store.ResultRepo
	Events        store.EventRepo
	Insight       *insight.Service
	CountUp       time.Duration

	// MaxResults, when positive, prunes older results after each save.
	MaxResults int
}

// Screens builds the screen that presents each phase.
type Screens map[session.Phase]func(*Flow) screen.Screen

// Flow owns one session at a time. Phase changes are queued and written
// to the event store by the command returned from Flush.
type Flow struct {
	Deps
	Session   *session.Session
	SessionID string

	screens Screens
	pending []store.SessionEventData
}

// New creates a flow with a fresh session in the intro phase.
func New(deps Deps, screens Screens) *Flow {
	f := &Flow{
		Deps:      deps,
		Session:   session.New(deps.Questionnaire),
		SessionID: uuid.NewString(),
		screens:   screens,
	}
	f.Session.OnTransition(f.record)
	return f
}

// Current builds the screen for the session's phase.
func (f *Flow) Current() screen.Screen {
	build, ok := f.screens[f.Session.Phase()]
	if !ok {
		return nil
	}
	return build(f)
}

// Navigate replaces the active screen with the one for the current phase
// and writes any queued events.
func (f *Flow) Navigate() tea.Cmd {
	next := f.Current()
	if next == nil {
		slog.Error("no screen for phase", "phase", f.Session.Phase().String())
		return f.Flush()
	}
	return tea.Batch(
		f.Flush(),
		func() tea.Msg { return router.ReplaceScreenMsg{Screen: next} },
	)
}

func (f *Flow) record(t session.Transition) {
	slog.Debug("session transition",
		"session", f.SessionID,
		"event", t.Event,
		"from", t.From.String(),
		"to", t.To.String(),
	)
	f.pending = append(f.pending, store.SessionEventData{
		SessionID: f.SessionID,
		Action:    t.Event,
		PhaseFrom: t.From.String(),
		PhaseTo:   t.To.String(),
	})

	// A reset starts a new run with its own id.
	if t.Event == session.EventReset {
		f.SessionID = uuid.NewString()
	}
}

// Flush hands the queued events to a command that writes them. It returns
// nil when there is nothing to write or no event store.
func (f *Flow) Flush() tea.Cmd {
	if len(f.pending) == 0 {
		return nil
	}
	events := f.pending
	f.pending = nil
	if f.Events == nil {
		return nil
	}

	repo := f.Events
	return func() tea.Msg {
		ctx := context.Background()
		for _, ev := range events {
			if err := repo.AppendSessionEvent(ctx, ev); err != nil {
				slog.Warn("record session event failed", "session", ev.SessionID, "action", ev.Action, "error", err)
				return nil
			}
		}
		return nil
	}
}

// SaveResult returns a command persisting the frozen result and trimming
// the history to MaxResults. It is nil when history is disabled or the
// session is not finished.
func (f *Flow) SaveResult() tea.Cmd {
	res, ok := f.Session.Result()
	if !ok || f.Results == nil {
		return nil
	}

	rec := &store.ResultRecord{
		SessionID: f.SessionID,
		Score:     res.Score,
		MaxScore:  res.MaxScore,
		BandTitle: res.Band.Title,
		StyleTag:  res.Band.StyleTag,
		Answers:   res.Answers.Clone(),
		Complete:  res.Complete,
	}
	repo, keep := f.Results, f.MaxResults
	return func() tea.Msg {
		ctx := context.Background()
		if err := repo.Save(ctx, rec); err != nil {
			slog.Warn("save result failed", "session", rec.SessionID, "error", err)
			return ResultSavedMsg{Err: err}
		}
		slog.Info("result saved", "session", rec.SessionID, "score", rec.Score, "band", rec.BandTitle)
		if keep > 0 {
			if err := repo.Prune(ctx, keep); err != nil {
				slog.Warn("prune results failed", "keep", keep, "error", err)
			}
		}
		return ResultSavedMsg{}
	}
}

// ResultSavedMsg reports the outcome of SaveResult.
type ResultSavedMsg struct {
	Err error
}

// InsightInput builds the insight request for the finished session.
func (f *Flow) InsightInput() (insight.Input, bool) {
	res, ok := f.Session.Result()
	if !ok {
		return insight.Input{}, false
	}
	return insight.Input{
		SessionID:     f.SessionID,
		Questionnaire: f.Questionnaire,
		Result:        res,
	}, true
}
