package flow

import (
	"context"
	"path/filepath"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/medienreflexion/internal/content"
	"github.com/abhisek/medienreflexion/internal/router"
	"github.com/abhisek/medienreflexion/internal/screen"
	"github.com/abhisek/medienreflexion/internal/session"
	"github.com/abhisek/medienreflexion/internal/store"
)

type phaseScreen struct{ phase session.Phase }

func (s *phaseScreen) Init() tea.Cmd                           { return nil }
func (s *phaseScreen) Update(tea.Msg) (screen.Screen, tea.Cmd) { return s, nil }
func (s *phaseScreen) View(int, int) string                    { return s.phase.String() }
func (s *phaseScreen) Title() string                           { return s.phase.String() }

var testScreens = Screens{
	session.PhaseIntro:     func(*Flow) screen.Screen { return &phaseScreen{session.PhaseIntro} },
	session.PhaseAnswering: func(*Flow) screen.Screen { return &phaseScreen{session.PhaseAnswering} },
	session.PhaseReviewing: func(*Flow) screen.Screen { return &phaseScreen{session.PhaseReviewing} },
	session.PhaseFinished:  func(*Flow) screen.Screen { return &phaseScreen{session.PhaseFinished} },
}

func openStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "flow.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// runCmd executes cmd and every command batched inside it.
func runCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, runCmd(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func finish(t *testing.T, f *Flow, value int) {
	t.Helper()
	require.NoError(t, f.Session.Start())
	for range f.Questionnaire.Questions {
		require.NoError(t, f.Session.SelectOption(value))
		require.NoError(t, f.Session.Advance())
	}
	require.NoError(t, f.Session.Submit())
}

func TestNavigate_ReplacesWithPhaseScreen(t *testing.T) {
	f := New(Deps{Questionnaire: content.Default()}, testScreens)
	assert.Equal(t, "intro", f.Current().Title())

	require.NoError(t, f.Session.Start())
	msgs := runCmd(f.Navigate())

	var replaced *router.ReplaceScreenMsg
	for _, m := range msgs {
		if r, ok := m.(router.ReplaceScreenMsg); ok {
			replaced = &r
		}
	}
	require.NotNil(t, replaced, "expected a ReplaceScreenMsg")
	assert.Equal(t, "answering", replaced.Screen.Title())
}

func TestFlush_WritesTransitions(t *testing.T) {
	st := openStore(t)
	f := New(Deps{Questionnaire: content.Default(), Events: st.EventRepo()}, testScreens)
	id := f.SessionID

	finish(t, f, 2)
	assert.Equal(t, 3, len(f.pending))

	runCmd(f.Flush())
	assert.Equal(t, 0, len(f.pending))
	assert.Nil(t, f.Flush(), "nothing left to flush")

	events, err := st.EventRepo().QuerySessionEvents(context.Background(), id)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, session.EventStart, events[0].Action)
	assert.Equal(t, "intro", events[0].PhaseFrom)
	assert.Equal(t, session.EventAdvance, events[1].Action)
	assert.Equal(t, "reviewing", events[1].PhaseTo)
	assert.Equal(t, session.EventSubmit, events[2].Action)
}

func TestReset_StartsNewSessionID(t *testing.T) {
	f := New(Deps{Questionnaire: content.Default()}, testScreens)
	first := f.SessionID

	finish(t, f, 0)
	require.NoError(t, f.Session.Reset())

	assert.NotEqual(t, first, f.SessionID)
	assert.Nil(t, f.Flush(), "no event store configured")
	assert.Equal(t, 0, len(f.pending))
}

func TestSaveResult(t *testing.T) {
	st := openStore(t)
	f := New(Deps{Questionnaire: content.Default(), Results: st.ResultRepo()}, testScreens)
	assert.Nil(t, f.SaveResult(), "no result before submit")

	finish(t, f, 3)
	msgs := runCmd(f.SaveResult())
	require.Len(t, msgs, 1)
	assert.Equal(t, ResultSavedMsg{}, msgs[0])

	rec, err := st.ResultRepo().Latest(context.Background())
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, f.SessionID, rec.SessionID)
	assert.Equal(t, 39, rec.Score)
	assert.Equal(t, "Problematische Nutzung", rec.BandTitle)
	assert.Equal(t, "orange", rec.StyleTag)
	assert.True(t, rec.Complete)
	assert.Len(t, rec.Answers, 13)
}

func TestSaveResult_PrunesToMaxResults(t *testing.T) {
	st := openStore(t)
	deps := Deps{Questionnaire: content.Default(), Results: st.ResultRepo(), MaxResults: 2}
	f := New(deps, testScreens)

	for _, value := range []int{0, 1, 2} {
		finish(t, f, value)
		msgs := runCmd(f.SaveResult())
		require.Equal(t, []tea.Msg{ResultSavedMsg{}}, msgs)
		require.NoError(t, f.Session.Reset())
	}

	n, err := st.ResultRepo().Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	kept, err := st.ResultRepo().List(context.Background(), store.QueryOpts{})
	require.NoError(t, err)
	require.Len(t, kept, 2)
	assert.Equal(t, 26, kept[0].Score)
	assert.Equal(t, 13, kept[1].Score)
}

func TestSaveResult_HistoryDisabled(t *testing.T) {
	f := New(Deps{Questionnaire: content.Default()}, testScreens)
	finish(t, f, 1)
	assert.Nil(t, f.SaveResult())
}

func TestInsightInput(t *testing.T) {
	f := New(Deps{Questionnaire: content.Default()}, testScreens)
	_, ok := f.InsightInput()
	assert.False(t, ok)

	finish(t, f, 4)
	in, ok := f.InsightInput()
	require.True(t, ok)
	assert.Equal(t, f.SessionID, in.SessionID)
	assert.Equal(t, 52, in.Result.Score)
}
