package result

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/medienreflexion/internal/content"
	"github.com/abhisek/medienreflexion/internal/countup"
	"github.com/abhisek/medienreflexion/internal/insight"
	"github.com/abhisek/medienreflexion/internal/llm"
	"github.com/abhisek/medienreflexion/internal/router"
	"github.com/abhisek/medienreflexion/internal/screens/flow"
	"github.com/abhisek/medienreflexion/internal/screens/history"
	"github.com/abhisek/medienreflexion/internal/session"
	"github.com/abhisek/medienreflexion/internal/store"
)

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func finished(t *testing.T, deps flow.Deps, value int) *flow.Flow {
	t.Helper()
	deps.Questionnaire = content.Default()
	f := flow.New(deps, nil)
	sess := f.Session
	if err := sess.Start(); err != nil {
		t.Fatal(err)
	}
	for range deps.Questionnaire.Questions {
		if err := sess.SelectOption(value); err != nil {
			t.Fatal(err)
		}
		if err := sess.Advance(); err != nil {
			t.Fatal(err)
		}
	}
	if err := sess.Submit(); err != nil {
		t.Fatal(err)
	}
	return f
}

func TestResult_CountsUpToScore(t *testing.T) {
	f := finished(t, flow.Deps{CountUp: 40 * time.Millisecond}, 2)
	s := New(f)

	cmd := s.Init()
	if cmd == nil {
		t.Fatal("expected count-up command")
	}
	if s.DisplayScore() != 0 {
		t.Errorf("display should start at 0, got %d", s.DisplayScore())
	}

	// Drive the animation until it settles.
	deadline := time.Now().Add(2 * time.Second)
	for cmd != nil && time.Now().Before(deadline) {
		msg := cmd()
		tick, ok := msg.(countup.TickMsg)
		if !ok {
			break
		}
		_, cmd = s.Update(tick)
	}
	if s.DisplayScore() != 26 {
		t.Errorf("expected display 26, got %d", s.DisplayScore())
	}
}

func TestResult_SpaceSkipsAnimation(t *testing.T) {
	f := finished(t, flow.Deps{CountUp: time.Hour}, 3)
	s := New(f)
	s.Init()

	s.Update(specialKey(tea.KeySpace))
	if s.DisplayScore() != 39 {
		t.Errorf("expected display 39, got %d", s.DisplayScore())
	}
	if !strings.Contains(s.View(100, 40), "Problematische Nutzung") {
		t.Error("band title not rendered")
	}
}

func TestResult_StopCancelsCountUp(t *testing.T) {
	f := finished(t, flow.Deps{CountUp: time.Hour}, 4)
	s := New(f)
	cmd := s.Init()

	s.Stop()
	// A tick scheduled before Stop must be ignored.
	tick := countup.TickMsg{Time: time.Now().Add(2 * time.Hour)}
	if msg, ok := cmd().(countup.TickMsg); ok {
		tick = msg
	}
	_, next := s.Update(tick)
	if next != nil {
		t.Error("stopped counter must not schedule further ticks")
	}
	if s.DisplayScore() != 0 {
		t.Errorf("display should stay at 0, got %d", s.DisplayScore())
	}
}

func TestResult_Insight(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(
		`{"headline":"Bewusst bleiben","reflection":"Sie nutzen Medien kontrolliert.","suggestions":["Weiter so"]}`,
	)})
	f := finished(t, flow.Deps{Insight: insight.NewService(mock, insight.DefaultConfig())}, 0)
	s := New(f)
	s.Init()

	if s.insightState != insightLoading {
		t.Fatalf("expected loading state, got %d", s.insightState)
	}

	in, _ := f.InsightInput()
	ins, err := f.Insight.Generate(context.Background(), in)
	s.Update(insightMsg{Insight: ins, Err: err})

	v := s.View(100, 50)
	for _, want := range []string{"Bewusst bleiben", "Weiter so", "Unauffälliges Nutzungsverhalten"} {
		if !strings.Contains(v, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestResult_InsightFailureIsQuiet(t *testing.T) {
	f := finished(t, flow.Deps{Insight: insight.NewService(llm.NewMockProvider(), insight.DefaultConfig())}, 1)
	s := New(f)
	s.Init()

	s.Update(insightMsg{Err: errors.New("boom")})
	v := s.View(100, 50)
	if !strings.Contains(v, "Kein Denkanstoß verfügbar") {
		t.Error("expected fallback text")
	}
	if r, _ := f.Session.Result(); r.Score != 13 {
		t.Errorf("insight must not affect the score, got %d", r.Score)
	}
}

func TestResult_NoInsightWithoutProvider(t *testing.T) {
	f := finished(t, flow.Deps{}, 1)
	s := New(f)
	s.Init()
	if s.insightState != insightOff {
		t.Errorf("expected insight off, got %d", s.insightState)
	}
	if strings.Contains(s.View(100, 50), "Denkanstoß") {
		t.Error("insight section should be hidden")
	}
}

func TestResult_EnterResets(t *testing.T) {
	f := finished(t, flow.Deps{}, 1)
	s := New(f)
	s.Init()

	s.Update(specialKey(tea.KeyEnter))
	if f.Session.Phase() != session.PhaseIntro {
		t.Errorf("expected intro after reset, got %s", f.Session.Phase())
	}
}

func TestResult_ShowsDisclaimer(t *testing.T) {
	f := finished(t, flow.Deps{}, 1)
	s := New(f)
	if !strings.Contains(s.View(100, 50), "professionelle") {
		t.Error("disclaimer missing")
	}
}

var historyKey = tea.KeyPressMsg{Code: 'v', Text: "v"}

func openStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "result.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

// split runs cmd and flattens batches into the messages they produce.
func split(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	batch, ok := msg.(tea.BatchMsg)
	if !ok {
		return []tea.Msg{msg}
	}
	var out []tea.Msg
	for _, c := range batch {
		out = append(out, split(c)...)
	}
	return out
}

func TestResult_HistoryDuringCountUp(t *testing.T) {
	st := openStore(t)
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(
		`{"headline":"Pausen helfen","reflection":"Kurz innehalten.","suggestions":[]}`,
	)})
	f := finished(t, flow.Deps{
		Results: st.ResultRepo(),
		Insight: insight.NewService(mock, insight.DefaultConfig()),
		CountUp: time.Hour,
	}, 2)
	s := New(f)
	r := router.New(s)

	var pending []tea.Msg
	for _, msg := range split(s.Init()) {
		switch msg.(type) {
		case flow.ResultSavedMsg:
			r.Update(msg)
		default:
			pending = append(pending, msg)
		}
	}
	if !s.counter.Running() {
		t.Fatal("count-up should still run")
	}

	for _, msg := range split(r.Update(historyKey)) {
		r.Update(msg)
	}
	if _, ok := r.Active().(*history.HistoryScreen); !ok {
		t.Fatalf("expected history on top, got %T", r.Active())
	}
	if s.DisplayScore() != 26 || s.counter.Running() {
		t.Errorf("count-up must settle before leaving, got %d running=%v", s.DisplayScore(), s.counter.Running())
	}

	// Ticks and the insight answer arrive while the history is shown.
	for _, msg := range pending {
		r.Update(msg)
	}
	if s.insightState != insightReady {
		t.Errorf("insight must be delivered under the history, state %d", s.insightState)
	}

	r.Update(router.PopScreenMsg{})
	if r.Active() != s {
		t.Fatalf("expected result screen after pop, got %T", r.Active())
	}
	v := s.View(100, 50)
	for _, want := range []string{"26", "Pausen helfen"} {
		if !strings.Contains(v, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestResult_HistoryWaitsForSave(t *testing.T) {
	st := openStore(t)
	f := finished(t, flow.Deps{Results: st.ResultRepo(), CountUp: time.Millisecond}, 1)
	s := New(f)
	r := router.New(s)

	var saved tea.Msg
	for _, msg := range split(s.Init()) {
		if _, ok := msg.(flow.ResultSavedMsg); ok {
			saved = msg
		}
	}
	if saved == nil {
		t.Fatal("expected a save command")
	}

	if cmd := r.Update(historyKey); cmd != nil {
		t.Fatal("history must not open before the result is saved")
	}

	for _, msg := range split(r.Update(saved)) {
		r.Update(msg)
	}
	h, ok := r.Active().(*history.HistoryScreen)
	if !ok {
		t.Fatalf("expected history after save, got %T", r.Active())
	}
	for _, msg := range split(h.Init()) {
		r.Update(msg)
	}
	if !strings.Contains(r.View(100, 50), "13/52") {
		t.Error("history should list the saved result")
	}
}

func TestResult_HistoryDisabled(t *testing.T) {
	f := finished(t, flow.Deps{}, 1)
	s := New(f)
	s.Init()
	if _, cmd := s.Update(historyKey); cmd != nil {
		t.Error("history key must do nothing without a result store")
	}
}
