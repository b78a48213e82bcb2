package review

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/medienreflexion/internal/content"
	"github.com/abhisek/medienreflexion/internal/screens/flow"
	"github.com/abhisek/medienreflexion/internal/session"
)

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

// reviewing returns a flow whose session is in the review phase with every
// question answered with value.
func reviewing(t *testing.T, value int) *flow.Flow {
	t.Helper()
	f := flow.New(flow.Deps{Questionnaire: content.Default()}, nil)
	sess := f.Session
	if err := sess.Start(); err != nil {
		t.Fatal(err)
	}
	for range f.Questionnaire.Questions {
		if err := sess.SelectOption(value); err != nil {
			t.Fatal(err)
		}
		if err := sess.Advance(); err != nil {
			t.Fatal(err)
		}
	}
	if sess.Phase() != session.PhaseReviewing {
		t.Fatalf("expected reviewing, got %s", sess.Phase())
	}
	return f
}

func TestReview_Navigation(t *testing.T) {
	s := New(reviewing(t, 1))

	s.Update(specialKey(tea.KeyUp))
	if s.Selected() != 0 {
		t.Errorf("selection should stay at 0, got %d", s.Selected())
	}
	for i := 0; i < 20; i++ {
		s.Update(specialKey(tea.KeyDown))
	}
	if s.Selected() != 12 {
		t.Errorf("selection should stop at last question, got %d", s.Selected())
	}
}

func TestReview_StepChangesAnswer(t *testing.T) {
	f := reviewing(t, 2)
	s := New(f)

	s.Update(specialKey(tea.KeyRight))
	if v, _ := f.Session.Answer(1); v != 3 {
		t.Errorf("expected answer 3 after step up, got %d", v)
	}

	s.Update(specialKey(tea.KeyLeft))
	s.Update(specialKey(tea.KeyLeft))
	if v, _ := f.Session.Answer(1); v != 1 {
		t.Errorf("expected answer 1 after two steps down, got %d", v)
	}

	for i := 0; i < 5; i++ {
		s.Update(specialKey(tea.KeyLeft))
	}
	if v, _ := f.Session.Answer(1); v != 0 {
		t.Errorf("answer should clamp at 0, got %d", v)
	}
}

func TestReview_DigitSetsAnswer(t *testing.T) {
	f := reviewing(t, 0)
	s := New(f)

	s.Update(specialKey(tea.KeyDown))
	s.Update(specialKey(tea.KeyDown))
	s.Update(keyPress('5'))

	if v, _ := f.Session.Answer(3); v != 4 {
		t.Errorf("expected question 3 set to 4, got %d", v)
	}
	if got := f.Session.Score(); got != 4 {
		t.Errorf("expected live score 4, got %d", got)
	}
	if f.Session.Phase() != session.PhaseReviewing {
		t.Error("editing must not leave the review")
	}
}

func TestReview_Submit(t *testing.T) {
	f := reviewing(t, 2)
	s := New(f)

	s.Update(specialKey(tea.KeyEnter))
	r, ok := f.Session.Result()
	if !ok {
		t.Fatal("expected a frozen result after submit")
	}
	if r.Score != 26 || r.Band.Title != "Leichte Auffälligkeiten" {
		t.Errorf("unexpected result: %d %q", r.Score, r.Band.Title)
	}
}

func TestReview_Back(t *testing.T) {
	f := reviewing(t, 2)
	s := New(f)

	s.Update(specialKey(tea.KeyEscape))
	if f.Session.Phase() != session.PhaseAnswering {
		t.Fatalf("expected answering, got %s", f.Session.Phase())
	}
	if f.Session.Cursor() != 12 {
		t.Errorf("expected cursor on last question, got %d", f.Session.Cursor())
	}
}

func TestReview_View(t *testing.T) {
	s := New(reviewing(t, 3))
	v := s.View(100, 40)

	for _, want := range []string{"Ihre Antworten im Überblick", "häufig", "Auswertung anzeigen"} {
		if !strings.Contains(v, want) {
			t.Errorf("view missing %q", want)
		}
	}
	if strings.Contains(v, "unbeantwortet") {
		t.Error("complete review must not warn about open questions")
	}
	if s.Status() != "13/13 beantwortet" {
		t.Errorf("unexpected status %q", s.Status())
	}
}
