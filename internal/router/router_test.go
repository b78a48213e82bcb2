package router

import (
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/medienreflexion/internal/screen"
)

// stubScreen is a minimal screen for testing.
type stubScreen struct {
	title   string
	initRan bool
}

func (s *stubScreen) Init() tea.Cmd {
	s.initRan = true
	return nil
}
func (s *stubScreen) Update(tea.Msg) (screen.Screen, tea.Cmd) { return s, nil }
func (s *stubScreen) View(int, int) string                    { return s.title }
func (s *stubScreen) Title() string                           { return s.title }

func TestPush(t *testing.T) {
	s1 := &stubScreen{title: "first"}
	r := New(s1)

	s2 := &stubScreen{title: "second"}
	r.Push(s2)

	if r.Depth() != 2 {
		t.Errorf("expected depth 2, got %d", r.Depth())
	}
	if r.Active().Title() != "second" {
		t.Errorf("expected active 'second', got %q", r.Active().Title())
	}
	if !s2.initRan {
		t.Error("expected Init() to run on pushed screen")
	}
}

func TestPop(t *testing.T) {
	s1 := &stubScreen{title: "first"}
	r := New(s1)

	s2 := &stubScreen{title: "second"}
	r.Push(s2)
	r.Pop()

	if r.Depth() != 1 {
		t.Errorf("expected depth 1, got %d", r.Depth())
	}
	if r.Active().Title() != "first" {
		t.Errorf("expected active 'first', got %q", r.Active().Title())
	}
}

func TestPopNoopAtBottom(t *testing.T) {
	s1 := &stubScreen{title: "first"}
	r := New(s1)

	r.Pop()

	if r.Depth() != 1 {
		t.Errorf("expected depth 1 after pop at bottom, got %d", r.Depth())
	}
}

func TestReplace(t *testing.T) {
	s1 := &stubScreen{title: "first"}
	r := New(s1)

	s2 := &stubScreen{title: "second"}
	r.Replace(s2)

	if r.Depth() != 1 {
		t.Errorf("expected depth 1 after replace, got %d", r.Depth())
	}
	if r.Active().Title() != "second" {
		t.Errorf("expected active 'second', got %q", r.Active().Title())
	}
	if !s2.initRan {
		t.Error("expected Init() to run on replaced screen")
	}
}

func TestReplaceScreenMsg(t *testing.T) {
	s1 := &stubScreen{title: "first"}
	r := New(s1)

	s2 := &stubScreen{title: "second"}
	r.Update(ReplaceScreenMsg{Screen: s2})

	if r.Active().Title() != "second" {
		t.Errorf("expected active 'second', got %q", r.Active().Title())
	}
	if !s2.initRan {
		t.Error("expected Init() to run via ReplaceScreenMsg")
	}
}

func TestReplacePreservesStackDepth(t *testing.T) {
	s1 := &stubScreen{title: "first"}
	r := New(s1)

	s2 := &stubScreen{title: "second"}
	r.Push(s2)

	s3 := &stubScreen{title: "third"}
	r.Replace(s3)

	if r.Depth() != 2 {
		t.Errorf("expected depth 2, got %d", r.Depth())
	}
	if r.Active().Title() != "third" {
		t.Errorf("expected active 'third', got %q", r.Active().Title())
	}
}

// countingScreen records the messages it receives.
type countingScreen struct {
	stubScreen
	got []tea.Msg
}

func (s *countingScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	s.got = append(s.got, msg)
	return s, nil
}

func TestUpdateForwardsToActiveOnly(t *testing.T) {
	bottom := &countingScreen{stubScreen: stubScreen{title: "bottom"}}
	top := &countingScreen{stubScreen: stubScreen{title: "top"}}
	r := New(bottom)
	r.Push(top)

	r.Update("hallo")

	if len(top.got) != 1 || len(bottom.got) != 0 {
		t.Errorf("expected only the top screen to receive the message, got top=%d bottom=%d", len(top.got), len(bottom.got))
	}
}

func TestPopScreenMsg(t *testing.T) {
	r := New(&stubScreen{title: "first"})
	r.Push(&stubScreen{title: "second"})

	r.Update(PopScreenMsg{})

	if r.Active().Title() != "first" {
		t.Errorf("expected active 'first', got %q", r.Active().Title())
	}
	if r.View(80, 24) != "first" {
		t.Errorf("expected view of 'first', got %q", r.View(80, 24))
	}
}

type stoppableScreen struct {
	stubScreen
	stopped bool
}

func (s *stoppableScreen) Stop() { s.stopped = true }

func TestReplaceAndPopStopScreens(t *testing.T) {
	first := &stoppableScreen{stubScreen: stubScreen{title: "first"}}
	r := New(first)

	second := &stoppableScreen{stubScreen: stubScreen{title: "second"}}
	r.Replace(second)
	if !first.stopped {
		t.Error("expected replaced screen to be stopped")
	}

	r.Push(&stubScreen{title: "third"})
	r.Pop()
	if second.stopped {
		t.Error("screen below a popped one must keep running")
	}

	r.Push(&stoppableScreen{stubScreen: stubScreen{title: "fourth"}})
	top := r.Active().(*stoppableScreen)
	r.Pop()
	if !top.stopped {
		t.Error("expected popped screen to be stopped")
	}
}

type tickMsg struct{}

// backgroundScreen records the messages it receives while covered.
type backgroundScreen struct {
	stubScreen
	background []tea.Msg
}

func (s *backgroundScreen) Background(msg tea.Msg) tea.Cmd {
	s.background = append(s.background, msg)
	return nil
}

func TestBackgroundDelivery(t *testing.T) {
	bottom := &backgroundScreen{stubScreen: stubScreen{title: "result"}}
	plain := &stubScreen{title: "plain"}
	r := New(bottom)
	r.Push(plain)
	r.Push(&stubScreen{title: "history"})

	r.Update(tickMsg{})
	r.Update(tea.KeyPressMsg{Code: 'x', Text: "x"})

	if len(bottom.background) != 1 {
		t.Fatalf("expected 1 background message, got %d", len(bottom.background))
	}
	if _, ok := bottom.background[0].(tickMsg); !ok {
		t.Errorf("expected tickMsg, got %T", bottom.background[0])
	}

	// The active screen is updated, not backgrounded.
	r.Pop()
	r.Pop()
	r.Update(tickMsg{})
	if len(bottom.background) != 1 {
		t.Errorf("active screen must not get background delivery, got %d", len(bottom.background))
	}
}
