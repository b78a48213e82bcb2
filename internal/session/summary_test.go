package session

import (
	"errors"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/abhisek/medienreflexion/internal/content"
)

func TestFromValues(t *testing.T) {
	q := content.Default()

	answers, err := FromValues(q, []int{0, 1, 2, 3, 4, 0, 1, 2, 3, 4, 0, 1, 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := Score(q, answers); got != 23 {
		t.Errorf("score = %d, want 23", got)
	}
	if answers[q.Questions[4].ID] != 4 {
		t.Errorf("answer for question 5 = %d, want 4", answers[q.Questions[4].ID])
	}
}

func TestFromValues_Errors(t *testing.T) {
	q := content.Default()

	if _, err := FromValues(q, []int{1, 2, 3}); err == nil || !strings.Contains(err.Error(), "expected 13 answers, got 3") {
		t.Errorf("short input err = %v", err)
	}

	values := repeat(1, 13)
	values[6] = 9
	_, err := FromValues(q, values)
	if !errors.Is(err, ErrInvalidOption) {
		t.Fatalf("err = %v, want ErrInvalidOption", err)
	}
	if !strings.Contains(err.Error(), "question 7") {
		t.Errorf("error should name the question: %v", err)
	}
}

func TestAnswerLines(t *testing.T) {
	q := content.Default()
	lines := AnswerLines(q, Answers{1: 0, 3: 4})

	if len(lines) != len(q.Questions) {
		t.Fatalf("got %d lines, want %d", len(lines), len(q.Questions))
	}
	if !lines[0].Answered || lines[0].Label != "nie" {
		t.Errorf("line 0 = %+v", lines[0])
	}
	if lines[1].Answered || lines[1].Label != "" {
		t.Errorf("line 1 should be unanswered: %+v", lines[1])
	}
	if lines[2].Value != 4 || lines[2].Label != "sehr häufig" {
		t.Errorf("line 2 = %+v", lines[2])
	}
}

func TestScore_IgnoresUnknownKeys(t *testing.T) {
	q := content.Default()
	if got := Score(q, Answers{1: 2, 99: 4}); got != 2 {
		t.Errorf("score = %d, want 2", got)
	}
}

func TestEvaluationFor_Boundaries(t *testing.T) {
	q := content.Default()
	tests := []struct {
		score int
		style string
	}{
		{0, "green"}, {13, "green"}, {14, "yellow"}, {26, "yellow"},
		{27, "orange"}, {39, "orange"}, {40, "red"}, {52, "red"},
	}
	for _, tt := range tests {
		if got := EvaluationFor(q, tt.score).StyleTag; got != tt.style {
			t.Errorf("EvaluationFor(%d) = %q, want %q", tt.score, got, tt.style)
		}
	}
}

func TestEvaluationFor_OutOfRange(t *testing.T) {
	q := content.Default()
	first := q.Bands[0]
	for _, score := range []int{-1, q.MaxScore() + 1, -100, 1000} {
		if got := EvaluationFor(q, score); got != first {
			t.Errorf("EvaluationFor(%d) = %q, want first band %q", score, got.Title, first.Title)
		}
	}
}

func TestScore_GeneratedAnswerSets(t *testing.T) {
	q := content.Default()
	rng := rand.New(rand.NewPCG(7, 13))

	for i := 0; i < 500; i++ {
		answers := Answers{}
		want := 0
		for _, qu := range q.Questions {
			// Roughly a third of the questions stay unanswered.
			if rng.IntN(3) == 0 {
				continue
			}
			v := q.Options[rng.IntN(len(q.Options))].Value
			answers[qu.ID] = v
			want += v
		}

		got := Score(q, answers)
		if got != want {
			t.Fatalf("set %d: score = %d, want sum %d (%v)", i, got, want, answers)
		}
		if got < 0 || got > 52 {
			t.Fatalf("set %d: score %d outside 0..52", i, got)
		}
		if b := EvaluationFor(q, got); !b.Contains(got) {
			t.Fatalf("set %d: band %q does not contain %d", i, b.Title, got)
		}
	}
}
