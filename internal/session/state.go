package session

import "github.com/abhisek/medienreflexion/internal/content"

// Phase is one of the four mutually exclusive stages of a session.
type Phase int

const (
	PhaseIntro     Phase = iota // Start screen, nothing answered yet
	PhaseAnswering              // Linear walk through the questions
	PhaseReviewing              // Overview with out-of-order edits
	PhaseFinished               // Score and evaluation frozen
)

func (p Phase) String() string {
	switch p {
	case PhaseIntro:
		return "intro"
	case PhaseAnswering:
		return "answering"
	case PhaseReviewing:
		return "reviewing"
	case PhaseFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// Answers maps question id to the chosen option value. A missing key means
// the question is unanswered.
type Answers map[int]int

// Clone returns an independent copy.
func (a Answers) Clone() Answers {
	out := make(Answers, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Result is the evaluation frozen when the session is submitted.
type Result struct {
	Score    int
	MaxScore int
	Band     content.Band
	Answers  Answers

	// Complete is false when the review phase was submitted with
	// unanswered questions (they count as 0).
	Complete bool
}

// Transition describes a successful phase change.
type Transition struct {
	From  Phase
	To    Phase
	Event string
}

// Event names reported in Transition.Event.
const (
	EventStart           = "start"
	EventAdvance         = "advance"
	EventRetreat         = "retreat"
	EventBackToAnswering = "back-to-answering"
	EventSubmit          = "submit"
	EventReset           = "reset"
)
