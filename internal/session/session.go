// Package session implements the questionnaire session: a four-phase state
// machine that records one answer per question and freezes a scored
// evaluation on submit.
//
// Every operation either applies completely or returns an error and leaves
// the session untouched.
package session

import (
	"fmt"

	"github.com/abhisek/medienreflexion/internal/content"
)

// Session tracks progress through one questionnaire run.
type Session struct {
	q       *content.Questionnaire
	phase   Phase
	cursor  int
	answers Answers
	result  *Result

	onTransition func(Transition)
}

// New creates a session in PhaseIntro with no answers and the cursor at 0.
func New(q *content.Questionnaire) *Session {
	return &Session{
		q:       q,
		phase:   PhaseIntro,
		answers: make(Answers),
	}
}

// OnTransition registers fn to be called after every phase change.
func (s *Session) OnTransition(fn func(Transition)) {
	s.onTransition = fn
}

// Start moves from Intro to the first question.
func (s *Session) Start() error {
	if err := s.require(PhaseIntro, EventStart); err != nil {
		return err
	}
	s.cursor = 0
	s.transition(PhaseAnswering, EventStart)
	return nil
}

// SelectOption records value as the answer to the current question,
// replacing any earlier answer.
func (s *Session) SelectOption(value int) error {
	if err := s.require(PhaseAnswering, "select option"); err != nil {
		return err
	}
	if !s.q.IsValidValue(value) {
		return fmt.Errorf("select option %d: %w", value, ErrInvalidOption)
	}
	s.answers[s.q.Questions[s.cursor].ID] = value
	return nil
}

// Advance moves to the next question, or to Reviewing from the last one.
// The current question must be answered.
func (s *Session) Advance() error {
	if err := s.require(PhaseAnswering, EventAdvance); err != nil {
		return err
	}
	if !s.IsCurrentAnswered() {
		return fmt.Errorf("advance from question %d: %w", s.q.Questions[s.cursor].ID, ErrAnswerRequired)
	}
	if s.IsLastQuestion() {
		s.transition(PhaseReviewing, EventAdvance)
		return nil
	}
	s.cursor++
	return nil
}

// Retreat moves to the previous question, or back to Intro from the first.
func (s *Session) Retreat() error {
	if err := s.require(PhaseAnswering, EventRetreat); err != nil {
		return err
	}
	if s.cursor == 0 {
		s.transition(PhaseIntro, EventRetreat)
		return nil
	}
	s.cursor--
	return nil
}

// EditAnswer sets the answer for any question while reviewing.
func (s *Session) EditAnswer(questionID, value int) error {
	if err := s.require(PhaseReviewing, "edit answer"); err != nil {
		return err
	}
	if _, ok := s.q.QuestionIndex(questionID); !ok {
		return fmt.Errorf("edit answer %d: %w", questionID, ErrUnknownQuestionID)
	}
	if !s.q.IsValidValue(value) {
		return fmt.Errorf("edit answer %d to %d: %w", questionID, value, ErrInvalidOption)
	}
	s.answers[questionID] = value
	return nil
}

// BackToAnswering returns from the review to the last question.
func (s *Session) BackToAnswering() error {
	if err := s.require(PhaseReviewing, EventBackToAnswering); err != nil {
		return err
	}
	s.cursor = s.q.LastIndex()
	s.transition(PhaseAnswering, EventBackToAnswering)
	return nil
}

// Submit computes and freezes the result. Unanswered questions are allowed
// and score 0; Result.Complete records whether any were left open.
func (s *Session) Submit() error {
	if err := s.require(PhaseReviewing, EventSubmit); err != nil {
		return err
	}
	score := Score(s.q, s.answers)
	s.result = &Result{
		Score:    score,
		MaxScore: s.q.MaxScore(),
		Band:     EvaluationFor(s.q, score),
		Answers:  s.answers.Clone(),
		Complete: s.AnsweredCount() == len(s.q.Questions),
	}
	s.transition(PhaseFinished, EventSubmit)
	return nil
}

// Reset clears all answers and returns to Intro.
func (s *Session) Reset() error {
	if err := s.require(PhaseFinished, EventReset); err != nil {
		return err
	}
	s.answers = make(Answers)
	s.cursor = 0
	s.result = nil
	s.transition(PhaseIntro, EventReset)
	return nil
}

func (s *Session) require(p Phase, event string) error {
	if s.phase != p {
		return fmt.Errorf("%s in phase %s: %w", event, s.phase, ErrInvalidTransition)
	}
	return nil
}

func (s *Session) transition(to Phase, event string) {
	from := s.phase
	s.phase = to
	if s.onTransition != nil {
		s.onTransition(Transition{From: from, To: to, Event: event})
	}
}

// Questionnaire returns the dataset the session runs on.
func (s *Session) Questionnaire() *content.Questionnaire {
	return s.q
}

// Phase returns the current phase.
func (s *Session) Phase() Phase {
	return s.phase
}

// Cursor returns the index of the current question. Only meaningful while
// answering.
func (s *Session) Cursor() int {
	return s.cursor
}

// Answers returns a copy of the recorded answers.
func (s *Session) Answers() Answers {
	return s.answers.Clone()
}

// Answer returns the recorded answer for a question id.
func (s *Session) Answer(questionID int) (int, bool) {
	v, ok := s.answers[questionID]
	return v, ok
}

// CurrentQuestion returns the question under the cursor.
func (s *Session) CurrentQuestion() content.Question {
	return s.q.Questions[s.cursor]
}

// IsCurrentAnswered reports whether the question under the cursor has an
// answer.
func (s *Session) IsCurrentAnswered() bool {
	_, ok := s.answers[s.q.Questions[s.cursor].ID]
	return ok
}

// IsLastQuestion reports whether the cursor is on the final question.
func (s *Session) IsLastQuestion() bool {
	return s.cursor == s.q.LastIndex()
}

// AnsweredCount returns how many questions have an answer.
func (s *Session) AnsweredCount() int {
	n := 0
	for _, qu := range s.q.Questions {
		if _, ok := s.answers[qu.ID]; ok {
			n++
		}
	}
	return n
}

// Unanswered lists the questions without an answer, in questionnaire order.
func (s *Session) Unanswered() []content.Question {
	var out []content.Question
	for _, qu := range s.q.Questions {
		if _, ok := s.answers[qu.ID]; !ok {
			out = append(out, qu)
		}
	}
	return out
}

// Progress is the fraction of the questionnaire reached by the cursor,
// counting the current question.
func (s *Session) Progress() float64 {
	return float64(s.cursor+1) / float64(len(s.q.Questions))
}

// Score returns the live score of the recorded answers.
func (s *Session) Score() int {
	return Score(s.q, s.answers)
}

// Evaluation returns the band for the live score.
func (s *Session) Evaluation() content.Band {
	return EvaluationFor(s.q, s.Score())
}

// Result returns the frozen result. ok is false unless the session is
// finished.
func (s *Session) Result() (Result, bool) {
	if s.phase != PhaseFinished || s.result == nil {
		return Result{}, false
	}
	r := *s.result
	r.Answers = r.Answers.Clone()
	return r, true
}
