package session

import (
	"fmt"

	"github.com/abhisek/medienreflexion/internal/content"
)

// AnswerLine pairs a question with its recorded answer for display.
type AnswerLine struct {
	Question content.Question
	Value    int
	Label    string
	Answered bool
}

// AnswerLines lists every question in order together with its answer label.
func AnswerLines(q *content.Questionnaire, answers Answers) []AnswerLine {
	lines := make([]AnswerLine, 0, len(q.Questions))
	for _, qu := range q.Questions {
		line := AnswerLine{Question: qu}
		if v, ok := answers[qu.ID]; ok {
			line.Value = v
			line.Answered = true
			if o, ok := q.OptionByValue(v); ok {
				line.Label = o.Label
			}
		}
		lines = append(lines, line)
	}
	return lines
}

// FromValues builds an answer set from values given in question order, as
// used by non-interactive scoring. It requires one valid value per question.
func FromValues(q *content.Questionnaire, values []int) (Answers, error) {
	if len(values) != len(q.Questions) {
		return nil, fmt.Errorf("expected %d answers, got %d", len(q.Questions), len(values))
	}
	answers := make(Answers, len(values))
	for i, v := range values {
		if !q.IsValidValue(v) {
			return nil, fmt.Errorf("question %d: value %d: %w", q.Questions[i].ID, v, ErrInvalidOption)
		}
		answers[q.Questions[i].ID] = v
	}
	return answers, nil
}
