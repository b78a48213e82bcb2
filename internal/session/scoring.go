package session

import "github.com/abhisek/medienreflexion/internal/content"

// Score sums the answers over the question sequence. Unanswered questions
// count as 0 and keys that are not question ids are ignored.
func Score(q *content.Questionnaire, answers Answers) int {
	total := 0
	for _, qu := range q.Questions {
		total += answers[qu.ID]
	}
	return total
}

// EvaluationFor returns the first band whose inclusive range contains score.
// If none matches, which a validated questionnaire rules out, the first band
// is returned.
func EvaluationFor(q *content.Questionnaire, score int) content.Band {
	for _, b := range q.Bands {
		if b.Contains(score) {
			return b
		}
	}
	return q.Bands[0]
}
