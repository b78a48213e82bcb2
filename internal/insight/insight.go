// Package insight asks an LLM for a short reflection prompt on a finished
// questionnaire. The text is shown alongside the result and never feeds
// back into score or band.
package insight

import (
	"github.com/abhisek/medienreflexion/internal/content"
	"github.com/abhisek/medienreflexion/internal/session"
)

// Insight is the generated reflection shown under the evaluation.
type Insight struct {
	Headline    string   `json:"headline"`
	Reflection  string   `json:"reflection"`
	Suggestions []string `json:"suggestions"`
}

// Input is everything the prompt is built from.
type Input struct {
	SessionID     string
	Questionnaire *content.Questionnaire
	Result        session.Result
}
