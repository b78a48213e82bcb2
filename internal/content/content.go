// Package content holds the immutable questionnaire dataset: questions, the
// shared answer scale and the evaluation bands.
package content

// Question is a single questionnaire item.
type Question struct {
	ID   int    `yaml:"id"`
	Text string `yaml:"text"`
}

// Option is one step of the answer scale shared by all questions.
type Option struct {
	Label string `yaml:"label"`
	Value int    `yaml:"value"`
}

// Band maps an inclusive score range onto a qualitative evaluation.
type Band struct {
	Min         int    `yaml:"min"`
	Max         int    `yaml:"max"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	StyleTag    string `yaml:"style"`
}

// Contains reports whether score lies within the band's inclusive range.
func (b Band) Contains(score int) bool {
	return score >= b.Min && score <= b.Max
}

// Notices are the fixed texts shown with the result.
type Notices struct {
	Disclaimer string `yaml:"disclaimer"`
	Finished   string `yaml:"finished"`
}

// Questionnaire is the complete dataset. It is read-only after Load.
type Questionnaire struct {
	Title     string     `yaml:"title"`
	Lead      string     `yaml:"lead"`
	Notes     []string   `yaml:"notes"`
	Options   []Option   `yaml:"options"`
	Questions []Question `yaml:"questions"`
	Bands     []Band     `yaml:"bands"`
	Notices   Notices    `yaml:"notices"`
}

// MaxOptionValue returns the highest value on the answer scale.
func (q *Questionnaire) MaxOptionValue() int {
	maxVal := 0
	for _, o := range q.Options {
		if o.Value > maxVal {
			maxVal = o.Value
		}
	}
	return maxVal
}

// MaxScore is the highest reachable total: every question answered with the
// top option.
func (q *Questionnaire) MaxScore() int {
	return len(q.Questions) * q.MaxOptionValue()
}

// QuestionIndex returns the position of the question with the given id.
func (q *Questionnaire) QuestionIndex(id int) (int, bool) {
	for i, qu := range q.Questions {
		if qu.ID == id {
			return i, true
		}
	}
	return 0, false
}

// OptionByValue returns the option carrying value v.
func (q *Questionnaire) OptionByValue(v int) (Option, bool) {
	for _, o := range q.Options {
		if o.Value == v {
			return o, true
		}
	}
	return Option{}, false
}

// IsValidValue reports whether v is one of the option values.
func (q *Questionnaire) IsValidValue(v int) bool {
	_, ok := q.OptionByValue(v)
	return ok
}

// LastIndex is the cursor position of the final question.
func (q *Questionnaire) LastIndex() int {
	return len(q.Questions) - 1
}
