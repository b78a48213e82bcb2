package insight

import (
	"fmt"
	"strings"

	"github.com/abhisek/medienreflexion/internal/session"
)

const systemPrompt = `Du begleitest Menschen, die ihren eigenen Medienkonsum reflektieren möchten.
Du erhältst das Ergebnis eines Selbsttests mit 13 Fragen und die einzelnen Antworten.

Regeln:
- Schreibe auf Deutsch und siezt die Person.
- Stelle keine Diagnose und bewerte nicht moralisch.
- Beziehe dich auf auffällige Antworten, ohne sie einzeln aufzuzählen.
- Schlage höchstens drei kleine, alltagstaugliche Schritte vor.
- Bei starken Anzeichen weise freundlich auf professionelle Beratungsstellen hin.
- Antworte ausschließlich im vorgegebenen JSON-Format.`

func buildUserMessage(in Input) string {
	var b strings.Builder
	r := in.Result

	fmt.Fprintf(&b, "Punktzahl: %d von %d\n", r.Score, r.MaxScore)
	fmt.Fprintf(&b, "Einordnung: %s\n", r.Band.Title)
	fmt.Fprintf(&b, "Beschreibung: %s\n", r.Band.Description)
	if !r.Complete {
		b.WriteString("Hinweis: Nicht alle Fragen wurden beantwortet.\n")
	}

	b.WriteString("\nAntworten:\n")
	for _, line := range session.AnswerLines(in.Questionnaire, r.Answers) {
		label := line.Label
		if !line.Answered {
			label = "keine Antwort"
		}
		fmt.Fprintf(&b, "%d. %s -> %s\n", line.Question.ID, line.Question.Text, label)
	}

	b.WriteString("\nAufgabe: Formuliere eine kurze Überschrift, eine Einordnung ")
	b.WriteString("in zwei bis vier Sätzen und ein bis drei konkrete Anregungen.")
	return b.String()
}
