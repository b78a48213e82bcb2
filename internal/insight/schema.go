package insight

import "github.com/abhisek/medienreflexion/internal/llm"

// Schema is the JSON schema the provider must answer with.
var Schema = &llm.Schema{
	Name:        "result-insight",
	Description: "A short, supportive reflection on a media use self-assessment",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"headline": map[string]any{
				"type":        "string",
				"description": "Kurze Überschrift (3 bis 8 Wörter)",
				"maxLength":   80,
			},
			"reflection": map[string]any{
				"type":        "string",
				"description": "Zwei bis vier Sätze, die das Ergebnis einordnen",
				"maxLength":   600,
			},
			"suggestions": map[string]any{
				"type":        "array",
				"description": "Konkrete, kleine Schritte für den Alltag",
				"items": map[string]any{
					"type":      "string",
					"maxLength": 160,
				},
				"minItems": 1,
				"maxItems": 3,
			},
		},
		"required":             []any{"headline", "reflection", "suggestions"},
		"additionalProperties": false,
	},
}
