package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/abhisek/medienreflexion/internal/content"
	"github.com/abhisek/medienreflexion/internal/session"
	"github.com/spf13/cobra"
)

var questionsCmd = &cobra.Command{
	Use:   "questions",
	Short: "Print the questionnaire",
	RunE: func(cmd *cobra.Command, args []string) error {
		q := content.Default()
		out := cmd.OutOrStdout()

		fmt.Fprintln(out, q.Title)
		fmt.Fprintln(out, strings.Repeat("─", 60))
		for i, qu := range q.Questions {
			fmt.Fprintf(out, "%2d. %s\n", i+1, qu.Text)
		}

		fmt.Fprintln(out)
		fmt.Fprintln(out, "Antwortskala:")
		for _, o := range q.Options {
			fmt.Fprintf(out, "  %d = %s\n", o.Value, o.Label)
		}
		return nil
	},
}

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score a complete set of answers without the TUI",
	Example: `  medienreflexion score --answers 0,1,2,3,0,1,2,3,0,1,2,3,0`,
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, _ := cmd.Flags().GetString("answers")
		q := content.Default()

		values, err := parseValues(raw)
		if err != nil {
			return err
		}
		answers, err := session.FromValues(q, values)
		if err != nil {
			return err
		}

		score := session.Score(q, answers)
		band := session.EvaluationFor(q, score)

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Punktzahl: %d / %d\n", score, q.MaxScore())
		fmt.Fprintf(out, "Einordnung: %s\n\n", band.Title)
		fmt.Fprintln(out, band.Description)
		return nil
	},
}

// parseValues splits a comma separated list of option values.
func parseValues(raw string) ([]int, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("--answers is required")
	}
	parts := strings.Split(raw, ",")
	values := make([]int, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("invalid answer %q: %w", p, err)
		}
		values = append(values, v)
	}
	return values, nil
}

func init() {
	scoreCmd.Flags().StringP("answers", "a", "", "Comma separated option values in question order")
}
