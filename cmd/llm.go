package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/abhisek/medienreflexion/internal/store"
	"github.com/spf13/cobra"
)

const timeLayout = "02.01.2006 15:04:05"

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect recorded LLM requests",
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent LLM requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		var opts store.QueryOpts
		opts.Limit, _ = cmd.Flags().GetInt("limit")
		opts.Purpose, _ = cmd.Flags().GetString("purpose")
		opts.SessionID, _ = cmd.Flags().GetString("session")

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		events, err := s.EventRepo().QueryLLMEvents(cmd.Context(), opts)
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}
		writeLLMEvents(cmd.OutOrStdout(), events)
		return nil
	},
}

var llmViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Show the full request and response of one LLM request",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid ID %q", args[0])
		}

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		e, err := s.EventRepo().GetLLMEvent(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("get event: %w", err)
		}
		if e == nil {
			return fmt.Errorf("event %d not found", id)
		}
		writeLLMEvent(cmd.OutOrStdout(), e)
		return nil
	},
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show token usage per purpose and model",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		repo := s.EventRepo()
		byPurpose, err := repo.LLMUsageByPurpose(cmd.Context())
		if err != nil {
			return fmt.Errorf("query usage: %w", err)
		}
		byModel, err := repo.LLMUsageByModel(cmd.Context())
		if err != nil {
			return fmt.Errorf("query model usage: %w", err)
		}
		writeLLMUsage(cmd.OutOrStdout(), byPurpose, byModel)
		return nil
	},
}

func writeLLMEvents(w io.Writer, events []store.LLMRequestEvent) {
	if len(events) == 0 {
		fmt.Fprintln(w, "Keine LLM-Anfragen gespeichert.")
		return
	}

	fmt.Fprintf(w, "%-5s  %-19s  %-10s  %-8s  %-28s  %6s  %6s  %6s  %s\n",
		"ID", "Zeit", "Zweck", "Sitzung", "Modell", "In", "Out", "Ms", "OK")
	fmt.Fprintln(w, strings.Repeat("─", 104))
	for _, e := range events {
		ok := "✓"
		if !e.Success {
			ok = "✗"
		}
		session := e.SessionID
		if session == "" {
			session = "-"
		}
		fmt.Fprintf(w, "%-5d  %-19s  %-10s  %-8s  %-28s  %6d  %6d  %6d  %s\n",
			e.ID,
			e.Timestamp.Local().Format(timeLayout),
			truncate(e.Purpose, 10),
			truncate(session, 8),
			truncate(e.Model, 28),
			e.InputTokens, e.OutputTokens, e.LatencyMs,
			ok,
		)
	}
}

func writeLLMEvent(w io.Writer, e *store.LLMRequestEvent) {
	field := func(label, value string) {
		fmt.Fprintf(w, "%-10s %s\n", label+":", value)
	}
	field("ID", strconv.Itoa(e.ID))
	field("Zeit", e.Timestamp.Local().Format(timeLayout))
	if e.SessionID != "" {
		field("Sitzung", e.SessionID)
	}
	field("Anbieter", e.Provider)
	field("Modell", e.Model)
	field("Zweck", e.Purpose)
	field("Tokens", fmt.Sprintf("%d in / %d out", e.InputTokens, e.OutputTokens))
	field("Dauer", fmt.Sprintf("%dms", e.LatencyMs))
	if e.ErrorMessage != "" {
		field("Fehler", e.ErrorMessage)
	}

	section := func(title, body string) {
		sep := strings.Repeat("─", 60)
		fmt.Fprintf(w, "\n%s\n%s\n%s\n", sep, title, sep)
		if body == "" {
			body = "(nicht aufgezeichnet)"
		}
		fmt.Fprintln(w, body)
	}
	section("ANFRAGE", e.RequestBody)
	section("ANTWORT", e.ResponseBody)
}

func writeLLMUsage(w io.Writer, byPurpose, byModel []store.LLMUsage) {
	if len(byPurpose) == 0 {
		fmt.Fprintln(w, "Noch keine LLM-Nutzung aufgezeichnet.")
		return
	}

	rule := strings.Repeat("─", 72)
	row := "%-32s  %6d  %10d  %10d  %8d\n"
	head := func(title, key string) {
		fmt.Fprintf(w, "%s\n%s\n%-32s  %6s  %10s  %10s  %8s\n%s\n",
			title, rule, key, "Aufrufe", "Input", "Output", "Ø Ms", rule)
	}

	head("Nach Zweck", "Zweck")
	var total store.LLMUsage
	for _, u := range byPurpose {
		fmt.Fprintf(w, row, truncate(u.Purpose, 32), u.Calls, u.InputTokens, u.OutputTokens, u.AvgLatencyMs)
		total.Calls += u.Calls
		total.InputTokens += u.InputTokens
		total.OutputTokens += u.OutputTokens
	}
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "%-32s  %6d  %10d  %10d\n\n", "Summe", total.Calls, total.InputTokens, total.OutputTokens)

	head("Nach Modell", "Modell")
	for _, u := range byModel {
		fmt.Fprintf(w, row, truncate(u.Model, 32), u.Calls, u.InputTokens, u.OutputTokens, u.AvgLatencyMs)
	}
}

func truncate(s string, max int) string {
	if r := []rune(s); len(r) > max {
		return string(r[:max])
	}
	return s
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "Number of requests to show")
	llmListCmd.Flags().StringP("purpose", "p", "", "Only requests with this purpose (e.g. insight)")
	llmListCmd.Flags().StringP("session", "s", "", "Only requests made during this questionnaire session")

	llmCmd.AddCommand(llmListCmd, llmViewCmd, llmStatsCmd)
}
