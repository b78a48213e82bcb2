package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/abhisek/medienreflexion/internal/store"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List stored results",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		session, _ := cmd.Flags().GetString("events")

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		out := cmd.OutOrStdout()
		if session != "" {
			events, err := s.EventRepo().QuerySessionEvents(cmd.Context(), session)
			if err != nil {
				return fmt.Errorf("query session events: %w", err)
			}
			writeSessionEvents(out, session, events)
			return nil
		}

		repo := s.ResultRepo()
		results, err := repo.List(cmd.Context(), store.QueryOpts{Limit: limit})
		if err != nil {
			return fmt.Errorf("list results: %w", err)
		}
		if len(results) == 0 {
			fmt.Fprintln(out, "Noch keine Ergebnisse gespeichert.")
			return nil
		}
		total, err := repo.Count(cmd.Context())
		if err != nil {
			return fmt.Errorf("count results: %w", err)
		}

		fmt.Fprintf(out, "%-5s  %-16s  %-7s  %-36s  %s\n", "ID", "Datum", "Punkte", "Sitzung", "Einordnung")
		fmt.Fprintln(out, strings.Repeat("─", 100))
		for _, r := range results {
			title := r.BandTitle
			if !r.Complete {
				title += " (unvollständig)"
			}
			fmt.Fprintf(out, "%-5d  %-16s  %3d/%-3d  %-36s  %s\n",
				r.ID,
				r.Timestamp.Local().Format("02.01.2006 15:04"),
				r.Score, r.MaxScore,
				r.SessionID,
				title,
			)
		}
		if total > len(results) {
			fmt.Fprintf(out, "\n%d von %d Ergebnissen (--limit für mehr)\n", len(results), total)
		}
		return nil
	},
}

func writeSessionEvents(w io.Writer, session string, events []store.SessionEvent) {
	if len(events) == 0 {
		fmt.Fprintf(w, "Keine Ereignisse für Sitzung %s.\n", session)
		return
	}
	fmt.Fprintf(w, "Sitzung %s\n", session)
	fmt.Fprintln(w, strings.Repeat("─", 60))
	for _, e := range events {
		step := e.PhaseTo
		if e.PhaseFrom != "" {
			step = e.PhaseFrom + " → " + e.PhaseTo
		}
		fmt.Fprintf(w, "%s  %-10s  %s\n", e.Timestamp.Local().Format(timeLayout), e.Action, step)
	}
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete stored results and session events",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		removed, err := s.Reset(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d Ergebnis(se) gelöscht.\n", removed)
		return nil
	},
}

func init() {
	historyCmd.Flags().IntP("limit", "n", 20, "Number of results to show")
	historyCmd.Flags().String("events", "", "Show the phase changes of one session instead")
}
