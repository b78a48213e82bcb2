package cmd

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/abhisek/medienreflexion/internal/store"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command with args against a temporary database.
func execute(t *testing.T, dbPath string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_STATE_HOME", t.TempDir())

	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--db", dbPath}, args...))
	err := Execute()
	return out.String(), err
}

// resetFlags restores flag defaults; cobra keeps parsed values between
// Execute calls on the same command tree.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// seed opens the database at path, lets fill write to it and closes it.
func seed(t *testing.T, path string, fill func(ctx context.Context, s *store.Store)) {
	t.Helper()
	s, err := store.Open(path)
	require.NoError(t, err)
	fill(context.Background(), s)
	require.NoError(t, s.Close())
}

func TestParseValues(t *testing.T) {
	values, err := parseValues("0, 1,2 ,3")
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 3}, values)

	_, err = parseValues("")
	assert.Error(t, err)

	_, err = parseValues("1,x")
	assert.Error(t, err)
}

func TestScoreCommand(t *testing.T) {
	db := filepath.Join(t.TempDir(), "test.db")

	out, err := execute(t, db, "score", "--answers", "3,3,3,3,3,3,3,3,3,3,3,3,3")
	require.NoError(t, err)
	assert.Contains(t, out, "Punktzahl: 39 / 52")
	assert.Contains(t, out, "Problematische Nutzung")

	_, err = execute(t, db, "score", "--answers", "1,2,3")
	assert.Error(t, err)

	_, err = execute(t, db, "score", "--answers", "9,3,3,3,3,3,3,3,3,3,3,3,3")
	assert.Error(t, err)
}

func TestThemeCommand(t *testing.T) {
	db := filepath.Join(t.TempDir(), "test.db")

	out, err := execute(t, db, "theme")
	require.NoError(t, err)
	assert.Equal(t, "system\n", out)

	_, err = execute(t, db, "theme", "light")
	require.NoError(t, err)

	out, err = execute(t, db, "theme")
	require.NoError(t, err)
	assert.Equal(t, "light\n", out)

	_, err = execute(t, db, "theme", "blue")
	assert.Error(t, err)
}

func TestHistoryEmpty(t *testing.T) {
	db := filepath.Join(t.TempDir(), "test.db")

	out, err := execute(t, db, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "Noch keine Ergebnisse")
}

func TestHistoryCommand(t *testing.T) {
	db := filepath.Join(t.TempDir(), "test.db")
	seed(t, db, func(ctx context.Context, s *store.Store) {
		for i, score := range []int{12, 30, 45} {
			require.NoError(t, s.ResultRepo().Save(ctx, &store.ResultRecord{
				SessionID: "sitzung-" + string(rune('a'+i)),
				Score:     score,
				MaxScore:  52,
				BandTitle: "Einordnung",
				Answers:   map[int]int{1: 3},
				Complete:  i != 1,
			}))
		}
		events := s.EventRepo()
		require.NoError(t, events.AppendSessionEvent(ctx, store.SessionEventData{SessionID: "sitzung-c", Action: "start", PhaseTo: "quiz"}))
		require.NoError(t, events.AppendSessionEvent(ctx, store.SessionEventData{SessionID: "sitzung-c", Action: "submit", PhaseFrom: "quiz", PhaseTo: "result"}))
	})

	out, err := execute(t, db, "history", "--limit", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "45/52")
	assert.Contains(t, out, "30/52")
	assert.NotContains(t, out, "12/52")
	assert.Contains(t, out, "(unvollständig)")
	assert.Contains(t, out, "2 von 3 Ergebnissen")

	out, err = execute(t, db, "history")
	require.NoError(t, err)
	assert.NotContains(t, out, "von 3")

	out, err = execute(t, db, "history", "--events", "sitzung-c")
	require.NoError(t, err)
	assert.Contains(t, out, "Sitzung sitzung-c")
	assert.Contains(t, out, "quiz → result")

	out, err = execute(t, db, "history", "--events", "unbekannt")
	require.NoError(t, err)
	assert.Contains(t, out, "Keine Ereignisse")
}

func TestLLMListCommand(t *testing.T) {
	db := filepath.Join(t.TempDir(), "test.db")
	seed(t, db, func(ctx context.Context, s *store.Store) {
		events := s.EventRepo()
		for _, e := range []store.LLMRequestEventData{
			{SessionID: "s-1", Provider: "mock", Model: "modell-eins", Purpose: "insight", Success: true},
			{SessionID: "s-2", Provider: "mock", Model: "modell-zwei", Purpose: "insight", ErrorMessage: "rate limited"},
			{Provider: "mock", Model: "modell-drei", Purpose: "check", Success: true},
		} {
			require.NoError(t, events.AppendLLMRequest(ctx, e))
		}
	})

	out, err := execute(t, db, "llm", "list", "--session", "s-2")
	require.NoError(t, err)
	assert.Contains(t, out, "modell-zwei")
	assert.Contains(t, out, "✗")
	assert.NotContains(t, out, "modell-eins")

	out, err = execute(t, db, "llm", "list", "--purpose", "check")
	require.NoError(t, err)
	assert.Contains(t, out, "modell-drei")
	assert.NotContains(t, out, "modell-zwei")

	out, err = execute(t, db, "llm", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "modell-eins")
	assert.Contains(t, out, "modell-drei")

	out, err = execute(t, db, "llm", "view", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Sitzung:   s-2")
	assert.Contains(t, out, "Fehler:    rate limited")
	assert.Contains(t, out, "(nicht aufgezeichnet)")

	_, err = execute(t, db, "llm", "view", "99")
	assert.Error(t, err)
}

func TestWriteLLMUsage(t *testing.T) {
	var buf bytes.Buffer
	writeLLMUsage(&buf, nil, nil)
	assert.Contains(t, buf.String(), "Noch keine LLM-Nutzung")

	buf.Reset()
	writeLLMUsage(&buf,
		[]store.LLMUsage{{Purpose: "insight", Calls: 2, InputTokens: 100, OutputTokens: 40, AvgLatencyMs: 900}},
		[]store.LLMUsage{{Model: "claude-haiku-4-5", Calls: 2, InputTokens: 100, OutputTokens: 40}},
	)
	assert.Contains(t, buf.String(), "Nach Zweck")
	assert.Contains(t, buf.String(), "claude-haiku-4-5")
	assert.Regexp(t, `Summe\s+2\s+100\s+40`, buf.String())
}

func TestLogFileClosedOnError(t *testing.T) {
	db := filepath.Join(t.TempDir(), "test.db")

	_, err := execute(t, db, "score", "--answers", "1")
	require.Error(t, err)
	assert.Nil(t, logFile)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "Über", truncate("Überblick", 4))
	assert.Equal(t, "kurz", truncate("kurz", 10))
}
