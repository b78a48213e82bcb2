package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/abhisek/medienreflexion/internal/app"
	"github.com/abhisek/medienreflexion/internal/content"
	"github.com/abhisek/medienreflexion/internal/insight"
	"github.com/abhisek/medienreflexion/internal/llm"
	"github.com/abhisek/medienreflexion/internal/screens/flow"
	"github.com/abhisek/medienreflexion/internal/store"
	"github.com/spf13/cobra"
)

// runApp opens the store, builds dependencies, and launches the TUI.
func runApp(cmd *cobra.Command) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	eventRepo := st.EventRepo()
	deps := flow.Deps{
		Questionnaire: content.Default(),
		Events:        eventRepo,
		CountUp:       cfg.ResolvedCountUp(),
		MaxResults:    cfg.Store.MaxResults,
	}
	if cfg.ResolvedKeepHistory() {
		deps.Results = st.ResultRepo()
	}

	if cfg.ResolvedInsightEnabled() {
		provider, err := newInsightProvider(cmd, eventRepo)
		if err != nil {
			fmt.Fprintln(os.Stderr, "LLM provider not configured:", err)
			fmt.Fprintln(os.Stderr, "Die Auswertung erscheint ohne Denkanstoß.")
		} else if provider != nil {
			deps.Insight = insight.NewService(provider, insight.DefaultConfig())
		}
	}

	return app.Run(app.Options{
		Deps:  deps,
		Prefs: st.PreferenceRepo(),
	})
}

// newInsightProvider resolves the LLM configuration. It returns a nil
// provider without error when no provider is available at all.
func newInsightProvider(cmd *cobra.Command, eventRepo store.EventRepo) (llm.Provider, error) {
	llmCfg, ok := llm.Resolve(cfg.Insight.Provider, cfg.Insight.Model)
	if !ok {
		slog.Info("no llm provider found, insight disabled")
		return nil, nil
	}
	provider, err := llm.NewProvider(cmd.Context(), llmCfg, eventRepo)
	if err != nil {
		return nil, err
	}
	slog.Info("insight enabled", "provider", llmCfg.Provider, "model", provider.ModelID())
	return provider, nil
}
