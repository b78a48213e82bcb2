package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/abhisek/medienreflexion/internal/config"
	"github.com/abhisek/medienreflexion/internal/store"
	"github.com/spf13/cobra"
)

// cfg is the effective configuration, loaded before every command runs.
var cfg config.Config

// logFile is closed by Execute once the command has finished.
var logFile io.Closer

var rootCmd = &cobra.Command{
	Use:   "medienreflexion",
	Short: "Self-assessment of your media use",
	Long:  "Medien-Reflexion: 13 Fragen zur eigenen Mediennutzung mit Auswertung im Terminal.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		loaded, err := config.Load(path)
		if err != nil {
			return err
		}
		loaded.ApplyEnv(os.Getenv)
		cfg = loaded

		debug, _ := cmd.Flags().GetBool("debug")
		return setupLogging(debug)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
	SilenceUsage: true,
}

// Execute runs the root command. The log file is closed on every exit
// path, including errors returned from RunE.
func Execute() error {
	defer closeLog()
	return rootCmd.Execute()
}

func closeLog() {
	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides MEDIENREFLEXION_DB env var)")
	rootCmd.PersistentFlags().String("config", "", "Path to TOML config file")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")

	rootCmd.AddCommand(questionsCmd)
	rootCmd.AddCommand(scoreCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(themeCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(versionCmd)
}

// setupLogging sends slog output to the log file. The TUI owns the terminal,
// so nothing is logged to stderr.
func setupLogging(debug bool) error {
	level := cfg.ResolvedLogLevel()
	if debug {
		level = slog.LevelDebug
	}

	path := cfg.ResolvedLogFile()
	if err := store.EnsureDir(path); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	logFile = f

	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then MEDIENREFLEXION_DB env var or store.path, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if p := cfg.ResolvedStorePath(); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}

// openStore opens the database selected by resolveDBPath.
func openStore(cmd *cobra.Command) (*store.Store, error) {
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return s, nil
}
