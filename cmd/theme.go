package cmd

import (
	"fmt"

	"github.com/abhisek/medienreflexion/internal/store"
	"github.com/spf13/cobra"
)

var themeCmd = &cobra.Command{
	Use:       "theme [dark|light|system]",
	Short:     "Show or set the stored colour theme",
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"dark", "light", "system"},
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := cmd.Context()
		prefs := s.PreferenceRepo()
		out := cmd.OutOrStdout()

		if len(args) == 0 {
			value, ok, err := prefs.Get(ctx, store.PrefTheme)
			if err != nil {
				return fmt.Errorf("read theme: %w", err)
			}
			if !ok {
				value = "system"
			}
			fmt.Fprintln(out, value)
			return nil
		}

		switch args[0] {
		case "system":
			err = prefs.Delete(ctx, store.PrefTheme)
		default:
			err = prefs.Set(ctx, store.PrefTheme, args[0])
		}
		if err != nil {
			return fmt.Errorf("store theme: %w", err)
		}
		fmt.Fprintln(out, "Theme:", args[0])
		return nil
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration as TOML",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cfg.Write(cmd.OutOrStdout())
	},
}
