package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/abhisek/medienreflexion/internal/selfupdate"
	"github.com/spf13/cobra"
)

const updateTimeout = 2 * time.Minute

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update medienreflexion to the latest release",
	RunE: func(cmd *cobra.Command, args []string) error {
		target, _ := cmd.Flags().GetString("to")
		checkOnly, _ := cmd.Flags().GetBool("check")
		out := cmd.OutOrStdout()

		checker := selfupdate.NewChecker(selfupdate.WithTimeout(updateTimeout))

		ctx, cancel := context.WithTimeout(cmd.Context(), updateTimeout)
		defer cancel()

		if checkOnly {
			res, err := checker.Check(ctx, &selfupdate.CheckInput{Version: version})
			if err != nil {
				return err
			}
			if !res.UpdateAvailable {
				fmt.Fprintf(out, "Aktuell: %s (neueste Version %s)\n", version, res.LatestVersion)
				return nil
			}
			fmt.Fprintf(out, "Neue Version verfügbar: %s\n%s\n", res.LatestVersion, res.ReleaseURL)
			return nil
		}

		err := checker.Update(ctx, &selfupdate.UpdateInput{
			CurrentVersion: version,
			TargetVersion:  target,
		}, func(p selfupdate.Progress) {
			fmt.Fprintln(out, p.Message)
		})

		if err == nil {
			return nil
		}

		if errors.Is(err, selfupdate.ErrDevBuild) {
			fmt.Fprintln(out, "Entwicklungsversionen können nicht aktualisiert werden. Bitte zuerst ein Release installieren.")
			return nil
		}
		if errors.Is(err, selfupdate.ErrAlreadyLatest) {
			fmt.Fprintln(out, "Die neueste Version ist bereits installiert.")
			return nil
		}
		if os.IsPermission(err) {
			return fmt.Errorf("%w\n\nTry running: sudo medienreflexion update", err)
		}

		return err
	},
}

func init() {
	updateCmd.Flags().String("to", "", "Install a specific release tag instead of the latest")
	updateCmd.Flags().Bool("check", false, "Only check whether a newer release exists")
}
