package cli

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/ibeckermayer/cardcheck/internal/cardcheck"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the smoke test once",
	Long: `Run the customer card smoke test once and print one line per check.

A failure prints "Test failed: <reason>" and writes a screenshot. The exit
status stays 0 unless strict = true is set in the config.`,
	RunE: runSmoke,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runSmoke(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	return smokeOnce(ctx, cmd)
}

func smokeOnce(ctx context.Context, cmd *cobra.Command) error {
	res := cardcheck.New(cfg, cmd.OutOrStdout()).Run(ctx)
	if res.Failed() && cfg.Strict {
		return errRunFailed
	}
	return nil
}
