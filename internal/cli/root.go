// Package cli provides the cobra commands for cardcheck.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ibeckermayer/cardcheck/internal/config"
)

// errRunFailed signals a failed smoke test in strict mode. Its details were
// already printed by the runner.
var errRunFailed = errors.New("smoke test failed")

var (
	configFile string
	cfg        *config.Config

	rootCmd = &cobra.Command{
		Use:   "cardcheck",
		Short: "Smoke test for the customer card UI",
		Long: `cardcheck drives a headless Chrome against the locally running app and walks
the customer card flow: client selection, the IA and Trocar buttons, the
actions bottom sheet and the desktop layout.

Run without a subcommand to execute the smoke test once.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			switch cmd.Name() {
			case "help", "completion", "path", "init":
				return nil
			}

			var err error
			cfg, err = loadConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			return nil
		},
		RunE: runSmoke,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is <user config dir>/cardcheck/config.toml)")
}

func configPath() (string, error) {
	if configFile != "" {
		return configFile, nil
	}
	return config.ConfigPath()
}

func loadConfig() (*config.Config, error) {
	path, err := configPath()
	if err != nil {
		return nil, err
	}
	return config.LoadOrDefault(path)
}

// Execute runs the root command and returns the process exit code
func Execute() int {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		if !errors.Is(err, errRunFailed) {
			fmt.Fprintln(os.Stderr, err)
		}
		return 1
	}
	return 0
}
