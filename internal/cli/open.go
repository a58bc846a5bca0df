package cli

import (
	"fmt"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"
)

var openCmd = &cobra.Command{
	Use:       "open <config|screenshot>",
	Short:     "Open the config file or the last failure screenshot",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"config", "screenshot"},
	RunE:      runOpen,
}

func init() {
	rootCmd.AddCommand(openCmd)
}

func runOpen(_ *cobra.Command, args []string) error {
	var path string
	var err error

	switch args[0] {
	case "config":
		path, err = configPath()
	case "screenshot":
		path = cfg.Target.ScreenshotPath
	default:
		return fmt.Errorf("unknown target: %s", args[0])
	}
	if err != nil {
		return fmt.Errorf("failed to get path: %w", err)
	}

	if err := browser.OpenFile(path); err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	return nil
}
