package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ibeckermayer/cardcheck/internal/config"
)

var configForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the config file",
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file path",
	RunE: func(cmd *cobra.Command, _ []string) error {
		path, err := configPath()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default config file",
	Long: `Write the default configuration to the config path. The defaults match the
built-in targets, so an untouched file behaves like no file at all.`,
	RunE: runConfigInit,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configInitCmd)
	configInitCmd.Flags().BoolVarP(&configForce, "force", "f", false, "overwrite an existing file")
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	path, err := configPath()
	if err != nil {
		return err
	}

	if _, err := os.Stat(path); err == nil && !configForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	if err := config.Default().SaveFile(path); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created default config at: %s\n", path)
	return nil
}
