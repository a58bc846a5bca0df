package cli

import (
	"bufio"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/ibeckermayer/cardcheck/internal/browser"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Open the app in a visible browser at the mobile viewport",
	Long: `Open the target URL in a visible Chrome using the same options and mobile
viewport as the smoke test, so the card can be inspected by hand. Press
Enter to close the browser.`,
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, _ []string) error {
	bcfg := cfg.Browser
	bcfg.Headless = false // visible so you can see it

	log.Printf("Opening %s at %s...", cfg.Target.BaseURL, cfg.Viewport.Mobile)

	session, err := browser.NewSession(cmd.Context(), browser.Options(bcfg, cfg.Viewport.Mobile), cfg.Viewport.Mobile)
	if err != nil {
		return err
	}
	defer session.Close()

	if err := session.Navigate(session.Context(), cfg.Target.BaseURL); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Press Enter to close the browser...")
	bufio.NewReader(os.Stdin).ReadString('\n')

	log.Println("Done.")
	return nil
}
