package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Interactive search and version browser",
	Long: `Opens a terminal interface for querying the active version, browsing
versions and promoting or rolling back without leaving the terminal.`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	app, err := tui.NewApp(&tui.Ports{
		Search:   searchService,
		Versions: versionService,
	})
	if err != nil {
		return err
	}
	return app.WithContext(cmd.Context()).Run()
}
