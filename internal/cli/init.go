package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"wasmloop/internal/config"
	"wasmloop/web"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter HTML entry page",
	Long: `Init writes the starter entry page to the configured entry page path
(web/index.html by default) so a fresh project can run the pipeline
immediately. Existing files are never overwritten.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(nil)
	if err != nil {
		return err
	}

	if err := initProject(cfg); err != nil {
		return err
	}

	fmt.Printf("Wrote %s\n", cfg.Stage.EntryPage)
	fmt.Println("\nNext: 'wasmloop run' to build and serve.")
	return nil
}

func initProject(cfg *config.Config) error {
	return web.WriteStarterPage(cfg.Stage.EntryPage, cfg.ModuleName())
}
