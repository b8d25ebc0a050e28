package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"wasmloop/internal/pipeline"
)

var buildCmd = &cobra.Command{
	Use:   "build [package]",
	Short: "Run the pipeline without serving",
	Long: `Build compiles the package, verifies the artifact, generates web
bindings, and stages the entry page, then exits. Use 'wasmloop serve'
to serve the staged output afterwards.

Example:
  wasmloop build
  wasmloop build pointer-demo`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	p := pipeline.New(*cfg, "")
	if err := p.Run(ctx); err != nil {
		return err
	}

	fmt.Printf("Staged output in %s\n", cfg.Bindgen.OutDir)
	return nil
}
