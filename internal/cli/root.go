package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"wasmloop/internal/config"
	"wasmloop/internal/logging"
)

// Version is set at build time via ldflags.
var Version = "dev"

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "wasmloop [package]",
	Short: "Local dev loop for wasm packages: build, bind, stage, serve",
	Long: `Wasmloop runs the local development loop for a WebAssembly package:
compile it, generate web bindings, stage the HTML entry page next to
them, and serve the result on loopback with the cross-origin isolation
headers that shared-memory wasm needs.

Run with no arguments to execute the full loop and leave the server
running until interrupted.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRun,
}

func init() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("wasmloop version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (default "+config.ConfigFileName+")")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable debug logging")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig loads the effective configuration, applying the optional
// package-selector argument on top of the file.
func loadConfig(args []string) (*config.Config, error) {
	if verbose {
		logging.SetLevel(logging.LevelDebug)
	}

	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		if _, statErr := os.Stat(configPath); statErr != nil {
			return nil, fmt.Errorf("config file not found: %s", configPath)
		}
		cfg, err = config.LoadFile(configPath)
	} else {
		cwd, cwdErr := os.Getwd()
		if cwdErr != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", cwdErr)
		}
		cfg, err = config.Load(cwd)
	}
	if err != nil {
		return nil, err
	}

	if len(args) > 0 {
		cfg.Build.Package = args[0]
		if err := config.Validate(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}
