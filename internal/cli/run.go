package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"wasmloop/internal/config"
	"wasmloop/internal/pipeline"
	"wasmloop/internal/server"
)

var runCmd = &cobra.Command{
	Use:   "run [package]",
	Short: "Run the full dev loop and serve the result until interrupted",
	Long: `Run executes every pipeline step in order (build, verify, bindgen,
stage) and then serves the staged output directory. The server runs in
the foreground until Ctrl-C.

Example:
  wasmloop run
  wasmloop run pointer-demo`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle Ctrl-C: cancel the context so the server shuts down cleanly.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nShutting down...")
		cancel()
	}()

	p := pipeline.New(*cfg, "")
	if err := p.Run(ctx); err != nil {
		return err
	}

	return serveDir(ctx, cfg, cfg.Bindgen.OutDir)
}

// serveDir starts the static file server on dir and blocks until ctx is
// cancelled. A graceful interrupt returns nil.
func serveDir(ctx context.Context, cfg *config.Config, dir string) error {
	srv, err := server.New(&server.Config{
		Host:       cfg.Server.Host,
		Port:       cfg.Server.Port,
		Dir:        dir,
		Extensions: cfg.Server.Extensions,
	})
	if err != nil {
		return serveError(err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(ctx)
	}()

	// Wait for the listener so the printed URL reflects the actual port.
	for srv.ListenAddr() == "" {
		select {
		case err := <-errCh:
			if err != nil {
				return serveError(err)
			}
			return serveError(errors.New("server exited before listening"))
		case <-time.After(10 * time.Millisecond):
		}
	}

	fmt.Printf("Serving %s on http://%s\n", dir, srv.ListenAddr())
	fmt.Println("Press Ctrl-C to stop.")

	return <-errCh
}

// serveError wraps a server launch failure in the pipeline error taxonomy.
func serveError(err error) error {
	return &pipeline.StepError{
		Step:     "serve",
		Kind:     pipeline.KindServe,
		ExitCode: -1,
		Err:      err,
	}
}
