package pipeline

import (
	"context"
	"fmt"
	"os"

	"github.com/tetratelabs/wazero"
)

// VerifyArtifact compile-checks the compiled module with an embedded wasm
// runtime before it is handed to the bindings generator. This catches
// truncated or mis-targeted artifacts early, with a clearer message than
// the generator's own parse errors. The module is never instantiated.
func VerifyArtifact(ctx context.Context, artifact string) error {
	data, err := os.ReadFile(artifact)
	if err != nil {
		return fmt.Errorf("failed to read artifact: %w", err)
	}
	if len(data) == 0 {
		return fmt.Errorf("artifact %s is empty", artifact)
	}

	rt := wazero.NewRuntimeWithConfig(ctx, wazero.NewRuntimeConfig().
		WithCloseOnContextDone(true))
	defer rt.Close(ctx)

	compiled, err := rt.CompileModule(ctx, data)
	if err != nil {
		return fmt.Errorf("artifact %s is not a valid wasm module: %w", artifact, err)
	}
	return compiled.Close(ctx)
}
