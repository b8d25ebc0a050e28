// Package web provides the embedded starter entry page that `wasmloop init`
// writes into a fresh project. The page loads the wasm-bindgen glue module
// generated by the pipeline.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"path/filepath"
)

//go:embed starter/index.html
var starter embed.FS

// moduleNamePlaceholder is substituted with the generated module basename.
const moduleNamePlaceholder = "__MODULE__"

// StarterPage returns the starter HTML entry page with the generated
// module name filled in.
func StarterPage(moduleName string) []byte {
	data, err := starter.ReadFile("starter/index.html")
	if err != nil {
		// The page is embedded at build time; missing means a broken binary.
		panic("failed to read embedded starter page: " + err.Error())
	}
	return bytes.ReplaceAll(data, []byte(moduleNamePlaceholder), []byte(moduleName))
}

// WriteStarterPage writes the starter page to path, creating parent
// directories as needed. It refuses to overwrite an existing file.
func WriteStarterPage(path, moduleName string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}

	if err := os.WriteFile(path, StarterPage(moduleName), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
