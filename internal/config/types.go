package config

import (
	"path/filepath"
	"strings"
)

// BuildConfig controls the compiler invocation.
type BuildConfig struct {
	// Package is the cargo package selector passed via -p.
	Package string `yaml:"package"`
	// Target is the compilation target triple.
	Target string `yaml:"target"`
}

// BindgenConfig controls the bindings generator invocation.
type BindgenConfig struct {
	// OutDir is where the generated glue code lands.
	OutDir string `yaml:"out_dir"`
	// OutName is the basename for the generated module. Defaults to the
	// build package name with dashes replaced by underscores.
	OutName string `yaml:"out_name"`
}

// StageConfig controls which static assets are copied next to the
// generated glue code.
type StageConfig struct {
	// EntryPage is the HTML file copied into OutDir as index.html.
	EntryPage string `yaml:"entry_page"`
}

// ServerConfig controls the local static file server.
type ServerConfig struct {
	Host string `yaml:"host"`
	// Port 0 asks the OS for an ephemeral port.
	Port int `yaml:"port"`
	// Extensions is the allow-list of servable file extensions,
	// without leading dots.
	Extensions []string `yaml:"extensions"`
}

// Config represents the wasmloop.yaml file.
type Config struct {
	Build   BuildConfig   `yaml:"build"`
	Bindgen BindgenConfig `yaml:"bindgen"`
	Stage   StageConfig   `yaml:"stage"`
	Server  ServerConfig  `yaml:"server"`
}

// ArtifactPath returns the path where the compiler deposits the compiled
// module for this package and target. Cargo replaces dashes in the crate
// name with underscores in the artifact filename.
func (c BuildConfig) ArtifactPath() string {
	name := strings.ReplaceAll(c.Package, "-", "_")
	return filepath.Join("target", c.Target, "debug", name+".wasm")
}

// ModuleName returns the effective output basename for generated bindings.
func (c Config) ModuleName() string {
	if c.Bindgen.OutName != "" {
		return c.Bindgen.OutName
	}
	return strings.ReplaceAll(c.Build.Package, "-", "_")
}
