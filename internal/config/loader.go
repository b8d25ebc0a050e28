package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ConfigFileName is the config file looked up in the working directory.
const ConfigFileName = "wasmloop.yaml"

// Default values for Config.
const (
	DefaultPackage   = "simple"
	DefaultTarget    = "wasm32-unknown-unknown"
	DefaultOutDir    = "target/generated"
	DefaultEntryPage = "web/index.html"
	DefaultHost      = "127.0.0.1"
	DefaultPort      = 8787
)

// DefaultExtensions returns the default servable extension allow-list.
func DefaultExtensions() []string {
	return []string{"html", "js", "mjs", "wasm", "css", "map"}
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		Build: BuildConfig{
			Package: DefaultPackage,
			Target:  DefaultTarget,
		},
		Bindgen: BindgenConfig{
			OutDir: DefaultOutDir,
		},
		Stage: StageConfig{
			EntryPage: DefaultEntryPage,
		},
		Server: ServerConfig{
			Host:       DefaultHost,
			Port:       DefaultPort,
			Extensions: DefaultExtensions(),
		},
	}
}

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
}

// IsValidationError checks if an error is a ValidationError.
func IsValidationError(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}

// Load reads wasmloop.yaml from the given directory. If the file doesn't
// exist, returns default config. Applies defaults for any missing fields.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads and parses the config file at the given path, falling
// back to defaults when the file is absent.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := DefaultConfig()
			return &cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that all config values are valid.
func Validate(cfg *Config) error {
	if cfg.Build.Package == "" {
		return ValidationError{Field: "build.package", Message: "required field is empty"}
	}
	if cfg.Build.Target == "" {
		return ValidationError{Field: "build.target", Message: "required field is empty"}
	}
	if cfg.Bindgen.OutDir == "" {
		return ValidationError{Field: "bindgen.out_dir", Message: "required field is empty"}
	}
	if filepath.IsAbs(cfg.Bindgen.OutDir) {
		return ValidationError{Field: "bindgen.out_dir", Message: "must be relative to the project directory"}
	}
	if strings.HasPrefix(filepath.Clean(cfg.Bindgen.OutDir), "..") {
		return ValidationError{Field: "bindgen.out_dir", Message: "must not escape the project directory"}
	}
	if cfg.Stage.EntryPage == "" {
		return ValidationError{Field: "stage.entry_page", Message: "required field is empty"}
	}
	if cfg.Server.Host == "" {
		return ValidationError{Field: "server.host", Message: "required field is empty"}
	}
	if cfg.Server.Port < 0 || cfg.Server.Port > 65535 {
		return ValidationError{Field: "server.port", Message: "must be between 0 and 65535"}
	}
	if len(cfg.Server.Extensions) == 0 {
		return ValidationError{Field: "server.extensions", Message: "at least one extension is required"}
	}
	for _, ext := range cfg.Server.Extensions {
		if ext == "" {
			return ValidationError{Field: "server.extensions", Message: "extensions must be non-empty"}
		}
		if strings.HasPrefix(ext, ".") {
			return ValidationError{Field: "server.extensions", Message: "extensions must not include the leading dot"}
		}
	}
	return nil
}
