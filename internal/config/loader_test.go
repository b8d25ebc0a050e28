package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Default(t *testing.T) {
	t.Parallel()

	// Temp directory without a config file.
	tmpDir := t.TempDir()

	cfg, err := Load(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, DefaultPackage, cfg.Build.Package)
	assert.Equal(t, DefaultTarget, cfg.Build.Target)
	assert.Equal(t, DefaultOutDir, cfg.Bindgen.OutDir)
	assert.Equal(t, DefaultEntryPage, cfg.Stage.EntryPage)
	assert.Equal(t, DefaultHost, cfg.Server.Host)
	assert.Equal(t, DefaultPort, cfg.Server.Port)
	assert.Equal(t, DefaultExtensions(), cfg.Server.Extensions)
}

func TestLoad_ValidFile(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	content := `build:
  package: pointer-demo
  target: wasm32-unknown-unknown
bindgen:
  out_dir: dist
  out_name: demo
server:
  port: 9000
  extensions: [html, wasm, js]
`
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, ConfigFileName), []byte(content), 0o644))

	cfg, err := Load(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, "pointer-demo", cfg.Build.Package)
	assert.Equal(t, "dist", cfg.Bindgen.OutDir)
	assert.Equal(t, "demo", cfg.Bindgen.OutName)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, []string{"html", "wasm", "js"}, cfg.Server.Extensions)
	// Untouched sections keep defaults.
	assert.Equal(t, DefaultEntryPage, cfg.Stage.EntryPage)
	assert.Equal(t, DefaultHost, cfg.Server.Host)
}

func TestLoad_PartialFile(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	content := `build:
  package: widgets
`
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, ConfigFileName), []byte(content), 0o644))

	cfg, err := Load(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, "widgets", cfg.Build.Package)
	assert.Equal(t, DefaultTarget, cfg.Build.Target)
	assert.Equal(t, DefaultPort, cfg.Server.Port)
}

func TestLoad_InvalidYAML(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, ConfigFileName), []byte(`build: [`), 0o644))

	_, err := Load(tmpDir)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestValidate_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{
			name:   "empty package",
			mutate: func(c *Config) { c.Build.Package = "" },
			field:  "build.package",
		},
		{
			name:   "empty target",
			mutate: func(c *Config) { c.Build.Target = "" },
			field:  "build.target",
		},
		{
			name:   "absolute out dir",
			mutate: func(c *Config) { c.Bindgen.OutDir = "/tmp/out" },
			field:  "bindgen.out_dir",
		},
		{
			name:   "escaping out dir",
			mutate: func(c *Config) { c.Bindgen.OutDir = "../elsewhere" },
			field:  "bindgen.out_dir",
		},
		{
			name:   "empty entry page",
			mutate: func(c *Config) { c.Stage.EntryPage = "" },
			field:  "stage.entry_page",
		},
		{
			name:   "port too large",
			mutate: func(c *Config) { c.Server.Port = 70000 },
			field:  "server.port",
		},
		{
			name:   "negative port",
			mutate: func(c *Config) { c.Server.Port = -1 },
			field:  "server.port",
		},
		{
			name:   "no extensions",
			mutate: func(c *Config) { c.Server.Extensions = nil },
			field:  "server.extensions",
		},
		{
			name:   "extension with dot",
			mutate: func(c *Config) { c.Server.Extensions = []string{".html"} },
			field:  "server.extensions",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := DefaultConfig()
			tt.mutate(&cfg)

			err := Validate(&cfg)
			require.Error(t, err)
			assert.True(t, IsValidationError(err))
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestBuildConfig_ArtifactPath(t *testing.T) {
	t.Parallel()

	c := BuildConfig{Package: "pointer-demo", Target: "wasm32-unknown-unknown"}
	assert.Equal(t,
		filepath.Join("target", "wasm32-unknown-unknown", "debug", "pointer_demo.wasm"),
		c.ArtifactPath())
}

func TestConfig_ModuleName(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Build.Package = "pointer-demo"
	assert.Equal(t, "pointer_demo", cfg.ModuleName())

	cfg.Bindgen.OutName = "app"
	assert.Equal(t, "app", cfg.ModuleName())
}
