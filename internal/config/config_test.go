package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/sfl-lite/sfl/domain"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "Tarantula", cfg.Heuristic)
	assert.Equal(t, "codeforest", cfg.Output.Name)
	assert.Equal(t, domain.OutputFlat, cfg.Output.Type)
	assert.Equal(t, []string{"./..."}, cfg.Runner.Packages)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"unknown heuristic", func(c *Config) { c.Heuristic = "Magic" }},
		{"bad output type", func(c *Config) { c.Output.Type = "X" }},
		{"bad format", func(c *Config) { c.Output.Format = "csv" }},
		{"name with separator", func(c *Config) { c.Output.Name = "out/report" }},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }},
		{"negative timeout", func(c *Config) { c.Runner.Timeout = -time.Second }},
		{"storage without path", func(c *Config) { c.Storage.Path = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			assert.ErrorIs(t, cfg.Validate(), domain.ErrInvalidConfig)
		})
	}
}

func TestLoadConfigWithoutFile(t *testing.T) {
	cfg, err := LoadConfig("", t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Heuristic, cfg.Heuristic)
}

func TestLoadConfigDiscoversParentFile(t *testing.T) {
	root := t.TempDir()
	content := `heuristic: ochiai
output:
  type: H
  format: json
runner:
  packages: ["./pkg/..."]
  timeout: 30s
storage:
  enabled: false
`
	require.NoError(t, os.WriteFile(filepath.Join(root, "sfl.yaml"), []byte(content), 0644))
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0755))

	cfg, err := LoadConfig("", nested)
	require.NoError(t, err)
	assert.Equal(t, "ochiai", cfg.Heuristic)
	assert.Equal(t, "H", cfg.Output.Type)
	assert.Equal(t, "json", cfg.Output.Format)
	assert.Equal(t, "codeforest", cfg.Output.Name, "unset keys keep defaults")
	assert.Equal(t, []string{"./pkg/..."}, cfg.Runner.Packages)
	assert.Equal(t, 30*time.Second, cfg.Runner.Timeout)
	assert.False(t, cfg.Storage.Enabled)
}

func TestLoadConfigRejectsInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sfl.yaml")
	require.NoError(t, os.WriteFile(path, []byte("heuristic: nope\n"), 0644))

	_, err := LoadConfig(path, "")
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "sfl.yaml")
	cfg := DefaultConfig()
	cfg.Heuristic = "DStar"
	cfg.Runner.Timeout = 90 * time.Second
	require.NoError(t, SaveConfig(cfg, path))

	loaded, err := LoadConfig(path, "")
	require.NoError(t, err)
	assert.Equal(t, "DStar", loaded.Heuristic)
	assert.Equal(t, 90*time.Second, loaded.Runner.Timeout)
	assert.Equal(t, cfg.Storage, loaded.Storage)
}

func TestSessionConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ProjectDir = "demo"
	cfg.Output.Type = "h"
	sc := cfg.SessionConfig()
	assert.Equal(t, "demo", sc.Project)
	assert.Equal(t, domain.OutputHierarchical, sc.OutputType)
	require.NoError(t, sc.Validate())
}
