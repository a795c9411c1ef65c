// Package config loads the sfl configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/example/sfl-lite/sfl/domain"
	"github.com/example/sfl-lite/sfl/heuristic"
	"github.com/example/sfl-lite/sfl/report"
)

// Defaults
const (
	DefaultHeuristic      = "Tarantula"
	DefaultOutputName     = "codeforest"
	DefaultOutputFormat   = "xml"
	DefaultOutputDir      = "."
	DefaultLogLevel       = "info"
	DefaultTestTimeout    = 5 * time.Minute
	DefaultDatabaseName   = "history.db"
	DefaultServerAddress  = "localhost:7400"
	DefaultMetricsAddress = "localhost:7401"
)

// configFiles are searched in order in each directory.
var configFiles = []string{
	"sfl.yaml",
	"sfl.yml",
	".sfl.yaml",
	".sfl.yml",
	"sfl.json",
	".sfl.toml",
}

// Config represents the main configuration structure
type Config struct {
	// Heuristic is the ranking heuristic name
	Heuristic string `json:"heuristic" mapstructure:"heuristic" yaml:"heuristic"`

	// ProjectDir is the root of the project under analysis
	ProjectDir string `json:"project_dir" mapstructure:"project_dir" yaml:"project_dir"`

	// LogLevel is one of error, warn, info, debug
	LogLevel string `json:"log_level" mapstructure:"log_level" yaml:"log_level"`

	Output  OutputConfig  `json:"output" mapstructure:"output" yaml:"output"`
	Runner  RunnerConfig  `json:"runner" mapstructure:"runner" yaml:"runner"`
	Storage StorageConfig `json:"storage" mapstructure:"storage" yaml:"storage"`
	Server  ServerConfig  `json:"server" mapstructure:"server" yaml:"server"`
}

// OutputConfig controls the report.
type OutputConfig struct {
	// Name is the report file name without extension
	Name string `json:"name" mapstructure:"name" yaml:"name"`

	// Type is F (flat) or H (hierarchical)
	Type string `json:"type" mapstructure:"type" yaml:"type"`

	// Format is xml, json, yaml or text
	Format string `json:"format" mapstructure:"format" yaml:"format"`

	// Directory receives the report; relative to the working directory
	Directory string `json:"directory" mapstructure:"directory" yaml:"directory"`
}

// RunnerConfig controls test execution.
type RunnerConfig struct {
	// Packages are the go package patterns to test
	Packages []string `json:"packages" mapstructure:"packages" yaml:"packages"`

	// CoverPkg is passed to go test -coverpkg
	CoverPkg string `json:"cover_pkg" mapstructure:"cover_pkg" yaml:"cover_pkg"`

	// Run only executes tests matching this regexp
	Run string `json:"run" mapstructure:"run" yaml:"run"`

	// TestsFile lists the tests to execute, one per line
	TestsFile string `json:"tests_file" mapstructure:"tests_file" yaml:"tests_file"`

	// Timeout bounds a single test
	Timeout time.Duration `json:"timeout" mapstructure:"timeout" yaml:"timeout"`

	// GoBinary is the go command
	GoBinary string `json:"go_binary" mapstructure:"go_binary" yaml:"go_binary"`
}

// StorageConfig controls the session history database.
type StorageConfig struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled" yaml:"enabled"`
	Path    string `json:"path" mapstructure:"path" yaml:"path"`
}

// ServerConfig controls sfl serve.
type ServerConfig struct {
	Address        string `json:"address" mapstructure:"address" yaml:"address"`
	MetricsAddress string `json:"metrics_address" mapstructure:"metrics_address" yaml:"metrics_address"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Heuristic: DefaultHeuristic,
		LogLevel:  DefaultLogLevel,
		Output: OutputConfig{
			Name:      DefaultOutputName,
			Type:      domain.OutputFlat,
			Format:    DefaultOutputFormat,
			Directory: DefaultOutputDir,
		},
		Runner: RunnerConfig{
			Packages: []string{"./..."},
			Timeout:  DefaultTestTimeout,
			GoBinary: "go",
		},
		Storage: StorageConfig{
			Enabled: true,
			Path:    DefaultDatabasePath(),
		},
		Server: ServerConfig{
			Address:        DefaultServerAddress,
			MetricsAddress: DefaultMetricsAddress,
		},
	}
}

// DefaultDatabasePath returns the history database under the user's home
// directory, falling back to the working directory.
func DefaultDatabasePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".sfl", DefaultDatabaseName)
	}
	return filepath.Join(home, ".sfl", DefaultDatabaseName)
}

// LoadConfig loads the file at configPath, or the first config file found
// from projectDir upwards when configPath is empty. Without any file the
// defaults are returned.
func LoadConfig(configPath, projectDir string) (*Config, error) {
	if configPath == "" {
		configPath = findDefaultConfig(projectDir)
	}
	if configPath == "" {
		return DefaultConfig(), nil
	}

	// Create a new viper instance to avoid shared global state
	v := viper.New()
	config := DefaultConfig()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// findDefaultConfig searches dir and its parents for a config file.
func findDefaultConfig(dir string) string {
	if dir == "" {
		dir = "."
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return ""
	}
	for {
		for _, name := range configFiles {
			path := filepath.Join(abs, name)
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				return path
			}
		}
		parent := filepath.Dir(abs)
		if parent == abs {
			return ""
		}
		abs = parent
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if _, err := heuristic.Lookup(c.Heuristic); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidConfig, err)
	}
	switch strings.ToUpper(c.Output.Type) {
	case domain.OutputFlat, domain.OutputHierarchical:
	default:
		return fmt.Errorf("%w: output.type must be F or H, got %q", domain.ErrInvalidConfig, c.Output.Type)
	}
	if _, err := report.ParseFormat(c.Output.Format); err != nil {
		return fmt.Errorf("%w: output.format: %v", domain.ErrInvalidConfig, err)
	}
	if c.Output.Name == "" || strings.ContainsAny(c.Output.Name, `/\`) {
		return fmt.Errorf("%w: output.name must be a file name, got %q", domain.ErrInvalidConfig, c.Output.Name)
	}
	switch strings.ToLower(c.LogLevel) {
	case "error", "err", "warn", "warning", "info", "debug", "trace", "all", "":
	default:
		return fmt.Errorf("%w: unknown log_level %q", domain.ErrInvalidConfig, c.LogLevel)
	}
	if c.Runner.Timeout < 0 {
		return fmt.Errorf("%w: runner.timeout must not be negative", domain.ErrInvalidConfig)
	}
	if c.Storage.Enabled && c.Storage.Path == "" {
		return fmt.Errorf("%w: storage.path is required when storage is enabled", domain.ErrInvalidConfig)
	}
	return nil
}

// SessionConfig returns the per-session settings derived from the file.
func (c *Config) SessionConfig() domain.SessionConfig {
	project := c.ProjectDir
	if project == "" {
		if wd, err := os.Getwd(); err == nil {
			project = filepath.Base(wd)
		}
	}
	return domain.SessionConfig{
		Project:    project,
		Heuristic:  c.Heuristic,
		OutputType: c.Output.Type,
		OutputName: c.Output.Name,
	}.WithDefaults()
}

// SaveConfig writes the configuration as YAML.
func SaveConfig(config *Config, path string) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
