package domain

import (
	"fmt"
	"strings"
)

// Output types of the XML report.
const (
	OutputFlat         = "F"
	OutputHierarchical = "H"
)

// SessionConfig holds the per-session settings of the engine.
type SessionConfig struct {
	// Project is a display name for the project under analysis.
	Project string

	// Heuristic is the name of the ranking heuristic.
	// Default: Tarantula
	Heuristic string

	// OutputType selects the flat (F) or hierarchical (H) report layout.
	// Default: F
	OutputType string

	// OutputName is the report file name without extension.
	// Default: codeforest
	OutputName string
}

// DefaultSessionConfig returns the default configuration.
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		Heuristic:  "Tarantula",
		OutputType: OutputFlat,
		OutputName: "codeforest",
	}
}

// Validate checks that the configuration is valid. Heuristic names are
// resolved when a rank is requested, not here.
func (c *SessionConfig) Validate() error {
	if strings.TrimSpace(c.Heuristic) == "" {
		return fmt.Errorf("%w: heuristic must be set", ErrInvalidConfig)
	}
	switch c.OutputType {
	case OutputFlat, OutputHierarchical:
	default:
		return fmt.Errorf("%w: output type must be F or H, got %q", ErrInvalidConfig, c.OutputType)
	}
	if strings.ContainsAny(c.OutputName, `/\`) {
		return fmt.Errorf("%w: output name must not contain path separators, got %q",
			ErrInvalidConfig, c.OutputName)
	}
	return nil
}

// WithDefaults returns a new config with defaults applied for zero values.
func (c SessionConfig) WithDefaults() SessionConfig {
	defaults := DefaultSessionConfig()
	if c.Heuristic == "" {
		c.Heuristic = defaults.Heuristic
	}
	if c.OutputType == "" {
		c.OutputType = defaults.OutputType
	}
	c.OutputType = strings.ToUpper(c.OutputType)
	if c.OutputName == "" {
		c.OutputName = defaults.OutputName
	}
	return c
}
