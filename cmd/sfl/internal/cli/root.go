package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/example/sfl-lite/internal/config"
	"github.com/example/sfl-lite/internal/logger"
)

// globals holds the persistent flags and the configuration they load.
type globals struct {
	configPath string
	logLevel   string
	projectDir string

	cfg    *config.Config
	logger *slog.Logger
}

// NewRootCommand builds the sfl command tree.
func NewRootCommand() *cobra.Command {
	g := &globals{}

	rootCmd := &cobra.Command{
		Use:   "sfl",
		Short: "Rank suspicious code by spectrum-based fault localization",
		Long: `sfl runs a test suite one test at a time, records which lines (and, from
instrumented runners, which definition-use associations) each test covered,
and ranks every covered requirement by how strongly its coverage correlates
with the failing tests.

WORKFLOW:
  1. sfl run ./...            run go tests and rank their coverage
  2. open codeforest.xml      inspect the most suspicious requirements
  3. sfl rank <id> -H ochiai  re-rank a stored session with another heuristic

EXAMPLES:
  # Rank the packages of the current module with Tarantula
  sfl run ./...

  # Only the tests of one package, hierarchical report
  sfl run ./internal/parser --output-type H

  # Rank coverage recorded by an external runner
  sfl replay coverage.jsonl --heuristic ochiai --format json

  # Accept coverage from remote runners over gRPC
  sfl serve`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return g.load(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&g.configPath, "config", "c", "", "config file (default: sfl.yaml searched upwards)")
	flags.StringVar(&g.logLevel, "log-level", "", "log level: error, warn, info, debug")
	flags.StringVarP(&g.projectDir, "project-dir", "C", "", "project directory (default: working directory)")

	rootCmd.AddCommand(
		newRunCommand(g),
		newReplayCommand(g),
		newRankCommand(g),
		newHistoryCommand(g),
		newHeuristicsCommand(),
		newServeCommand(g),
		newConfigCommand(g),
		newVersionCommand(),
	)
	return rootCmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCommand().Execute()
}

func (g *globals) load(cmd *cobra.Command) error {
	cfg, err := config.LoadConfig(g.configPath, g.projectDir)
	if err != nil {
		return err
	}
	if g.projectDir != "" {
		cfg.ProjectDir = g.projectDir
	}
	if g.logLevel != "" {
		cfg.LogLevel = g.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	g.cfg = cfg
	g.logger = logger.Setup(cfg.LogLevel)
	return nil
}
