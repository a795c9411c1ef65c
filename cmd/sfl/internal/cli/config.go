package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/sfl-lite/cmd/sfl/internal/ui"
	"github.com/example/sfl-lite/internal/config"
)

func newConfigCommand(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		Long: `Display the configuration after the config file and --log-level and
--project-dir are applied.

EXAMPLES:
  # Show configuration
  sfl config

  # Write a default sfl.yaml
  sfl config init`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := g.cfg
			ui.PrintHeader("Configuration")

			ui.PrintInfo("Ranking:")
			ui.PrintInfo(fmt.Sprintf("  Heuristic: %s", cfg.Heuristic))
			ui.PrintInfo(fmt.Sprintf("  Project:   %s", cfg.SessionConfig().Project))
			ui.PrintInfo("")

			ui.PrintInfo("Report:")
			ui.PrintInfo(fmt.Sprintf("  Name:      %s", cfg.Output.Name))
			ui.PrintInfo(fmt.Sprintf("  Type:      %s", cfg.Output.Type))
			ui.PrintInfo(fmt.Sprintf("  Format:    %s", cfg.Output.Format))
			ui.PrintInfo(fmt.Sprintf("  Directory: %s", cfg.Output.Directory))
			ui.PrintInfo("")

			ui.PrintInfo("Runner:")
			ui.PrintInfo(fmt.Sprintf("  Packages:  %s", strings.Join(cfg.Runner.Packages, " ")))
			if cfg.Runner.CoverPkg != "" {
				ui.PrintInfo(fmt.Sprintf("  Coverpkg:  %s", cfg.Runner.CoverPkg))
			}
			if cfg.Runner.Run != "" {
				ui.PrintInfo(fmt.Sprintf("  Run:       %s", cfg.Runner.Run))
			}
			if cfg.Runner.TestsFile != "" {
				ui.PrintInfo(fmt.Sprintf("  Tests:     %s", cfg.Runner.TestsFile))
			}
			ui.PrintInfo(fmt.Sprintf("  Timeout:   %s", cfg.Runner.Timeout))
			ui.PrintInfo("")

			ui.PrintInfo("History:")
			if cfg.Storage.Enabled {
				ui.PrintInfo(fmt.Sprintf("  Database:  %s", cfg.Storage.Path))
			} else {
				ui.PrintInfo("  disabled")
			}
			ui.PrintInfo("")

			ui.PrintInfo("Server:")
			ui.PrintInfo(fmt.Sprintf("  gRPC:      %s", cfg.Server.Address))
			ui.PrintInfo(fmt.Sprintf("  Metrics:   %s", cfg.Server.MetricsAddress))
			ui.PrintInfo(fmt.Sprintf("  Log level: %s", cfg.LogLevel))
			return nil
		},
	}

	cmd.AddCommand(newConfigInitCommand())
	return cmd
}

func newConfigInitCommand() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a default configuration file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "sfl.yaml"
			if len(args) > 0 {
				path = args[0]
			}
			if !force {
				if _, err := os.Stat(path); err == nil {
					return fmt.Errorf("%s already exists. Use --force to overwrite", path)
				}
			}
			if err := config.SaveConfig(config.DefaultConfig(), path); err != nil {
				return err
			}
			ui.PrintSuccess(fmt.Sprintf("Wrote %s", path))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")
	return cmd
}
