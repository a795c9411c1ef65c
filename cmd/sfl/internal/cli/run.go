package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/sfl-lite/sfl/runner"
)

func newRunCommand(g *globals) *cobra.Command {
	a := &analysis{g: g, report: &reportFlags{}, storage: &storageFlags{}, sel: &selectFlags{}}
	var (
		coverPkg string
		timeout  time.Duration
		goBinary string
	)

	cmd := &cobra.Command{
		Use:   "run [packages]",
		Short: "Run go tests one at a time and rank their coverage",
		Long: `Run every test of the given packages in its own go test process with a
coverage profile, feed each profile into a new session and rank the covered
lines with the selected heuristic.

A test that cannot be executed, a coverage profile that cannot be read, or
Ctrl+C aborts the session: nothing is ranked and no report is written.

EXAMPLES:
  # All packages of the module
  sfl run ./...

  # Cover the whole module, not only the package under test
  sfl run ./... --coverpkg ./...

  # Only parser tests, keeping a replay file
  sfl run ./... --run 'TestParse' --record parser.jsonl`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := g.cfg
			packages := cfg.Runner.Packages
			if len(args) > 0 {
				packages = args
			}
			if coverPkg == "" {
				coverPkg = cfg.Runner.CoverPkg
			}
			if timeout == 0 {
				timeout = cfg.Runner.Timeout
			}
			if goBinary == "" {
				goBinary = cfg.Runner.GoBinary
			}

			dir := cfg.ProjectDir
			if dir == "" {
				dir = "."
			}
			modulePath, err := runner.ModulePath(dir)
			if err != nil {
				return err
			}

			profileDir, err := os.MkdirTemp("", "sfl-profiles-")
			if err != nil {
				return fmt.Errorf("failed to create profile directory: %w", err)
			}
			defer os.RemoveAll(profileDir)

			executor := runner.NewGoTestExecutor(runner.GoTestConfig{
				Packages:   packages,
				CoverPkg:   coverPkg,
				Timeout:    timeout,
				Dir:        dir,
				GoBinary:   goBinary,
				TrimPrefix: modulePath,
			}, filepath.Clean(profileDir))
			return a.execute(cmd, executor)
		},
	}

	a.report.register(cmd)
	a.storage.register(cmd, true)
	a.sel.register(cmd)
	cmd.Flags().StringVar(&coverPkg, "coverpkg", "", "packages to instrument (go test -coverpkg)")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "maximum duration of one test (default 5m)")
	cmd.Flags().StringVar(&goBinary, "go", "", "go command to run")
	return cmd
}
