package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"regexp"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/example/sfl-lite/cmd/sfl/internal/ui"
	"github.com/example/sfl-lite/internal/observability"
	"github.com/example/sfl-lite/pkg/id"
	"github.com/example/sfl-lite/sfl/collector"
	"github.com/example/sfl-lite/sfl/domain"
	"github.com/example/sfl-lite/sfl/runner"
)

// selectFlags narrow the tests of a run.
type selectFlags struct {
	run       string
	testsFile string
	record    string
	progress  bool
}

func (f *selectFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.run, "run", "", "only run tests whose name matches this regexp")
	cmd.Flags().StringVar(&f.testsFile, "tests-file", "", "file listing the tests to run, one per line")
	cmd.Flags().StringVar(&f.record, "record", "", "also write every test outcome and its coverage to this replay file")
	cmd.Flags().BoolVar(&f.progress, "progress", true, "show a progress bar")
}

// analysis is one collection session from test selection to report.
type analysis struct {
	g       *globals
	report  *reportFlags
	storage *storageFlags
	sel     *selectFlags
}

func (a *analysis) runnerOptions() ([]runner.Option, func(), error) {
	cfg := a.g.cfg
	opts := []runner.Option{runner.WithLogger(a.g.logger)}
	cleanup := func() {}

	pattern := a.sel.run
	if pattern == "" {
		pattern = cfg.Runner.Run
	}
	if pattern != "" {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, cleanup, fmt.Errorf("%w: --run: %v", domain.ErrInvalidArgument, err)
		}
		opts = append(opts, runner.WithFilter(re))
	}

	testsFile := a.sel.testsFile
	if testsFile == "" {
		testsFile = cfg.Runner.TestsFile
	}
	if testsFile != "" {
		names, err := runner.ReadTestsFile(testsFile)
		if err != nil {
			return nil, cleanup, err
		}
		opts = append(opts, runner.WithTests(names))
	}

	if a.sel.record != "" {
		f, err := os.Create(a.sel.record)
		if err != nil {
			return nil, cleanup, fmt.Errorf("failed to create replay file: %w", err)
		}
		opts = append(opts, runner.WithRecorder(runner.NewRecorder(f)))
		cleanup = func() { f.Close() }
	}
	return opts, cleanup, nil
}

// execute drives source through a new session, writes the report and
// records the session in the history database.
func (a *analysis) execute(cmd *cobra.Command, source runner.Source) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := a.g.cfg
	if err := a.report.apply(cfg); err != nil {
		return err
	}

	store, err := a.storage.open(ctx, cfg)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	opts, cleanup, err := a.runnerOptions()
	defer cleanup()
	if err != nil {
		return err
	}

	sessionCfg := cfg.SessionConfig()
	sessionID := id.Generate()
	session := collector.NewSession(sessionID, sessionCfg,
		collector.WithLogger(a.g.logger.With("session", sessionID)),
		collector.WithMetrics(observability.NewMetrics()))

	ui.PrintHeader("Spectrum-Based Fault Localization")
	ui.PrintInfo(fmt.Sprintf("Project:   %s", sessionCfg.Project))
	ui.PrintInfo(fmt.Sprintf("Heuristic: %s", sessionCfg.Heuristic))
	ui.PrintInfo("")

	progress := ui.NewProgress(a.sel.progress)
	opts = append(opts, runner.WithProgress(progress.Update))
	summary, err := runner.New(source, opts...).Run(ctx, session)
	progress.Close()
	if err != nil {
		// ctx may already be cancelled here.
		persist(context.WithoutCancel(ctx), store, summary, domain.StatusAborted, session.Requirements())
		ui.PrintSummary(summary, domain.StatusAborted)
		return err
	}

	result, err := session.Rank("")
	if err != nil {
		return err
	}
	path, err := writeReport(cfg, result, a.report.top)
	if err != nil {
		return err
	}
	persist(ctx, store, result.Summary, domain.StatusFinished, session.Requirements())
	ui.PrintSummary(result.Summary, domain.StatusFinished)
	ui.PrintSuccess(fmt.Sprintf("Report written to %s", path))
	return nil
}
