package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/sfl-lite/cmd/sfl/internal/ui"
	"github.com/example/sfl-lite/internal/config"
	"github.com/example/sfl-lite/internal/storage"
	"github.com/example/sfl-lite/internal/storage/sqlite"
	"github.com/example/sfl-lite/sfl/domain"
	"github.com/example/sfl-lite/sfl/report"
)

// reportFlags are shared by every command that produces a report.
type reportFlags struct {
	heuristic  string
	output     string
	outputType string
	format     string
	dir        string
	top        int
}

func (f *reportFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.heuristic, "heuristic", "H", "", "ranking heuristic (see 'sfl heuristics')")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "report file name without extension (default: codeforest)")
	cmd.Flags().StringVar(&f.outputType, "output-type", "", "report layout: F (flat) or H (hierarchical)")
	cmd.Flags().StringVarP(&f.format, "format", "f", "", "report format: xml, json, yaml or text")
	cmd.Flags().StringVarP(&f.dir, "dir", "d", "", "report directory")
	cmd.Flags().IntVar(&f.top, "top", 10, "requirements to print (0 = all)")
}

// apply overrides the configuration with the flags that were set.
func (f *reportFlags) apply(cfg *config.Config) error {
	if f.heuristic != "" {
		cfg.Heuristic = f.heuristic
	}
	if f.output != "" {
		cfg.Output.Name = f.output
	}
	if f.outputType != "" {
		cfg.Output.Type = f.outputType
	}
	if f.format != "" {
		cfg.Output.Format = f.format
	}
	if f.dir != "" {
		cfg.Output.Directory = f.dir
	}
	return cfg.Validate()
}

// storageFlags select the history database.
type storageFlags struct {
	noStore bool
	db      string
}

func (f *storageFlags) register(cmd *cobra.Command, withNoStore bool) {
	if withNoStore {
		cmd.Flags().BoolVar(&f.noStore, "no-store", false, "do not record the session in the history database")
	}
	cmd.Flags().StringVar(&f.db, "db", "", "history database path")
}

// open returns the history store, or nil when storage is disabled.
func (f *storageFlags) open(ctx context.Context, cfg *config.Config) (storage.Storage, error) {
	if f.noStore || (!cfg.Storage.Enabled && f.db == "") {
		return nil, nil
	}
	path := cfg.Storage.Path
	if f.db != "" {
		path = f.db
	}
	store, err := sqlite.Open(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	return store, nil
}

// openRequired is open for commands that only work on stored history.
func (f *storageFlags) openRequired(ctx context.Context, cfg *config.Config) (storage.Storage, error) {
	store, err := f.open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, fmt.Errorf("%w: session history is disabled", domain.ErrInvalidConfig)
	}
	return store, nil
}

// writeReport renders the result in the configured format and prints the
// head of the rank.
func writeReport(cfg *config.Config, result *domain.RankResult, top int) (string, error) {
	format, err := report.ParseFormat(cfg.Output.Format)
	if err != nil {
		return "", err
	}
	r := report.New(result)
	path, err := report.WriteFile(cfg.Output.Directory, cfg.Output.Name, r, report.Options{
		Format:     format,
		OutputType: cfg.Output.Type,
	})
	if err != nil {
		return "", err
	}

	ui.PrintHeader(fmt.Sprintf("Rank (%s)", r.Heuristic))
	ui.PrintRank(r, top)
	return path, nil
}

// persist stores a session and its spectrum. A failure is reported but does
// not fail the command; the report has already been written.
func persist(ctx context.Context, store storage.Storage, summary domain.Summary, status domain.SessionStatus, reqs []domain.Requirement) {
	if store == nil {
		return
	}
	rec := storage.NewSessionRecord(summary, status)
	if err := storage.SaveSession(ctx, store, rec, reqs); err != nil {
		ui.PrintWarning(fmt.Sprintf("failed to record session: %v", err))
		return
	}
	ui.PrintSuccess(fmt.Sprintf("Session %s recorded", summary.SessionID))
}
