package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/sfl-lite/cmd/sfl/internal/ui"
	"github.com/example/sfl-lite/internal/service"
	"github.com/example/sfl-lite/internal/storage"
	"github.com/example/sfl-lite/sfl/domain"
)

func newRankCommand(g *globals) *cobra.Command {
	rf := &reportFlags{}
	sf := &storageFlags{}

	cmd := &cobra.Command{
		Use:   "rank <session-id>",
		Short: "Re-rank a recorded session",
		Long: `Rank the stored spectrum of a finished session again, usually with a
different heuristic. Aborted sessions cannot be ranked.

EXAMPLES:
  sfl rank 3f2a9c1e-... --heuristic ochiai
  sfl rank 3f2a9c1e-... --heuristic dstar --format text`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := g.cfg
			if err := rf.apply(cfg); err != nil {
				return err
			}
			store, err := sf.openRequired(ctx, cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			// Without --heuristic the session is re-ranked as it was recorded.
			result, err := service.NewHistory(store, nil).Rank(ctx, args[0], rf.heuristic)
			if err != nil {
				return err
			}
			path, err := writeReport(cfg, result, rf.top)
			if err != nil {
				return err
			}
			ui.PrintSummary(result.Summary, domain.StatusFinished)
			ui.PrintSuccess(fmt.Sprintf("Report written to %s", path))
			return nil
		},
	}

	rf.register(cmd)
	sf.register(cmd, false)
	return cmd
}

func newHistoryCommand(g *globals) *cobra.Command {
	sf := &storageFlags{}
	var (
		project string
		status  string
		limit   int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded sessions",
		Long: `List the sessions recorded in the history database, newest first.

EXAMPLES:
  sfl history
  sfl history --project parser --status finished -n 5
  sfl history rm 3f2a9c1e-...`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := sf.openRequired(ctx, g.cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			opts := storage.ListOptions{Project: project, Limit: limit}
			if status != "" {
				s, err := domain.ParseSessionStatus(strings.ToUpper(status))
				if err != nil {
					return err
				}
				opts.Statuses = []domain.SessionStatus{s}
			}
			records, err := service.NewHistory(store, nil).List(ctx, opts)
			if err != nil {
				return err
			}

			ui.PrintHeader("Session History")
			if len(records) == 0 {
				ui.PrintInfo("No sessions recorded.")
				return nil
			}
			rows := make([][]string, 0, len(records))
			for _, r := range records {
				rows = append(rows, []string{
					r.ID,
					r.CreatedAt.Local().Format("2006-01-02 15:04"),
					r.Project,
					r.Heuristic,
					r.Status.String(),
					fmt.Sprintf("%d/%d", r.FailedTests, r.TotalTests),
					fmt.Sprintf("%d", r.Requirements),
					ui.FormatDuration(r.Elapsed),
				})
			}
			ui.PrintTable([]string{"ID", "STARTED", "PROJECT", "HEURISTIC", "STATUS", "FAILED", "REQS", "ELAPSED"}, rows)
			return nil
		},
	}

	sf.register(cmd, false)
	cmd.Flags().StringVar(&project, "project", "", "only sessions of this project")
	cmd.Flags().StringVar(&status, "status", "", "only sessions with this status (finished, aborted)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of sessions (0 = all)")

	cmd.AddCommand(newHistoryRemoveCommand(g))
	return cmd
}

func newHistoryRemoveCommand(g *globals) *cobra.Command {
	sf := &storageFlags{}
	cmd := &cobra.Command{
		Use:     "rm <session-id>...",
		Aliases: []string{"delete"},
		Short:   "Delete recorded sessions",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := sf.openRequired(ctx, g.cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			history := service.NewHistory(store, nil)
			for _, sessionID := range args {
				if err := history.Delete(ctx, sessionID); err != nil {
					return err
				}
				ui.PrintSuccess(fmt.Sprintf("Deleted session %s", sessionID))
			}
			return nil
		},
	}
	sf.register(cmd, false)
	return cmd
}
