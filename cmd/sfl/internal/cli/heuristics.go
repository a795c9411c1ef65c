package cli

import (
	"github.com/spf13/cobra"

	"github.com/example/sfl-lite/cmd/sfl/internal/ui"
	"github.com/example/sfl-lite/sfl/heuristic"
)

func newHeuristicsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "heuristics",
		Short: "List the available ranking heuristics",
		Long: `List the heuristics accepted by --heuristic. Names are matched without
regard to case and an optional "Heuristic" suffix, so "ochiai",
"Ochiai" and "OchiaiHeuristic" are the same.

In the formulas F and P are the failing and passing tests covering a
requirement, TF and TP all failing and passing tests, NF = TF-F and NP = TP-P.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ui.PrintHeader("Heuristics")
			all := heuristic.NewRegistry().All()
			rows := make([][]string, 0, len(all))
			for _, h := range all {
				rows = append(rows, []string{h.Name, h.Description})
			}
			ui.PrintTable([]string{"NAME", "FORMULA"}, rows)
			return nil
		},
	}
}
