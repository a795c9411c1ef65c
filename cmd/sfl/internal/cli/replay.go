package cli

import (
	"github.com/spf13/cobra"

	"github.com/example/sfl-lite/sfl/runner"
)

func newReplayCommand(g *globals) *cobra.Command {
	a := &analysis{g: g, report: &reportFlags{}, storage: &storageFlags{}, sel: &selectFlags{}}

	cmd := &cobra.Command{
		Use:   "replay <file>",
		Short: "Rank coverage recorded in a replay file",
		Long: `Feed the records of a JSON-lines replay file into a new session, in file
order, and rank them. Each line holds one test:

  {"test":"TestA","failed":true,"observations":[
    {"kind":"line","class":"pkg/a.go","line":12,"status":"FULLY_COVERED"},
    {"kind":"dua","class":"pkg/a.go","method":"Parse()","dua":3,"def":10,"use":14,"var":"n","status":2}]}

Replay files are written by 'sfl run --record' or by any instrumenting runner,
which is how def-use coverage reaches sfl.

EXAMPLES:
  sfl replay coverage.jsonl
  sfl replay coverage.jsonl --heuristic ochiai --output-type H`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := runner.OpenReplayFile(args[0])
			if err != nil {
				return err
			}
			return a.execute(cmd, source)
		},
	}

	a.report.register(cmd)
	a.storage.register(cmd, true)
	a.sel.register(cmd)
	return cmd
}
