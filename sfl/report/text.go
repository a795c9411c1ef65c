package report

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"
)

// WriteText writes the report header and a table of all entries.
func WriteText(w io.Writer, r *Report) error {
	fmt.Fprintf(w, "Project:    %s\n", r.Project)
	fmt.Fprintf(w, "Heuristic:  %s\n", r.Heuristic)
	fmt.Fprintf(w, "Tests:      %d (%d failed)\n", r.TotalTests, r.FailedTests)
	fmt.Fprintf(w, "Time spent: %s\n\n", time.Duration(r.TimeSpentMs)*time.Millisecond)

	if len(r.Entries) == 0 {
		_, err := fmt.Fprintln(w, "No requirements covered.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tSCORE\tCEF\tCEP\tKIND\tREQUIREMENT")
	for _, e := range r.Entries {
		fmt.Fprintf(tw, "%d\t%.4f\t%d\t%d\t%s\t%s\n",
			e.Position, e.Score, e.CoveredByFailed, e.CoveredByPassed, e.Kind, describe(e))
	}
	return tw.Flush()
}

func describe(e Entry) string {
	if e.Method == "" {
		return fmt.Sprintf("%s:%d", e.Class, e.Line)
	}
	desc := fmt.Sprintf("%s %s dua#%d", e.Class, e.Method, e.DuaID)
	if e.Var != "" {
		desc += fmt.Sprintf(" (%s def %d use %d)", e.Var, e.Def, e.Use)
	}
	return desc
}
