package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/example/sfl-lite/sfl/domain"
	"github.com/example/sfl-lite/sfl/report"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[90m"
	colorBold   = "\033[1m"
)

// Output is where every Print function writes. Tests may replace it.
var Output io.Writer = os.Stdout

// Interactive reports whether stdout is a terminal. Colors and progress
// bars are only used when it is.
func Interactive() bool {
	f, ok := Output.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}

func color(code, s string) string {
	if !Interactive() {
		return s
	}
	return code + s + colorReset
}

// PrintHeader prints a section header
func PrintHeader(title string) {
	line := strings.Repeat("=", len(title)+4)
	fmt.Fprintf(Output, "\n%s\n", color(colorBold+colorBlue, line))
	fmt.Fprintf(Output, "%s\n", color(colorBold+colorBlue, "  "+title+"  "))
	fmt.Fprintf(Output, "%s\n\n", color(colorBold+colorBlue, line))
}

// PrintStep prints a step in progress
func PrintStep(message string) {
	fmt.Fprintf(Output, "%s %s\n", color(colorCyan, "▶"), message)
}

// PrintSuccess prints a success message
func PrintSuccess(message string) {
	fmt.Fprintf(Output, "%s %s\n", color(colorGreen, "✓"), message)
}

// PrintError prints an error message to stderr
func PrintError(message string) {
	fmt.Fprintf(os.Stderr, "✗ %s\n", message)
}

// PrintWarning prints a warning message
func PrintWarning(message string) {
	fmt.Fprintf(Output, "%s %s\n", color(colorYellow, "⚠"), message)
}

// PrintInfo prints an informational message
func PrintInfo(message string) {
	fmt.Fprintf(Output, "  %s\n", message)
}

// PrintSummary prints the counters of a session.
func PrintSummary(s domain.Summary, status domain.SessionStatus) {
	statusText := status.String()
	switch status {
	case domain.StatusFinished:
		statusText = color(colorGreen, statusText)
	case domain.StatusAborted:
		statusText = color(colorRed, statusText)
	}
	fmt.Fprintf(Output, "\n%s %s\n", color(colorBold, "Status:"), statusText)
	PrintInfo(fmt.Sprintf("Session:      %s", s.SessionID))
	PrintInfo(fmt.Sprintf("Tests:        %d (%d failed)", s.TotalTests, s.FailedTests))
	PrintInfo(fmt.Sprintf("Requirements: %d", s.Requirements))
	if s.Elapsed > 0 {
		PrintInfo(fmt.Sprintf("Elapsed:      %s", formatDuration(s.Elapsed)))
	}
}

// PrintRank prints the top n entries of a report. n <= 0 prints all.
func PrintRank(r *report.Report, n int) {
	entries := r.Entries
	if n > 0 && n < len(entries) {
		entries = entries[:n]
	}
	if len(entries) == 0 {
		PrintInfo("No requirements covered.")
		return
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			fmt.Sprintf("%d", e.Position),
			fmt.Sprintf("%.4f", e.Score),
			fmt.Sprintf("%d", e.CoveredByFailed),
			fmt.Sprintf("%d", e.CoveredByPassed),
			e.Key,
		})
	}
	PrintTable([]string{"#", "SCORE", "CEF", "CEP", "REQUIREMENT"}, rows)
	if len(entries) < len(r.Entries) {
		PrintInfo(color(colorGray, fmt.Sprintf("... and %d more", len(r.Entries)-len(entries))))
	}
}

// formatDuration formats a duration in a human-readable way
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	if d < time.Hour {
		minutes := int(d.Minutes())
		seconds := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	return fmt.Sprintf("%dh %dm", hours, minutes)
}

// FormatDuration formats a duration for display (exported version)
func FormatDuration(d time.Duration) string {
	return formatDuration(d)
}

// PrintTable prints a simple table
func PrintTable(headers []string, rows [][]string) {
	if len(rows) == 0 {
		return
	}

	// Calculate column widths
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	for i, h := range headers {
		fmt.Fprint(Output, color(colorBold, fmt.Sprintf("%-*s", widths[i], h)), "  ")
	}
	fmt.Fprintln(Output)

	for _, w := range widths {
		fmt.Fprint(Output, strings.Repeat("-", w)+"  ")
	}
	fmt.Fprintln(Output)

	for _, row := range rows {
		for i, cell := range row {
			fmt.Fprintf(Output, "%-*s  ", widths[i], cell)
		}
		fmt.Fprintln(Output)
	}
}
