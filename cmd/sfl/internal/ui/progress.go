package ui

import (
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"

	"github.com/example/sfl-lite/sfl/runner"
)

// Progress renders per-test progress of a run. On a non-interactive
// output every finished test is printed as one line instead.
type Progress struct {
	bar *progressbar.ProgressBar
}

// NewProgress creates a progress display. A disabled display prints only
// failing tests.
func NewProgress(enabled bool) *Progress {
	if !enabled || !Interactive() {
		return &Progress{}
	}
	return &Progress{bar: progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowBytes(false),
		progressbar.OptionSetWidth(24),
		progressbar.OptionSetDescription("running tests"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionShowCount(),
		progressbar.OptionSetPredictTime(true),
	)}
}

// Update is a runner.WithProgress callback.
func (p *Progress) Update(ev runner.Progress) {
	failed := ev.Result != nil && ev.Result.Outcome.Failed()
	if p.bar == nil {
		if failed {
			PrintWarning(fmt.Sprintf("[%d/%d] FAIL %s", ev.Index, ev.Total, ev.Test.ID()))
		}
		return
	}
	if p.bar.GetMax() != ev.Total {
		p.bar.ChangeMax(ev.Total)
	}
	p.bar.Describe(ev.Test.Name)
	_ = p.bar.Add(1)
	if failed {
		_ = p.bar.Clear()
		PrintWarning(fmt.Sprintf("FAIL %s", ev.Test.ID()))
	}
}

// Close finishes the bar.
func (p *Progress) Close() {
	if p.bar != nil {
		_ = p.bar.Finish()
		fmt.Fprintln(os.Stderr)
	}
}
