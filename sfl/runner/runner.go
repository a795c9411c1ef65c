// Package runner executes tests one at a time and feeds their outcomes and
// coverage into a collector session.
package runner

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/example/sfl-lite/sfl/collector"
	"github.com/example/sfl-lite/sfl/domain"
)

// Progress describes one finished test for progress reporting.
type Progress struct {
	// Index is the 1-based number of the test in this run.
	Index int

	// Total is the number of tests selected for the run.
	Total int

	// Test is the finished test.
	Test TestCase

	// Result is the outcome reported by the executor.
	Result *domain.TestResult
}

// Runner drives a collection session over a Source.
type Runner struct {
	source   Source
	logger   *slog.Logger
	filter   *regexp.Regexp
	include  map[string]bool
	progress func(Progress)
	recorder *Recorder
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the runner logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = l
	}
}

// WithFilter only runs tests whose name matches re.
func WithFilter(re *regexp.Regexp) Option {
	return func(r *Runner) {
		r.filter = re
	}
}

// WithTests only runs the named tests. Names match either the bare test
// name or the package-qualified id.
func WithTests(names []string) Option {
	return func(r *Runner) {
		if len(names) == 0 {
			return
		}
		r.include = make(map[string]bool, len(names))
		for _, n := range names {
			r.include[n] = true
		}
	}
}

// WithProgress sets a callback invoked after every test.
func WithProgress(fn func(Progress)) Option {
	return func(r *Runner) {
		r.progress = fn
	}
}

// WithRecorder also writes every executed test to a replay stream.
func WithRecorder(rec *Recorder) Option {
	return func(r *Runner) {
		r.recorder = rec
	}
}

// New creates a Runner.
func New(source Source, opts ...Option) *Runner {
	r := &Runner{
		source: source,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Select lists the tests of the source and applies the configured filters.
func (r *Runner) Select(ctx context.Context) ([]TestCase, error) {
	all, err := r.source.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tests: %w", err)
	}
	selected := make([]TestCase, 0, len(all))
	for _, tc := range all {
		if r.filter != nil && !r.filter.MatchString(tc.Name) {
			continue
		}
		if r.include != nil && !r.include[tc.Name] && !r.include[tc.ID()] {
			continue
		}
		selected = append(selected, tc)
	}
	return selected, nil
}

// Run executes the selected tests sequentially and finishes the session.
// Any execution error, unreadable coverage, or cancellation aborts the
// session so that it can no longer be ranked.
func (r *Runner) Run(ctx context.Context, session *collector.Session) (domain.Summary, error) {
	tests, err := r.Select(ctx)
	if err != nil {
		session.Abort()
		return session.Summary(), err
	}

	r.logger.Info("running tests",
		"session", session.ID(),
		"tests", len(tests))

	for i, tc := range tests {
		if err := ctx.Err(); err != nil {
			return r.abort(session, fmt.Errorf("run interrupted before %s: %w", tc.ID(), err))
		}

		result, err := r.runOne(ctx, session, tc)
		if err != nil {
			return r.abort(session, err)
		}

		if r.progress != nil {
			r.progress(Progress{Index: i + 1, Total: len(tests), Test: tc, Result: result})
		}
	}

	if err := session.Finish(); err != nil {
		return session.Summary(), err
	}
	summary := session.Summary()
	r.logger.Info("collection finished",
		"session", session.ID(),
		"tests", summary.TotalTests,
		"failed", summary.FailedTests,
		"requirements", summary.Requirements,
		"elapsed", summary.Elapsed)

	snapshot := session.Metrics().Snapshot()
	r.logger.Debug("collection metrics",
		"coverage_read_mean", snapshot.CoverageReadDuration.Mean,
		"collect_mean", snapshot.CollectDuration.Mean,
		"observed", snapshot.Observed,
		"covered", snapshot.Covered)
	return summary, nil
}

func (r *Runner) runOne(ctx context.Context, session *collector.Session, tc TestCase) (*domain.TestResult, error) {
	name := tc.ID()
	if err := session.OnTestStarted(name); err != nil {
		return nil, err
	}

	start := time.Now()
	result, err := r.source.Run(ctx, tc)
	if err != nil {
		return nil, fmt.Errorf("failed to execute %s: %w", name, err)
	}
	session.Metrics().TestDuration().Observe(time.Since(start))

	readStart := time.Now()
	snapshot, err := r.source.Read(ctx, tc)
	if err != nil {
		return nil, fmt.Errorf("failed to read coverage of %s: %w", name, err)
	}
	session.Metrics().CoverageReadDuration().Observe(time.Since(readStart))

	if err := session.OnTestFinished(name, result.Outcome, snapshot); err != nil {
		return nil, err
	}

	if r.recorder != nil {
		if err := r.recorder.Record(result, snapshot); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (r *Runner) abort(session *collector.Session, err error) (domain.Summary, error) {
	session.Abort()
	r.logger.Error("collection aborted", "session", session.ID(), "error", err)
	return session.Summary(), err
}

// ReadTestsFile reads a list of test names, one per line. Blank lines and
// lines starting with # are ignored.
func ReadTestsFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open tests file: %w", err)
	}
	defer f.Close()

	var names []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		names = append(names, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read tests file: %w", err)
	}
	return names, nil
}
