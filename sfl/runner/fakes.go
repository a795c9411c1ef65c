package runner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/example/sfl-lite/sfl/domain"
)

// FakeTest is one scripted test of a FakeExecutor.
type FakeTest struct {
	Name     string
	Failed   bool
	Snapshot *domain.Snapshot
}

// FakeExecutor is a test double for Source.
// It replays scripted outcomes and snapshots without running anything.
type FakeExecutor struct {
	mu sync.RWMutex

	// Tests are returned by List in order.
	Tests []FakeTest

	// RunErrors causes Run to fail for the named tests.
	RunErrors map[string]error

	// ReadErrors causes Read to fail for the named tests.
	ReadErrors map[string]error

	// Delay adds artificial delay to Run calls.
	Delay time.Duration

	// Executed tracks the names of all tests run.
	Executed []string
}

// NewFakeExecutor creates a new FakeExecutor.
func NewFakeExecutor() *FakeExecutor {
	return &FakeExecutor{
		RunErrors:  make(map[string]error),
		ReadErrors: make(map[string]error),
	}
}

// WithTest appends a scripted test covering the given observations.
func (f *FakeExecutor) WithTest(name string, failed bool, observations ...domain.Observation) *FakeExecutor {
	f.Tests = append(f.Tests, FakeTest{
		Name:     name,
		Failed:   failed,
		Snapshot: &domain.Snapshot{Observations: observations},
	})
	return f
}

// WithRunError makes Run fail for the named test.
func (f *FakeExecutor) WithRunError(name string, err error) *FakeExecutor {
	f.RunErrors[name] = err
	return f
}

// WithReadError makes Read fail for the named test.
func (f *FakeExecutor) WithReadError(name string, err error) *FakeExecutor {
	f.ReadErrors[name] = err
	return f
}

// WithDelay sets an artificial delay for test runs.
func (f *FakeExecutor) WithDelay(delay time.Duration) *FakeExecutor {
	f.Delay = delay
	return f
}

// List implements TestExecutor.
func (f *FakeExecutor) List(ctx context.Context) ([]TestCase, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	cases := make([]TestCase, len(f.Tests))
	for i, t := range f.Tests {
		cases[i] = TestCase{Name: t.Name, Index: i}
	}
	return cases, nil
}

// Run implements TestExecutor.
func (f *FakeExecutor) Run(ctx context.Context, tc TestCase) (*domain.TestResult, error) {
	if f.Delay > 0 {
		select {
		case <-time.After(f.Delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if err, ok := f.RunErrors[tc.Name]; ok {
		return nil, err
	}
	t, err := f.lookup(tc)
	if err != nil {
		return nil, err
	}
	f.Executed = append(f.Executed, tc.Name)

	result := &domain.TestResult{
		Name:     tc.ID(),
		Outcome:  domain.OutcomeOf(t.Failed),
		Duration: time.Millisecond,
		Logs:     "Test passed",
	}
	if t.Failed {
		result.Logs = "Test failed"
	}
	return result, nil
}

// Read implements CoverageReader.
func (f *FakeExecutor) Read(ctx context.Context, tc TestCase) (*domain.Snapshot, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if err, ok := f.ReadErrors[tc.Name]; ok {
		return nil, err
	}
	t, err := f.lookup(tc)
	if err != nil {
		return nil, err
	}
	return t.Snapshot, nil
}

func (f *FakeExecutor) lookup(tc TestCase) (FakeTest, error) {
	if tc.Index >= 0 && tc.Index < len(f.Tests) && f.Tests[tc.Index].Name == tc.Name {
		return f.Tests[tc.Index], nil
	}
	for _, t := range f.Tests {
		if t.Name == tc.Name {
			return t, nil
		}
	}
	return FakeTest{}, fmt.Errorf("%w: test %s", domain.ErrNotFound, tc.Name)
}

// GetExecuted returns the names of the tests run so far.
func (f *FakeExecutor) GetExecuted() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	executed := make([]string, len(f.Executed))
	copy(executed, f.Executed)
	return executed
}

// FakeIDGenerator generates sequential IDs for testing.
type FakeIDGenerator struct {
	mu      sync.Mutex
	counter int
	prefix  string
}

// NewFakeIDGenerator creates a new FakeIDGenerator.
func NewFakeIDGenerator(prefix string) *FakeIDGenerator {
	return &FakeIDGenerator{prefix: prefix}
}

// Generate returns a new unique ID.
func (g *FakeIDGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.counter++
	return fmt.Sprintf("%s-%d", g.prefix, g.counter)
}
