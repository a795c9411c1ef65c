package domain

import "time"

// TestOutcome represents the result of a single test execution.
type TestOutcome int

const (
	OutcomeUnknown TestOutcome = iota
	OutcomePass
	OutcomeFail
)

func (o TestOutcome) String() string {
	switch o {
	case OutcomePass:
		return "PASS"
	case OutcomeFail:
		return "FAIL"
	default:
		return "UNKNOWN"
	}
}

// Failed reports whether the outcome counts as a failing test.
func (o TestOutcome) Failed() bool {
	return o == OutcomeFail
}

// OutcomeOf converts a failed flag to an outcome.
func OutcomeOf(failed bool) TestOutcome {
	if failed {
		return OutcomeFail
	}
	return OutcomePass
}

// TestResult is what a test executor reports for one test.
type TestResult struct {
	// Name is the test identifier.
	Name string

	// Outcome is the pass/fail result.
	Outcome TestOutcome

	// Duration is how long the test took.
	Duration time.Duration

	// Logs contains the test output.
	Logs string
}

// RankEntry is one scored requirement. It holds a copy of the requirement
// taken at rank time and is never mutated afterwards.
type RankEntry struct {
	// Position is the 1-based position in the rank.
	Position int

	// Requirement is the scored requirement.
	Requirement Requirement

	// Score is the suspiciousness value.
	Score float64
}

// Summary is the session information passed through to report writers.
type Summary struct {
	// SessionID identifies the session.
	SessionID string

	// Project is the project name or directory.
	Project string

	// Heuristic is the name of the heuristic used to rank.
	Heuristic string

	// TotalTests is the number of tests executed.
	TotalTests int

	// FailedTests is the number of failing tests.
	FailedTests int

	// Requirements is the number of requirements in the spectrum.
	Requirements int

	// Elapsed is the time between session start and finish.
	Elapsed time.Duration

	// FinishedAt is when the session finished.
	FinishedAt time.Time
}

// PassedTests returns the number of passing tests.
func (s Summary) PassedTests() int {
	return s.TotalTests - s.FailedTests
}

// RankResult bundles a rank with its summary.
type RankResult struct {
	Summary Summary
	Entries []RankEntry
}
