package collector

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/sfl-lite/sfl/domain"
)

func line(class string, n int, status domain.RawStatus) domain.Observation {
	return domain.Observation{Element: domain.LineElement(class, n), Status: status}
}

func dua(class, method string, id int, status domain.RawStatus) domain.Observation {
	return domain.Observation{Element: domain.DefUseElement(class, method, id), Status: status}
}

func snapshot(obs ...domain.Observation) *domain.Snapshot {
	return &domain.Snapshot{Observations: obs}
}

func runTest(t *testing.T, s *Session, name string, outcome domain.TestOutcome, snap *domain.Snapshot) {
	t.Helper()
	require.NoError(t, s.OnTestStarted(name))
	require.NoError(t, s.OnTestFinished(name, outcome, snap))
}

func TestSessionRanksCollectedCoverage(t *testing.T) {
	s := NewSession("s1", domain.SessionConfig{Project: "demo"})

	runTest(t, s, "TestPass", domain.OutcomePass, snapshot(
		line("a.go", 1, domain.RawFullyCovered),
		line("a.go", 2, domain.RawFullyCovered),
		line("a.go", 3, domain.RawNotCovered),
	))
	runTest(t, s, "TestFail", domain.OutcomeFail, snapshot(
		line("a.go", 2, domain.RawPartlyCovered),
		line("a.go", 3, domain.RawFullyCovered),
		line("a.go", 4, domain.RawEmpty),
	))

	require.NoError(t, s.Finish())
	result, err := s.Rank("")
	require.NoError(t, err)

	assert.Equal(t, "Tarantula", result.Summary.Heuristic)
	assert.Equal(t, 2, result.Summary.TotalTests)
	assert.Equal(t, 1, result.Summary.FailedTests)
	assert.Equal(t, 3, result.Summary.Requirements)

	require.Len(t, result.Entries, 3)
	assert.Equal(t, "L:a.go:3", result.Entries[0].Requirement.Key())
	assert.InDelta(t, 1.0, result.Entries[0].Score, 1e-12)
	assert.Equal(t, "L:a.go:2", result.Entries[1].Requirement.Key())
	assert.Equal(t, 1, result.Entries[1].Requirement.CoveredByFailed, "partly covered line counts")
	assert.InDelta(t, 0.5, result.Entries[1].Score, 1e-12)
}

func TestSessionSkipsPartlyCoveredDua(t *testing.T) {
	s := NewSession("s1", domain.SessionConfig{})
	runTest(t, s, "TestFail", domain.OutcomeFail, snapshot(
		dua("a.go", "F()", 1, domain.RawPartlyCovered),
		dua("a.go", "F()", 2, domain.RawFullyCovered),
	))
	require.NoError(t, s.Finish())

	reqs := s.Requirements()
	require.Len(t, reqs, 1)
	assert.Equal(t, "D:a.go#F()#2", reqs[0].Key())

	snap := s.Metrics().Snapshot()
	assert.Equal(t, int64(2), snap.Observed["dua"])
	assert.Equal(t, int64(1), snap.Covered["dua"])
}

func TestSessionRankWithOtherHeuristic(t *testing.T) {
	s := NewSession("s1", domain.SessionConfig{})
	runTest(t, s, "TestFail", domain.OutcomeFail, snapshot(line("a.go", 1, domain.RawFullyCovered)))
	require.NoError(t, s.Finish())

	result, err := s.Rank("ochiaiheuristic")
	require.NoError(t, err)
	assert.Equal(t, "Ochiai", result.Summary.Heuristic)

	_, err = s.Rank("unknown")
	assert.ErrorIs(t, err, domain.ErrUnknownHeuristic)
}

func TestSessionLifecycleErrors(t *testing.T) {
	s := NewSession("s1", domain.SessionConfig{})

	_, err := s.Rank("")
	assert.ErrorIs(t, err, domain.ErrSessionNotFinished)

	err = s.OnTestFinished("TestNever", domain.OutcomePass, nil)
	assert.ErrorIs(t, err, domain.ErrNoTestRunning)

	require.NoError(t, s.Finish())
	assert.ErrorIs(t, s.Finish(), domain.ErrSessionClosed)
	assert.ErrorIs(t, s.OnTestStarted("TestLate"), domain.ErrSessionClosed)

	s.Abort()
	assert.Equal(t, domain.StatusFinished, s.Status(), "abort after finish is ignored")
}

func TestAbortedSessionCannotRank(t *testing.T) {
	s := NewSession("s1", domain.SessionConfig{})
	runTest(t, s, "TestFail", domain.OutcomeFail, snapshot(line("a.go", 1, domain.RawFullyCovered)))
	require.NoError(t, s.OnTestStarted("TestHung"))
	s.Abort()

	assert.Equal(t, domain.StatusAborted, s.Status())
	_, err := s.Rank("")
	assert.ErrorIs(t, err, domain.ErrSessionAborted)
	assert.ErrorIs(t, s.Finish(), domain.ErrSessionClosed)
	assert.Equal(t, 2, s.Summary().TotalTests)
}

func TestSessionRejectsInvalidSnapshot(t *testing.T) {
	s := NewSession("s1", domain.SessionConfig{})
	require.NoError(t, s.OnTestStarted("TestA"))
	err := s.OnTestFinished("TestA", domain.OutcomePass, snapshot(
		line("a.go", 1, domain.RawFullyCovered),
		line("", 2, domain.RawFullyCovered),
	))
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	assert.Empty(t, s.Requirements(), "a rejected snapshot is not applied partially")
}

func TestSessionConflictingMetadata(t *testing.T) {
	s := NewSession("s1", domain.SessionConfig{})
	first := dua("a.go", "F()", 1, domain.RawFullyCovered)
	first.Element.Var = "x"
	second := first
	second.Element.Var = "y"

	runTest(t, s, "TestA", domain.OutcomePass, snapshot(first))
	require.NoError(t, s.OnTestStarted("TestB"))
	err := s.OnTestFinished("TestB", domain.OutcomePass, snapshot(second))
	assert.ErrorIs(t, err, domain.ErrRequirementConflict)
}

func TestSessionNilSnapshot(t *testing.T) {
	s := NewSession("s1", domain.SessionConfig{})
	runTest(t, s, "TestBuildFailure", domain.OutcomeFail, nil)
	require.NoError(t, s.Finish())

	result, err := s.Rank("")
	require.NoError(t, err)
	assert.Empty(t, result.Entries)
	assert.Equal(t, 1, result.Summary.FailedTests)
}

func TestSessionElapsed(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s := NewSession("s1", domain.SessionConfig{}, WithClock(func() time.Time { return now }))
	now = now.Add(3 * time.Second)
	require.NoError(t, s.Finish())

	summary := s.Summary()
	assert.Equal(t, 3*time.Second, summary.Elapsed)
	assert.Equal(t, now, summary.FinishedAt)
}

func TestSessionCountsRepeatedObservationOnce(t *testing.T) {
	s := NewSession("s1", domain.SessionConfig{})
	runTest(t, s, "TestFail", domain.OutcomeFail, snapshot(
		line("a.go", 1, domain.RawFullyCovered),
		line("a.go", 1, domain.RawFullyCovered),
		line("a.go", 2, domain.RawNotCovered),
		line("a.go", 2, domain.RawPartlyCovered),
	))
	require.NoError(t, s.Finish())

	reqs := s.Requirements()
	require.Len(t, reqs, 2)
	for _, r := range reqs {
		assert.Equal(t, 1, r.CoveredByFailed, r.Key())
		assert.Equal(t, 0, r.CoveredByPassed, r.Key())
	}
	assert.Equal(t, 1, s.Summary().FailedTests)

	snap := s.Metrics().Snapshot()
	assert.Equal(t, int64(2), snap.Observed["line"])
	assert.Equal(t, int64(2), snap.Covered["line"])
}

func TestSessionRejectsSnapshotWithConflictingRepeat(t *testing.T) {
	s := NewSession("s1", domain.SessionConfig{})
	first := dua("a.go", "F()", 1, domain.RawFullyCovered)
	first.Element.Var = "x"
	second := first
	second.Element.Var = "y"

	require.NoError(t, s.OnTestStarted("TestA"))
	err := s.OnTestFinished("TestA", domain.OutcomeFail, snapshot(first, second))
	assert.ErrorIs(t, err, domain.ErrRequirementConflict)
	assert.Empty(t, s.Requirements())
	assert.Equal(t, 0, s.Summary().FailedTests)
}

func TestSessionConflictLeavesSessionUntouched(t *testing.T) {
	s := NewSession("s1", domain.SessionConfig{})
	first := dua("b.go", "F()", 1, domain.RawFullyCovered)
	first.Element.Var = "x"
	second := first
	second.Element.Var = "y"

	runTest(t, s, "TestA", domain.OutcomePass, snapshot(first))

	require.NoError(t, s.OnTestStarted("TestB"))
	err := s.OnTestFinished("TestB", domain.OutcomeFail, snapshot(
		line("b.go", 5, domain.RawFullyCovered),
		second,
	))
	require.ErrorIs(t, err, domain.ErrRequirementConflict)

	reqs := s.Requirements()
	require.Len(t, reqs, 1)
	assert.Equal(t, "D:b.go#F()#1", reqs[0].Key())
	assert.Equal(t, 1, reqs[0].CoveredByPassed)
	assert.Equal(t, 0, reqs[0].CoveredByFailed)
	assert.Equal(t, 0, s.Summary().FailedTests)

	// The test is still running and can be finished with a corrected snapshot.
	require.NoError(t, s.OnTestFinished("TestB", domain.OutcomeFail, snapshot(
		line("b.go", 5, domain.RawFullyCovered),
		first,
	)))
	require.NoError(t, s.Finish())

	summary := s.Summary()
	assert.Equal(t, 2, summary.TotalTests)
	assert.Equal(t, 1, summary.FailedTests)
	reqs = s.Requirements()
	require.Len(t, reqs, 2)
	assert.Equal(t, 1, reqs[0].CoveredByFailed)
	assert.Equal(t, 1, reqs[0].CoveredByPassed)
	assert.Equal(t, "L:b.go:5", reqs[1].Key())
	assert.Equal(t, 1, reqs[1].CoveredByFailed)
}

func TestSessionCountsNeverExceedTotals(t *testing.T) {
	s := NewSession("s1", domain.SessionConfig{})
	runs := []struct {
		name    string
		outcome domain.TestOutcome
		snap    *domain.Snapshot
	}{
		{"TestA", domain.OutcomeFail, snapshot(line("a.go", 1, domain.RawFullyCovered), line("a.go", 1, domain.RawFullyCovered))},
		{"TestB", domain.OutcomePass, snapshot(line("a.go", 1, domain.RawPartlyCovered), dua("a.go", "F()", 1, domain.RawFullyCovered))},
		{"TestC", domain.OutcomeFail, snapshot(dua("a.go", "F()", 1, domain.RawFullyCovered), dua("a.go", "F()", 1, domain.RawPartlyCovered))},
		{"TestD", domain.OutcomeFail, nil},
		{"TestE", domain.OutcomePass, snapshot(line("a.go", 2, domain.RawFullyCovered), line("a.go", 1, domain.RawNotCovered))},
	}
	for _, run := range runs {
		runTest(t, s, run.name, run.outcome, run.snap)

		summary := s.Summary()
		for _, r := range s.Requirements() {
			assert.LessOrEqual(t, r.CoveredByFailed, summary.FailedTests, "%s after %s", r.Key(), run.name)
			assert.LessOrEqual(t, r.CoveredByPassed, summary.PassedTests(), "%s after %s", r.Key(), run.name)
		}
	}
}

func TestSessionCollectDurationUsesClock(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time {
		cur := now
		now = now.Add(250 * time.Millisecond)
		return cur
	}
	s := NewSession("s1", domain.SessionConfig{}, WithClock(clock))
	runTest(t, s, "TestA", domain.OutcomePass, snapshot(line("a.go", 1, domain.RawFullyCovered)))

	collect := s.Metrics().Snapshot().CollectDuration
	assert.Equal(t, 1, collect.Count)
	assert.Equal(t, 250*time.Millisecond, collect.Total)
}
