package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		raw  RawStatus
		want CoverageStatus
	}{
		{RawEmpty, NotCovered},
		{RawNotCovered, NotCovered},
		{RawFullyCovered, FullyCovered},
		{RawPartlyCovered, PartlyCovered},
		{RawStatus(42), NotCovered},
		{RawStatus(-1), NotCovered},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.raw), tt.raw.String())
	}
}

func TestCountsAsCovered(t *testing.T) {
	assert.True(t, CountsAsCovered(KindLine, FullyCovered))
	assert.True(t, CountsAsCovered(KindLine, PartlyCovered))
	assert.False(t, CountsAsCovered(KindLine, NotCovered))

	assert.True(t, CountsAsCovered(KindDefUse, FullyCovered))
	assert.False(t, CountsAsCovered(KindDefUse, PartlyCovered), "a partly covered dua is not evidence")
	assert.False(t, CountsAsCovered(KindDefUse, NotCovered))

	assert.False(t, CountsAsCovered(KindUnknown, FullyCovered))
}

func TestParseRawStatus(t *testing.T) {
	for _, s := range []RawStatus{RawEmpty, RawNotCovered, RawFullyCovered, RawPartlyCovered} {
		got, err := ParseRawStatus(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
	got, err := ParseRawStatus("3")
	require.NoError(t, err)
	assert.Equal(t, RawPartlyCovered, got)

	_, err = ParseRawStatus("HALF")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestElementKeys(t *testing.T) {
	line := LineElement("pkg/a.go", 12)
	dua := DefUseElement("pkg/a.go", "Parse()", 12)

	assert.Equal(t, "L:pkg/a.go:12", line.Key())
	assert.Equal(t, "D:pkg/a.go#Parse()#12", dua.Key())
	assert.NotEqual(t, line.Key(), dua.Key())
	assert.Equal(t, -1, dua.Target)

	assert.Equal(t, "pkg", line.PackageName())
	assert.Equal(t, "", LineElement("main.go", 1).PackageName())
}

func TestElementValidate(t *testing.T) {
	assert.NoError(t, LineElement("a.go", 0).Validate())
	assert.NoError(t, DefUseElement("a.go", "F()", 0).Validate())

	assert.ErrorIs(t, LineElement("", 1).Validate(), ErrInvalidArgument)
	assert.ErrorIs(t, LineElement("a.go", -1).Validate(), ErrInvalidArgument)
	assert.ErrorIs(t, DefUseElement("a.go", "", 1).Validate(), ErrInvalidArgument)
	assert.ErrorIs(t, Element{ClassName: "a.go"}.Validate(), ErrInvalidArgument)
}

func TestElementLess(t *testing.T) {
	ordered := []Element{
		LineElement("a.go", 2),
		LineElement("a.go", 10),
		DefUseElement("a.go", "F()", 1),
		DefUseElement("a.go", "F()", 2),
		DefUseElement("a.go", "G()", 0),
		LineElement("b.go", 1),
	}
	for i := 0; i+1 < len(ordered); i++ {
		assert.True(t, ordered[i].Less(ordered[i+1]), "%s < %s", ordered[i], ordered[i+1])
		assert.False(t, ordered[i+1].Less(ordered[i]), "%s > %s", ordered[i+1], ordered[i])
	}
	assert.False(t, ordered[0].Less(ordered[0]))
}

func TestRequirementObserve(t *testing.T) {
	r := NewRequirement(LineElement("a.go", 1))
	r.Observe(true)
	r.Observe(false)
	r.Observe(false)
	assert.Equal(t, 1, r.CoveredByFailed)
	assert.Equal(t, 2, r.CoveredByPassed)
	assert.Equal(t, 3, r.Covered())
}

func TestObservationCovered(t *testing.T) {
	assert.True(t, Observation{Element: LineElement("a.go", 1), Status: RawPartlyCovered}.Covered())
	assert.False(t, Observation{Element: DefUseElement("a.go", "F()", 1), Status: RawPartlyCovered}.Covered())
	assert.Equal(t, 0, (*Snapshot)(nil).Len())
}

func TestSessionConfig(t *testing.T) {
	cfg := SessionConfig{OutputType: "h"}.WithDefaults()
	assert.Equal(t, "Tarantula", cfg.Heuristic)
	assert.Equal(t, OutputHierarchical, cfg.OutputType)
	assert.Equal(t, "codeforest", cfg.OutputName)
	assert.NoError(t, cfg.Validate())

	bad := SessionConfig{}.WithDefaults()
	bad.OutputType = "X"
	assert.ErrorIs(t, bad.Validate(), ErrInvalidConfig)

	bad = SessionConfig{OutputName: "out/report"}.WithDefaults()
	assert.ErrorIs(t, bad.Validate(), ErrInvalidConfig)

	bad = SessionConfig{Heuristic: " "}.WithDefaults()
	assert.ErrorIs(t, bad.Validate(), ErrInvalidConfig)
}

func TestOutcomeAndStatus(t *testing.T) {
	assert.True(t, OutcomeOf(true).Failed())
	assert.False(t, OutcomeOf(false).Failed())
	assert.False(t, OutcomeUnknown.Failed())

	for _, s := range []SessionStatus{StatusCollecting, StatusFinished, StatusAborted} {
		got, err := ParseSessionStatus(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
	assert.False(t, StatusCollecting.IsTerminal())
	assert.True(t, StatusAborted.IsTerminal())

	assert.Equal(t, 3, Summary{TotalTests: 5, FailedTests: 2}.PassedTests())
}
