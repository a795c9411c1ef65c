package rank

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/sfl-lite/sfl/domain"
	"github.com/example/sfl-lite/sfl/heuristic"
)

func requirement(e domain.Element, failed, passed int) domain.Requirement {
	return domain.Requirement{Element: e, CoveredByFailed: failed, CoveredByPassed: passed}
}

func keys(entries []domain.RankEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Requirement.Key()
	}
	return out
}

func tarantula(t *testing.T) heuristic.Heuristic {
	h, err := heuristic.Lookup("Tarantula")
	require.NoError(t, err)
	return h
}

func TestGenerateOrdersByScore(t *testing.T) {
	reqs := []domain.Requirement{
		requirement(domain.LineElement("a.go", 1), 0, 1),
		requirement(domain.LineElement("a.go", 2), 1, 1),
		requirement(domain.LineElement("a.go", 3), 1, 0),
	}
	entries := Generate(reqs, 1, 1, tarantula(t))

	require.Len(t, entries, 3)
	assert.Equal(t, []string{"L:a.go:3", "L:a.go:2", "L:a.go:1"}, keys(entries))
	assert.InDelta(t, 1.0, entries[0].Score, 1e-12)
	assert.InDelta(t, 0.5, entries[1].Score, 1e-12)
	assert.InDelta(t, 0.0, entries[2].Score, 1e-12)
	for i, e := range entries {
		assert.Equal(t, i+1, e.Position)
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	reqs := []domain.Requirement{
		requirement(domain.LineElement("b.go", 1), 1, 1),
		requirement(domain.DefUseElement("a.go", "F()", 2), 1, 1),
		requirement(domain.LineElement("a.go", 9), 1, 1),
		requirement(domain.DefUseElement("a.go", "F()", 1), 1, 1),
		requirement(domain.LineElement("a.go", 10), 1, 1),
	}
	reversed := make([]domain.Requirement, len(reqs))
	for i := range reqs {
		reversed[len(reqs)-1-i] = reqs[i]
	}

	a := Generate(reqs, 2, 2, tarantula(t))
	b := Generate(reversed, 2, 2, tarantula(t))
	assert.Equal(t, a, b)
	assert.Equal(t, []string{
		"L:a.go:9",
		"L:a.go:10",
		"D:a.go#F()#1",
		"D:a.go#F()#2",
		"L:b.go:1",
	}, keys(a))
}

func TestGenerateWithoutFailures(t *testing.T) {
	reqs := []domain.Requirement{
		requirement(domain.LineElement("b.go", 1), 0, 3),
		requirement(domain.LineElement("a.go", 5), 0, 1),
	}
	h, err := heuristic.Lookup("Op")
	require.NoError(t, err)

	entries := Generate(reqs, 3, 0, h)
	require.Len(t, entries, 2)
	for _, e := range entries {
		assert.Equal(t, 0.0, e.Score)
	}
	assert.Equal(t, []string{"L:a.go:5", "L:b.go:1"}, keys(entries))
}

func TestGenerateEmpty(t *testing.T) {
	assert.Empty(t, Generate(nil, 0, 0, tarantula(t)))
}

func TestGenerateDoesNotMutateInput(t *testing.T) {
	reqs := []domain.Requirement{
		requirement(domain.LineElement("a.go", 1), 0, 1),
		requirement(domain.LineElement("a.go", 2), 1, 0),
	}
	Generate(reqs, 1, 1, tarantula(t))
	assert.Equal(t, "L:a.go:1", reqs[0].Key())
}

func TestTopAndPositionOf(t *testing.T) {
	reqs := []domain.Requirement{
		requirement(domain.LineElement("a.go", 1), 1, 0),
		requirement(domain.LineElement("a.go", 2), 1, 0),
		requirement(domain.LineElement("a.go", 3), 0, 1),
	}
	entries := Generate(reqs, 1, 1, tarantula(t))

	assert.Len(t, Top(entries, 2), 2)
	assert.Len(t, Top(entries, 0), 3)
	assert.Len(t, Top(entries, 10), 3)

	assert.Equal(t, 1, PositionOf(entries, "L:a.go:1"))
	assert.Equal(t, 1, PositionOf(entries, "L:a.go:2"), "ties share the best position")
	assert.Equal(t, 3, PositionOf(entries, "L:a.go:3"))
	assert.Equal(t, 0, PositionOf(entries, "L:z.go:1"))
}

func TestGenerateRanksFailingOnlyCoverageFirst(t *testing.T) {
	// Two failing and three passing tests. Class names run against the
	// expected order so only the score can produce it.
	reqs := []domain.Requirement{
		requirement(domain.LineElement("a.go", 1), 0, 3),
		requirement(domain.LineElement("b.go", 1), 1, 0),
		requirement(domain.LineElement("c.go", 1), 2, 0),
	}
	for _, name := range []string{"Ochiai", "Jaccard", "Kulczynski2", "Op"} {
		h, err := heuristic.Lookup(name)
		require.NoError(t, err)

		entries := Generate(reqs, 3, 2, h)
		assert.Equal(t, []string{"L:c.go:1", "L:b.go:1", "L:a.go:1"}, keys(entries), name)
		assert.Greater(t, entries[0].Score, entries[1].Score, name)
		assert.Greater(t, entries[1].Score, entries[2].Score, name)
	}
}
