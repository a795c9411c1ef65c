package spectrum

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/sfl-lite/sfl/domain"
)

func TestStoreLazyCreation(t *testing.T) {
	s := NewStore()
	assert.Equal(t, 0, s.Len())
	_, ok := s.Get("L:a.go:1")
	assert.False(t, ok)

	require.NoError(t, s.Update(domain.LineElement("a.go", 1), true))
	require.NoError(t, s.Update(domain.LineElement("a.go", 1), false))
	require.NoError(t, s.Update(domain.LineElement("a.go", 1), false))

	req, ok := s.Get("L:a.go:1")
	require.True(t, ok)
	assert.Equal(t, 1, req.CoveredByFailed)
	assert.Equal(t, 2, req.CoveredByPassed)
	assert.Equal(t, 1, s.Len())
}

func TestStoreKindsNeverCollide(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Update(domain.LineElement("a.go", 3), true))
	require.NoError(t, s.Update(domain.DefUseElement("a.go", "F()", 3), false))
	assert.Equal(t, 2, s.Len())
}

func TestStoreConflict(t *testing.T) {
	s := NewStore()
	dua := domain.DefUseElement("a.go", "F()", 1)
	dua.Var = "x"
	require.NoError(t, s.Update(dua, true))

	other := dua
	other.Var = "y"
	err := s.Update(other, true)
	assert.ErrorIs(t, err, domain.ErrRequirementConflict)

	assert.Contains(t, err.Error(), `var="x"`)
	assert.Contains(t, err.Error(), `var="y"`)

	req, _ := s.Get(dua.Key())
	assert.Equal(t, 1, req.CoveredByFailed, "a rejected update leaves counts unchanged")
}

func TestStoreUpdateAllIsAtomic(t *testing.T) {
	s := NewStore()
	dua := domain.DefUseElement("a.go", "F()", 1)
	dua.Var = "x"
	require.NoError(t, s.Update(dua, false))

	other := dua
	other.Var = "y"
	err := s.UpdateAll([]domain.Element{domain.LineElement("a.go", 5), other}, true)
	require.ErrorIs(t, err, domain.ErrRequirementConflict)
	assert.Equal(t, 1, s.Len())
	_, ok := s.Get("L:a.go:5")
	assert.False(t, ok)

	require.NoError(t, s.UpdateAll([]domain.Element{domain.LineElement("a.go", 5), dua}, true))
	assert.Equal(t, 2, s.Len())
	req, _ := s.Get(dua.Key())
	assert.Equal(t, 1, req.CoveredByFailed)
	assert.Equal(t, 1, req.CoveredByPassed)
}

func TestStoreOrderIndependent(t *testing.T) {
	updates := []struct {
		e      domain.Element
		failed bool
	}{
		{domain.LineElement("a.go", 1), true},
		{domain.LineElement("b.go", 2), false},
		{domain.LineElement("a.go", 1), false},
		{domain.DefUseElement("a.go", "F()", 0), true},
	}

	forward := NewStore()
	for _, u := range updates {
		require.NoError(t, forward.Update(u.e, u.failed))
	}
	backward := NewStore()
	for i := len(updates) - 1; i >= 0; i-- {
		require.NoError(t, backward.Update(updates[i].e, updates[i].failed))
	}
	assert.Equal(t, forward.All(), backward.All())
}

func TestStoreConcurrentUpdates(t *testing.T) {
	s := NewStore()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(failed bool) {
			defer wg.Done()
			_ = s.Update(domain.LineElement("a.go", 1), failed)
		}(i%2 == 0)
	}
	wg.Wait()

	req, ok := s.Get("L:a.go:1")
	require.True(t, ok)
	assert.Equal(t, 25, req.CoveredByFailed)
	assert.Equal(t, 25, req.CoveredByPassed)
}

func TestStoreAllIsSnapshot(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Update(domain.LineElement("b.go", 1), true))
	require.NoError(t, s.Update(domain.LineElement("a.go", 1), true))

	all := s.All()
	require.Len(t, all, 2)
	assert.Equal(t, "L:a.go:1", all[0].Key())

	all[0].CoveredByFailed = 100
	req, _ := s.Get("L:a.go:1")
	assert.Equal(t, 1, req.CoveredByFailed)
}

func TestStoreLoad(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Update(domain.LineElement("a.go", 1), true))

	stored := []domain.Requirement{
		{Element: domain.LineElement("a.go", 1), CoveredByPassed: 2},
		{Element: domain.LineElement("c.go", 4), CoveredByFailed: 1},
	}
	require.NoError(t, s.Load(stored))

	req, _ := s.Get("L:a.go:1")
	assert.Equal(t, 1, req.CoveredByFailed)
	assert.Equal(t, 2, req.CoveredByPassed)
	assert.Equal(t, 2, s.Len())

	conflict := domain.DefUseElement("a.go", "F()", 9)
	require.NoError(t, s.Update(conflict, true))
	conflict.Def = 3
	assert.ErrorIs(t, s.Load([]domain.Requirement{{Element: conflict}}), domain.ErrRequirementConflict)
}

func TestCounters(t *testing.T) {
	var c Counters
	assert.Equal(t, 1, c.TestStarted())
	assert.Equal(t, 2, c.TestStarted())
	assert.Equal(t, 1, c.TestFailed())
	assert.Equal(t, 2, c.Total())
	assert.Equal(t, 1, c.Failed())
	assert.Equal(t, 1, c.Passed())
}
