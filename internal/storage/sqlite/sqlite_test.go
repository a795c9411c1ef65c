package sqlite

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/sfl-lite/internal/storage"
	"github.com/example/sfl-lite/sfl/domain"
)

func setupStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "db", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleRecord(id string, finished time.Time) *storage.SessionRecord {
	return storage.NewSessionRecord(domain.Summary{
		SessionID:    id,
		Project:      "demo",
		Heuristic:    "Ochiai",
		TotalTests:   5,
		FailedTests:  2,
		Requirements: 2,
		Elapsed:      2 * time.Second,
		FinishedAt:   finished,
	}, domain.StatusFinished)
}

func sampleSpectrum() []domain.Requirement {
	dua := domain.DefUseElement("pkg/a.go", "F()", 3)
	dua.Def, dua.Use, dua.Var = 4, 9, "err"
	return []domain.Requirement{
		{Element: dua, CoveredByPassed: 1, CoveredByFailed: 2},
		{Element: domain.LineElement("pkg/a.go", 7), CoveredByPassed: 3, CoveredByFailed: 0},
	}
}

func TestSaveAndLoadSession(t *testing.T) {
	ctx := context.Background()
	s := setupStorage(t)
	finished := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, storage.SaveSession(ctx, s, sampleRecord("s-1", finished), sampleSpectrum()))

	rec, reqs, err := storage.LoadSession(ctx, s, "s-1")
	require.NoError(t, err)
	assert.Equal(t, "demo", rec.Project)
	assert.Equal(t, domain.StatusFinished, rec.Status)
	assert.Equal(t, 2*time.Second, rec.Elapsed)
	assert.True(t, finished.Equal(rec.FinishedAt))
	assert.True(t, finished.Add(-2*time.Second).Equal(rec.CreatedAt))

	summary := rec.Summary()
	assert.Equal(t, 3, summary.PassedTests())

	require.Len(t, reqs, 2)
	assert.Equal(t, sampleSpectrum()[0], reqs[0], "D: keys sort before L: keys")
	assert.Equal(t, sampleSpectrum()[1], reqs[1])
}

func TestSaveSessionDuplicateRollsBack(t *testing.T) {
	ctx := context.Background()
	s := setupStorage(t)
	now := time.Now().UTC()

	require.NoError(t, storage.SaveSession(ctx, s, sampleRecord("s-1", now), sampleSpectrum()))
	err := storage.SaveSession(ctx, s, sampleRecord("s-1", now), nil)
	assert.Error(t, err)

	_, reqs, err := storage.LoadSession(ctx, s, "s-1")
	require.NoError(t, err)
	assert.Len(t, reqs, 2)
}

func TestGetMissingSession(t *testing.T) {
	_, _, err := storage.LoadSession(context.Background(), setupStorage(t), "nope")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestListSessions(t *testing.T) {
	ctx := context.Background()
	s := setupStorage(t)
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 4; i++ {
		rec := sampleRecord(fmt.Sprintf("s-%d", i), base.Add(time.Duration(i)*time.Hour))
		if i == 3 {
			rec.Status = domain.StatusAborted
			rec.Project = "other"
		}
		require.NoError(t, storage.SaveSession(ctx, s, rec, nil))
	}

	uow, err := s.Begin(ctx)
	require.NoError(t, err)
	defer uow.Rollback()

	all, err := uow.Sessions().List(ctx, storage.ListOptions{})
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "s-3", all[0].ID, "newest first")

	page, err := uow.Sessions().List(ctx, storage.ListOptions{Limit: 2, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "s-2", page[0].ID)

	demo, err := uow.Sessions().List(ctx, storage.ListOptions{Project: "demo"})
	require.NoError(t, err)
	assert.Len(t, demo, 3)

	aborted, err := uow.Sessions().List(ctx, storage.ListOptions{Statuses: []domain.SessionStatus{domain.StatusAborted}})
	require.NoError(t, err)
	require.Len(t, aborted, 1)
	assert.Equal(t, "s-3", aborted[0].ID)
}

func TestDeleteSessionCascades(t *testing.T) {
	ctx := context.Background()
	s := setupStorage(t)
	require.NoError(t, storage.SaveSession(ctx, s, sampleRecord("s-1", time.Now().UTC()), sampleSpectrum()))

	uow, err := s.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, uow.Sessions().Delete(ctx, "s-1"))
	assert.ErrorIs(t, uow.Sessions().Delete(ctx, "s-1"), domain.ErrSessionNotFound)
	reqs, err := uow.Spectra().Load(ctx, "s-1")
	require.NoError(t, err)
	assert.Empty(t, reqs)
	require.NoError(t, uow.Commit())
}
