package service

import (
	"context"
	"fmt"

	"github.com/example/sfl-lite/internal/storage"
	"github.com/example/sfl-lite/sfl/domain"
	"github.com/example/sfl-lite/sfl/heuristic"
	"github.com/example/sfl-lite/sfl/rank"
)

// HistoryService reads and re-ranks stored sessions.
type HistoryService struct {
	storage  storage.Storage
	registry *heuristic.Registry
}

// NewHistory creates a new HistoryService.
func NewHistory(store storage.Storage, registry *heuristic.Registry) *HistoryService {
	if registry == nil {
		registry = heuristic.NewRegistry()
	}
	return &HistoryService{storage: store, registry: registry}
}

// List returns stored sessions, newest first.
func (s *HistoryService) List(ctx context.Context, opts storage.ListOptions) ([]*storage.SessionRecord, error) {
	uow, err := s.storage.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	return uow.Sessions().List(ctx, opts)
}

// Get returns a stored session record.
func (s *HistoryService) Get(ctx context.Context, sessionID string) (*storage.SessionRecord, error) {
	uow, err := s.storage.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	return uow.Sessions().Get(ctx, sessionID)
}

// Heuristics returns the heuristics Rank accepts.
func (s *HistoryService) Heuristics() []heuristic.Heuristic {
	return s.registry.All()
}

// Rank ranks the stored spectrum of a session. An empty heuristic name
// uses the one the session was ranked with originally. An unknown name is
// reported before the session is loaded.
func (s *HistoryService) Rank(ctx context.Context, sessionID, heuristicName string) (*domain.RankResult, error) {
	var h heuristic.Heuristic
	if heuristicName != "" {
		var err error
		if h, err = s.registry.Lookup(heuristicName); err != nil {
			return nil, err
		}
	}

	rec, reqs, err := storage.LoadSession(ctx, s.storage, sessionID)
	if err != nil {
		return nil, err
	}
	if rec.Status == domain.StatusAborted {
		return nil, fmt.Errorf("%w: %s", domain.ErrSessionAborted, sessionID)
	}
	if heuristicName == "" {
		if h, err = s.registry.Lookup(rec.Heuristic); err != nil {
			return nil, err
		}
	}

	summary := rec.Summary()
	summary.Heuristic = h.Name
	summary.Requirements = len(reqs)
	return &domain.RankResult{
		Summary: summary,
		Entries: rank.Generate(reqs, summary.PassedTests(), summary.FailedTests, h),
	}, nil
}

// Delete removes a stored session.
func (s *HistoryService) Delete(ctx context.Context, sessionID string) error {
	uow, err := s.storage.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := uow.Sessions().Delete(ctx, sessionID); err != nil {
		return err
	}
	return uow.Commit()
}
