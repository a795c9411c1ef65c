package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/example/sfl-lite/sfl/domain"
)

// SessionRecord is the stored summary of one collection session.
type SessionRecord struct {
	ID           string
	Project      string
	Heuristic    string
	Status       domain.SessionStatus
	TotalTests   int
	FailedTests  int
	Requirements int
	Elapsed      time.Duration
	CreatedAt    time.Time
	FinishedAt   time.Time
}

// NewSessionRecord builds a record from a session summary.
func NewSessionRecord(summary domain.Summary, status domain.SessionStatus) *SessionRecord {
	return &SessionRecord{
		ID:           summary.SessionID,
		Project:      summary.Project,
		Heuristic:    summary.Heuristic,
		Status:       status,
		TotalTests:   summary.TotalTests,
		FailedTests:  summary.FailedTests,
		Requirements: summary.Requirements,
		Elapsed:      summary.Elapsed,
		CreatedAt:    summary.FinishedAt.Add(-summary.Elapsed).UTC(),
		FinishedAt:   summary.FinishedAt.UTC(),
	}
}

// Summary converts the record back into a session summary.
func (r *SessionRecord) Summary() domain.Summary {
	return domain.Summary{
		SessionID:    r.ID,
		Project:      r.Project,
		Heuristic:    r.Heuristic,
		TotalTests:   r.TotalTests,
		FailedTests:  r.FailedTests,
		Requirements: r.Requirements,
		Elapsed:      r.Elapsed,
		FinishedAt:   r.FinishedAt,
	}
}

// ListOptions provides filtering options for list operations.
type ListOptions struct {
	// Project filters by project name (empty = all)
	Project string

	// Statuses to filter by (empty = all)
	Statuses []domain.SessionStatus

	// Pagination
	Limit  int
	Offset int
}

// SessionRepository provides access to session records.
type SessionRepository interface {
	// Create stores a new session record.
	Create(ctx context.Context, rec *SessionRecord) error

	// Get retrieves a session by ID.
	Get(ctx context.Context, id string) (*SessionRecord, error)

	// List lists sessions, newest first.
	List(ctx context.Context, opts ListOptions) ([]*SessionRecord, error)

	// Delete deletes a session and its spectrum.
	Delete(ctx context.Context, id string) error
}

// SpectrumRepository provides access to the requirement records of a session.
type SpectrumRepository interface {
	// Save stores all requirements of a session.
	Save(ctx context.Context, sessionID string, reqs []domain.Requirement) error

	// Load returns the requirements of a session ordered by key.
	Load(ctx context.Context, sessionID string) ([]domain.Requirement, error)
}

// UnitOfWork provides transactional access to all repositories.
type UnitOfWork interface {
	// Repository accessors
	Sessions() SessionRepository
	Spectra() SpectrumRepository

	// Transaction control
	Commit() error
	Rollback() error
}

// Storage provides the main entry point for storage operations.
type Storage interface {
	// Begin starts a new transaction and returns a UnitOfWork.
	Begin(ctx context.Context) (UnitOfWork, error)

	// Close closes the storage connection.
	Close() error

	// Migrate runs database migrations.
	Migrate(ctx context.Context) error
}

// SaveSession stores a session record and its spectrum in one transaction.
func SaveSession(ctx context.Context, s Storage, rec *SessionRecord, reqs []domain.Requirement) error {
	uow, err := s.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := uow.Sessions().Create(ctx, rec); err != nil {
		return fmt.Errorf("failed to store session %s: %w", rec.ID, err)
	}
	if err := uow.Spectra().Save(ctx, rec.ID, reqs); err != nil {
		return fmt.Errorf("failed to store spectrum of %s: %w", rec.ID, err)
	}
	return uow.Commit()
}

// LoadSession reads a session record and its spectrum.
func LoadSession(ctx context.Context, s Storage, id string) (*SessionRecord, []domain.Requirement, error) {
	uow, err := s.Begin(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	rec, err := uow.Sessions().Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	reqs, err := uow.Spectra().Load(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return rec, reqs, nil
}
