package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/sfl-lite/internal/storage"
	"github.com/example/sfl-lite/sfl/domain"
)

type sessionRepo struct {
	tx *sql.Tx
}

func (r *sessionRepo) Create(ctx context.Context, rec *storage.SessionRecord) error {
	_, err := r.tx.ExecContext(ctx, `
		INSERT INTO sessions (id, project, heuristic, status, total_tests, failed_tests,
			requirements, elapsed_ms, created_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.Project, rec.Heuristic, rec.Status, rec.TotalTests, rec.FailedTests,
		rec.Requirements, rec.Elapsed.Milliseconds(), rec.CreatedAt, rec.FinishedAt)
	return err
}

func (r *sessionRepo) Get(ctx context.Context, id string) (*storage.SessionRecord, error) {
	row := r.tx.QueryRowContext(ctx, `
		SELECT id, project, heuristic, status, total_tests, failed_tests,
			requirements, elapsed_ms, created_at, finished_at
		FROM sessions WHERE id = ?
	`, id)

	rec, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
	}
	return rec, err
}

func (r *sessionRepo) List(ctx context.Context, opts storage.ListOptions) ([]*storage.SessionRecord, error) {
	query := `
		SELECT id, project, heuristic, status, total_tests, failed_tests,
			requirements, elapsed_ms, created_at, finished_at
		FROM sessions WHERE 1 = 1`
	var args []any

	if opts.Project != "" {
		query += " AND project = ?"
		args = append(args, opts.Project)
	}
	if len(opts.Statuses) > 0 {
		placeholders := make([]string, len(opts.Statuses))
		for i, status := range opts.Statuses {
			placeholders[i] = "?"
			args = append(args, status)
		}
		query += " AND status IN (" + strings.Join(placeholders, ",") + ")"
	}
	query += " ORDER BY created_at DESC, id"

	if opts.Limit > 0 || opts.Offset > 0 {
		limit := opts.Limit
		if limit <= 0 {
			limit = -1
		}
		query += " LIMIT ? OFFSET ?"
		args = append(args, limit, opts.Offset)
	}

	rows, err := r.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*storage.SessionRecord
	for rows.Next() {
		rec, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (r *sessionRepo) Delete(ctx context.Context, id string) error {
	result, err := r.tx.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
	}

	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(s scanner) (*storage.SessionRecord, error) {
	rec := &storage.SessionRecord{}
	var elapsedMs int64
	err := s.Scan(&rec.ID, &rec.Project, &rec.Heuristic, &rec.Status, &rec.TotalTests,
		&rec.FailedTests, &rec.Requirements, &elapsedMs, &rec.CreatedAt, &rec.FinishedAt)
	if err != nil {
		return nil, err
	}
	rec.Elapsed = time.Duration(elapsedMs) * time.Millisecond
	return rec, nil
}
