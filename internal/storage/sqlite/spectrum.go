package sqlite

import (
	"context"
	"database/sql"

	"github.com/example/sfl-lite/sfl/domain"
)

type spectrumRepo struct {
	tx *sql.Tx
}

func (r *spectrumRepo) Save(ctx context.Context, sessionID string, reqs []domain.Requirement) error {
	stmt, err := r.tx.PrepareContext(ctx, `
		INSERT INTO requirements (session_id, key, kind, class_name, line, method, dua_id,
			def_line, use_line, target_line, var_name, covered_passed, covered_failed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, req := range reqs {
		_, err := stmt.ExecContext(ctx, sessionID, req.Key(), req.Kind, req.ClassName, req.Line,
			req.MethodSignature, req.DuaID, req.Def, req.Use, req.Target, req.Var,
			req.CoveredByPassed, req.CoveredByFailed)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *spectrumRepo) Load(ctx context.Context, sessionID string) ([]domain.Requirement, error) {
	rows, err := r.tx.QueryContext(ctx, `
		SELECT kind, class_name, line, method, dua_id, def_line, use_line, target_line,
			var_name, covered_passed, covered_failed
		FROM requirements WHERE session_id = ?
		ORDER BY key
	`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reqs []domain.Requirement
	for rows.Next() {
		var req domain.Requirement
		err := rows.Scan(&req.Kind, &req.ClassName, &req.Line, &req.MethodSignature, &req.DuaID,
			&req.Def, &req.Use, &req.Target, &req.Var, &req.CoveredByPassed, &req.CoveredByFailed)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, req)
	}
	return reqs, rows.Err()
}
