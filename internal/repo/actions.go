package repo

import (
	"context"
	"database/sql"

	"buildline/internal/domain"
)

// Active action tracking

func (r Repo) InsertActiveAction(ctx context.Context, a domain.ActiveAction) error {
	_, err := r.DB.ExecContext(ctx, `INSERT INTO active_actions(id,action_type,status,target_zone,actor_id,parameters_json,result_json,created_at,updated_at) VALUES (?,?,?,?,?,?,?,?,?)`,
		a.ID, a.ActionType, a.Status, a.TargetZone, a.ActorID, a.ParamsJSON, a.ResultJSON, a.CreatedAt, a.UpdatedAt)
	return err
}

func (r Repo) GetActiveAction(ctx context.Context, id string) (domain.ActiveAction, error) {
	var a domain.ActiveAction
	err := r.DB.QueryRowContext(ctx, `SELECT id,action_type,status,target_zone,actor_id,parameters_json,result_json,created_at,updated_at FROM active_actions WHERE id=?`, id).
		Scan(&a.ID, &a.ActionType, &a.Status, &a.TargetZone, &a.ActorID, &a.ParamsJSON, &a.ResultJSON, &a.CreatedAt, &a.UpdatedAt)
	if err == sql.ErrNoRows {
		return a, ErrNotFound
	}
	return a, err
}

func (r Repo) ListActiveActions(ctx context.Context, status string) ([]domain.ActiveAction, error) {
	query := `SELECT id,action_type,status,target_zone,actor_id,parameters_json,result_json,created_at,updated_at FROM active_actions`
	var args []any
	if status != "" {
		query += ` WHERE status=?`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.ActiveAction
	for rows.Next() {
		var a domain.ActiveAction
		if err := rows.Scan(&a.ID, &a.ActionType, &a.Status, &a.TargetZone, &a.ActorID, &a.ParamsJSON, &a.ResultJSON, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		res = append(res, a)
	}
	return res, rows.Err()
}

func (r Repo) UpdateActionStatus(ctx context.Context, id, status, resultJSON, updatedAt string) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE active_actions SET status=?,result_json=?,updated_at=? WHERE id=?`,
		status, resultJSON, updatedAt, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r Repo) UpdateActionStatusTx(ctx context.Context, tx *sql.Tx, id, status, resultJSON, updatedAt string) error {
	res, err := tx.ExecContext(ctx, `UPDATE active_actions SET status=?,result_json=?,updated_at=? WHERE id=?`,
		status, resultJSON, updatedAt, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
