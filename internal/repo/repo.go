package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"buildline/internal/domain"
)

type Repo struct {
	DB *sql.DB
}

var ErrNotFound = errors.New("not found")

// Zones

func (r Repo) InsertZone(ctx context.Context, z domain.Zone) error {
	_, err := r.DB.ExecContext(ctx, `INSERT INTO zones(id,name,state_json,last_action_id,updated_at) VALUES (?,?,?,?,?)`,
		z.ID, z.Name, z.StateJSON, z.LastActionID, z.UpdatedAt)
	return err
}

func (r Repo) GetZone(ctx context.Context, id string) (domain.Zone, error) {
	var z domain.Zone
	err := r.DB.QueryRowContext(ctx, `SELECT id,name,state_json,last_action_id,updated_at FROM zones WHERE id=?`, id).
		Scan(&z.ID, &z.Name, &z.StateJSON, &z.LastActionID, &z.UpdatedAt)
	if err == sql.ErrNoRows {
		return z, ErrNotFound
	}
	return z, err
}

func (r Repo) ListZones(ctx context.Context) ([]domain.Zone, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id,name,state_json,last_action_id,updated_at FROM zones ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.Zone
	for rows.Next() {
		var z domain.Zone
		if err := rows.Scan(&z.ID, &z.Name, &z.StateJSON, &z.LastActionID, &z.UpdatedAt); err != nil {
			return nil, err
		}
		res = append(res, z)
	}
	return res, rows.Err()
}

func (r Repo) UpdateZoneStateTx(ctx context.Context, tx *sql.Tx, id, stateJSON, lastActionID, updatedAt string) error {
	res, err := tx.ExecContext(ctx, `UPDATE zones SET state_json=?,last_action_id=?,updated_at=? WHERE id=?`,
		stateJSON, lastActionID, updatedAt, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r Repo) DeleteZone(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM zones WHERE id=?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r Repo) CountZones(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM zones`).Scan(&n)
	return n, err
}

// Zone history

func (r Repo) InsertStateChangeTx(ctx context.Context, tx *sql.Tx, c domain.StateChange) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO zone_history(ts,zone_id,action_id,action_type,previous_state_json,new_state_json,parameters_json) VALUES (?,?,?,?,?,?,?)`,
		c.TS, c.ZoneID, c.ActionID, c.ActionType, c.PrevStateJSON, c.NewStateJSON, c.ParamsJSON)
	return err
}

// HistoryFilters narrows ListStateChanges. Zero values mean no filter.
type HistoryFilters struct {
	ZoneID string
	Limit  int
	Offset int
}

func (r Repo) ListStateChanges(ctx context.Context, f HistoryFilters) ([]domain.StateChange, error) {
	query := `SELECT id,ts,zone_id,action_id,action_type,previous_state_json,new_state_json,parameters_json FROM zone_history`
	var (
		conds []string
		args  []any
	)
	if f.ZoneID != "" {
		conds = append(conds, "zone_id=?")
		args = append(args, f.ZoneID)
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY ts DESC, id DESC"
	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}
	query += " LIMIT ? OFFSET ?"
	args = append(args, limit, f.Offset)

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.StateChange
	for rows.Next() {
		var c domain.StateChange
		if err := rows.Scan(&c.ID, &c.TS, &c.ZoneID, &c.ActionID, &c.ActionType, &c.PrevStateJSON, &c.NewStateJSON, &c.ParamsJSON); err != nil {
			return nil, err
		}
		res = append(res, c)
	}
	return res, rows.Err()
}

// Audit trail

func (r Repo) InsertAuditEntryTx(ctx context.Context, tx *sql.Tx, e domain.AuditEntry) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO audit_entries(action_id,ts,action_type,target_zone,actor_id,role,status,summary,details_json) VALUES (?,?,?,?,?,?,?,?,?)`,
		e.ActionID, e.TS, e.ActionType, e.TargetZone, e.ActorID, e.Role, e.Status, e.Summary, e.DetailsJSON)
	return err
}

func (r Repo) InsertAuditEntry(ctx context.Context, e domain.AuditEntry) error {
	_, err := r.DB.ExecContext(ctx, `INSERT INTO audit_entries(action_id,ts,action_type,target_zone,actor_id,role,status,summary,details_json) VALUES (?,?,?,?,?,?,?,?,?)`,
		e.ActionID, e.TS, e.ActionType, e.TargetZone, e.ActorID, e.Role, e.Status, e.Summary, e.DetailsJSON)
	return err
}

// AuditFilters narrows ListAuditEntries. Zero values mean no filter; times
// are RFC3339 strings compared lexically, which is safe for that format.
type AuditFilters struct {
	ActionID   string
	ZoneID     string
	ActionType string
	Status     string
	StartTime  string
	EndTime    string
	Limit      int
	Offset     int
}

func (r Repo) ListAuditEntries(ctx context.Context, f AuditFilters) ([]domain.AuditEntry, error) {
	query := `SELECT id,action_id,ts,action_type,target_zone,actor_id,role,status,summary,details_json FROM audit_entries`
	var (
		conds []string
		args  []any
	)
	if f.ActionID != "" {
		conds = append(conds, "action_id=?")
		args = append(args, f.ActionID)
	}
	if f.ZoneID != "" {
		conds = append(conds, "target_zone=?")
		args = append(args, f.ZoneID)
	}
	if f.ActionType != "" {
		conds = append(conds, "action_type=?")
		args = append(args, f.ActionType)
	}
	if f.Status != "" {
		conds = append(conds, "status=?")
		args = append(args, f.Status)
	}
	if f.StartTime != "" {
		conds = append(conds, "ts>=?")
		args = append(args, f.StartTime)
	}
	if f.EndTime != "" {
		conds = append(conds, "ts<=?")
		args = append(args, f.EndTime)
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY ts DESC, id DESC"
	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}
	query += " LIMIT ? OFFSET ?"
	args = append(args, limit, f.Offset)

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.AuditEntry
	for rows.Next() {
		var e domain.AuditEntry
		if err := rows.Scan(&e.ID, &e.ActionID, &e.TS, &e.ActionType, &e.TargetZone, &e.ActorID, &e.Role, &e.Status, &e.Summary, &e.DetailsJSON); err != nil {
			return nil, err
		}
		res = append(res, e)
	}
	return res, rows.Err()
}

// AuditSummary aggregates the trail for the audit summary endpoint.
type AuditSummary struct {
	Total    int            `json:"total"`
	ByType   map[string]int `json:"by_type"`
	ByStatus map[string]int `json:"by_status"`
	ByZone   map[string]int `json:"by_zone"`
}

func (r Repo) SummarizeAudit(ctx context.Context) (AuditSummary, error) {
	summary := AuditSummary{
		ByType:   map[string]int{},
		ByStatus: map[string]int{},
		ByZone:   map[string]int{},
	}
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM audit_entries`).Scan(&summary.Total); err != nil {
		return summary, err
	}
	group := func(column string, into map[string]int) error {
		rows, err := r.DB.QueryContext(ctx, fmt.Sprintf(`SELECT %s, COUNT(*) FROM audit_entries WHERE %s != '' GROUP BY %s`, column, column, column))
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var key string
			var n int
			if err := rows.Scan(&key, &n); err != nil {
				return err
			}
			into[key] = n
		}
		return rows.Err()
	}
	if err := group("action_type", summary.ByType); err != nil {
		return summary, err
	}
	if err := group("status", summary.ByStatus); err != nil {
		return summary, err
	}
	if err := group("target_zone", summary.ByZone); err != nil {
		return summary, err
	}
	return summary, nil
}
