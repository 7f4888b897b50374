package events

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"buildline/internal/descriptor"
	"buildline/internal/domain"
	"buildline/internal/repo"
)

// Writer appends entries to the audit trail. When a registered descriptor
// exists for the action, its audit template renders the summary line.
type Writer struct {
	DB       *sql.DB
	Registry *descriptor.Registry
	Now      func() time.Time
}

// Record writes one audit entry inside the caller's transaction. Params are
// stored verbatim in the details payload alongside any state changes.
func (w Writer) Record(ctx context.Context, tx *sql.Tx, actionID, actionType, targetZone, actorID, role, status string, params, stateChanges map[string]any) error {
	if w.Now == nil {
		w.Now = time.Now
	}
	ts := w.Now().UTC().Format(time.RFC3339)

	details := map[string]any{"parameters": params}
	if stateChanges != nil {
		details["state_changes"] = stateChanges
	}
	data, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("marshal audit details: %w", err)
	}

	entry := domain.AuditEntry{
		ActionID:    actionID,
		TS:          ts,
		ActionType:  actionType,
		TargetZone:  targetZone,
		ActorID:     actorID,
		Role:        role,
		Status:      status,
		Summary:     w.summarize(actionType, params),
		DetailsJSON: string(data),
	}
	return repo.Repo{DB: w.DB}.InsertAuditEntryTx(ctx, tx, entry)
}

func (w Writer) summarize(actionType string, params map[string]any) string {
	if w.Registry == nil {
		return ""
	}
	d := w.Registry.Get(actionType)
	if d == nil {
		return ""
	}
	return d.AuditDescriptor.FormatSummary(params)
}
