package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"buildline/internal/domain"
	"buildline/internal/repo"
	"buildline/internal/rules"
)

// Execution statuses.
const (
	StatusCompleted        = "completed"
	StatusFailed           = "failed"
	StatusValidationFailed = "validation_failed"
	StatusRunning          = "running"
	StatusCanceled         = "canceled"
)

// ExecuteRequest is a wire-level command aimed at one zone.
type ExecuteRequest struct {
	ActionType string
	TargetZone string
	Parameters map[string]any
	ActorID    string
	Role       string
}

// ExecuteResult reports the outcome of one command execution.
type ExecuteResult struct {
	ActionID  string         `json:"action_id"`
	Status    string         `json:"status"`
	Timestamp string         `json:"timestamp" format:"date-time"`
	Result    map[string]any `json:"result,omitempty"`
	Errors    []string       `json:"errors,omitempty"`
	Warnings  []string       `json:"warnings,omitempty"`
}

// ExecuteAction validates and executes a single wire command. Validation
// failures return a result with status validation_failed rather than an
// error; errors are reserved for storage and unknown-zone problems.
func (e Engine) ExecuteAction(ctx context.Context, req ExecuteRequest) (ExecuteResult, error) {
	actionID := uuid.NewString()
	res := ExecuteResult{ActionID: actionID, Timestamp: e.nowRFC3339()}

	outcome := e.Rules.Validate(req.ActionType, req.Parameters)
	res.Warnings = outcome.Warnings
	if !outcome.Valid {
		res.Status = StatusValidationFailed
		res.Errors = outcome.Errors
		return res, nil
	}

	zone, err := e.Repo.GetZone(ctx, req.TargetZone)
	if err != nil {
		return res, err
	}

	paramsJSON, err := json.Marshal(req.Parameters)
	if err != nil {
		return res, err
	}
	if err := e.Repo.InsertActiveAction(ctx, domain.ActiveAction{
		ID:         actionID,
		ActionType: req.ActionType,
		Status:     StatusRunning,
		TargetZone: req.TargetZone,
		ActorID:    req.ActorID,
		ParamsJSON: string(paramsJSON),
		ResultJSON: "{}",
		CreatedAt:  res.Timestamp,
		UpdatedAt:  res.Timestamp,
	}); err != nil {
		return res, err
	}

	result := e.runHandler(req)
	updates := computeStateUpdates(req.ActionType, req.Parameters)

	if err := e.applyStateChange(ctx, actionID, req, zone, updates, result); err != nil {
		now := e.nowRFC3339()
		_ = e.Repo.UpdateActionStatus(ctx, actionID, StatusFailed, "{}", now)
		return res, err
	}

	res.Status = StatusCompleted
	res.Result = result
	return res, nil
}

// applyStateChange persists the zone update, the history record, the audit
// entry, and the terminal action status in one transaction.
func (e Engine) applyStateChange(ctx context.Context, actionID string, req ExecuteRequest, zone domain.Zone, updates, result map[string]any) error {
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := e.nowRFC3339()

	prevState := map[string]any{}
	if zone.StateJSON != "" {
		if err := json.Unmarshal([]byte(zone.StateJSON), &prevState); err != nil {
			return fmt.Errorf("decode zone state: %w", err)
		}
	}
	newState := make(map[string]any, len(prevState)+len(updates))
	for k, v := range prevState {
		newState[k] = v
	}
	for k, v := range updates {
		newState[k] = v
	}
	newState["last_updated"] = now
	newState["last_action_id"] = actionID

	newJSON, err := json.Marshal(newState)
	if err != nil {
		return err
	}
	prevJSON, err := json.Marshal(prevState)
	if err != nil {
		return err
	}
	paramsJSON, err := json.Marshal(req.Parameters)
	if err != nil {
		return err
	}
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return err
	}

	if err := e.Repo.UpdateZoneStateTx(ctx, tx, zone.ID, string(newJSON), actionID, now); err != nil {
		return err
	}
	if err := e.Repo.InsertStateChangeTx(ctx, tx, domain.StateChange{
		TS:            now,
		ZoneID:        zone.ID,
		ActionID:      actionID,
		ActionType:    req.ActionType,
		PrevStateJSON: string(prevJSON),
		NewStateJSON:  string(newJSON),
		ParamsJSON:    string(paramsJSON),
	}); err != nil {
		return err
	}
	if err := e.Events.Record(ctx, tx, actionID, req.ActionType, zone.ID, req.ActorID, req.Role, StatusCompleted, req.Parameters, updates); err != nil {
		return err
	}
	if err := e.Repo.UpdateActionStatusTx(ctx, tx, actionID, StatusCompleted, string(resultJSON), now); err != nil {
		return err
	}
	return tx.Commit()
}

// runHandler produces the per-command result payload reported to the caller.
func (e Engine) runHandler(req ExecuteRequest) map[string]any {
	result := map[string]any{
		"action":     req.ActionType,
		"zone":       req.TargetZone,
		"applied_at": e.nowRFC3339(),
	}
	switch req.ActionType {
	case rules.CmdSetTemperature:
		result["setpoint"] = req.Parameters["setpoint"]
		result["mode"] = paramOr(req.Parameters, "mode", "auto")
	case rules.CmdSetOccupancyMode:
		result["mode"] = req.Parameters["mode"]
	case rules.CmdAdjustVentilation:
		result["rate"] = req.Parameters["rate"]
	case rules.CmdEnableEconomizer:
		result["enabled"] = paramOr(req.Parameters, "enabled", true)
	case rules.CmdSetLightingLevel:
		result["level"] = req.Parameters["level"]
	}
	return result
}

// computeStateUpdates maps an executed command onto the zone state keys it
// changes.
func computeStateUpdates(actionType string, params map[string]any) map[string]any {
	updates := map[string]any{}
	switch actionType {
	case rules.CmdSetTemperature:
		updates["temperature_setpoint"] = params["setpoint"]
		updates["hvac_mode"] = paramOr(params, "mode", "auto")
	case rules.CmdSetOccupancyMode:
		updates["occupancy_mode"] = params["mode"]
	case rules.CmdAdjustVentilation:
		updates["ventilation_rate"] = params["rate"]
		if mode, ok := params["mode"]; ok {
			updates["ventilation_mode"] = mode
		}
	case rules.CmdEnableEconomizer:
		updates["economizer_enabled"] = paramOr(params, "enabled", true)
		if v, ok := params["min_outdoor_temp"]; ok {
			updates["economizer_min_temp"] = v
		}
		if v, ok := params["max_outdoor_temp"]; ok {
			updates["economizer_max_temp"] = v
		}
	case rules.CmdSetLightingLevel:
		updates["lighting_level"] = params["level"]
		if v, ok := params["duration"]; ok {
			updates["lighting_duration"] = v
		}
	}
	return updates
}

func paramOr(params map[string]any, key string, fallback any) any {
	if v, ok := params[key]; ok {
		return v
	}
	return fallback
}

// ActiveActions lists actions still running.
func (e Engine) ActiveActions(ctx context.Context) ([]domain.ActiveAction, error) {
	return e.Repo.ListActiveActions(ctx, StatusRunning)
}

// GetAction returns one tracked action by ID.
func (e Engine) GetAction(ctx context.Context, id string) (domain.ActiveAction, error) {
	return e.Repo.GetActiveAction(ctx, id)
}

// CancelAction cancels a running action. Returns false when the action does
// not exist or already reached a terminal status.
func (e Engine) CancelAction(ctx context.Context, id string) (bool, error) {
	a, err := e.Repo.GetActiveAction(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	if a.Status != StatusRunning {
		return false, nil
	}
	if err := e.Repo.UpdateActionStatus(ctx, id, StatusCanceled, a.ResultJSON, e.nowRFC3339()); err != nil {
		return false, err
	}
	return true, nil
}
