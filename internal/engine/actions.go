package engine

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"buildline/internal/action"
	"buildline/internal/domain"
	"buildline/internal/rules"
)

// ActionOutcome reports the result of one governed, possibly multi-zone
// action. Commands holds the per-zone wire command results in zone order.
type ActionOutcome struct {
	ActionID  string          `json:"action_id"`
	Status    string          `json:"status"`
	Timestamp string          `json:"timestamp" format:"date-time"`
	Commands  []ExecuteResult `json:"commands,omitempty"`
	Summary   string          `json:"summary,omitempty"`
	Details   map[string]any  `json:"details,omitempty"`
}

// AdjustSetpoint runs the adjust-setpoint action: policy check, cross-field
// validation, one setTemperature command, and an action-level audit entry.
func (e Engine) AdjustSetpoint(ctx context.Context, in *action.AdjustSetpointInput, actorID, role string) (ActionOutcome, error) {
	params := map[string]any{
		"zone_id":      in.ZoneID,
		"new_setpoint": in.NewSetpoint,
		"priority":     in.Priority,
		"reason":       in.Reason,
	}
	if err := e.authorize(ctx, action.TypeAdjustSetpoint, in.ZoneID, actorID, role, params); err != nil {
		return ActionOutcome{}, err
	}
	if err := in.Validate(); err != nil {
		return ActionOutcome{}, err
	}

	cmd, err := e.ExecuteAction(ctx, ExecuteRequest{
		ActionType: rules.CmdSetTemperature,
		TargetZone: in.ZoneID,
		Parameters: map[string]any{"setpoint": in.NewSetpoint, "mode": "auto"},
		ActorID:    actorID,
		Role:       role,
	})
	if err != nil {
		return ActionOutcome{}, err
	}

	outcome := ActionOutcome{
		ActionID:  uuid.NewString(),
		Status:    cmd.Status,
		Timestamp: e.nowRFC3339(),
		Commands:  []ExecuteResult{cmd},
		Details:   map[string]any{"max_change": in.MaxChange},
	}
	if cmd.Status == StatusCompleted {
		outcome.Summary = e.recordActionAudit(ctx, outcome.ActionID, action.TypeAdjustSetpoint, in.ZoneID, actorID, role, params, outcome.Details)
	}
	return outcome, nil
}

// LoadShed runs the load-shed action across all target zones, reducing
// lighting by the level's shed fraction.
func (e Engine) LoadShed(ctx context.Context, in *action.LoadShedInput, actorID, role string) (ActionOutcome, error) {
	params := map[string]any{
		"shed_level":       in.ShedLevel,
		"duration_minutes": in.DurationMinutes,
		"zones":            in.ZoneIDs,
		"reason":           in.Reason,
	}
	target := ""
	if len(in.ZoneIDs) == 1 {
		target = in.ZoneIDs[0]
	}
	if err := e.authorize(ctx, action.TypeLoadShed, target, actorID, role, params); err != nil {
		return ActionOutcome{}, err
	}
	if err := in.Validate(); err != nil {
		return ActionOutcome{}, err
	}

	level := 100.0 * (1.0 - action.ShedFraction(in.ShedLevel))
	outcome := ActionOutcome{
		ActionID:  uuid.NewString(),
		Timestamp: e.nowRFC3339(),
		Status:    StatusCompleted,
	}
	for _, zoneID := range in.ZoneIDs {
		cmd, err := e.ExecuteAction(ctx, ExecuteRequest{
			ActionType: rules.CmdSetLightingLevel,
			TargetZone: zoneID,
			Parameters: map[string]any{"level": level, "duration": float64(in.DurationMinutes) * 60},
			ActorID:    actorID,
			Role:       role,
		})
		if err != nil {
			return ActionOutcome{}, err
		}
		outcome.Commands = append(outcome.Commands, cmd)
		if cmd.Status != StatusCompleted {
			outcome.Status = cmd.Status
		}
	}

	savings := action.EstimateShedSavings(len(in.ZoneIDs), in.ShedLevel, e.avgZoneLoadKW())
	outcome.Details = map[string]any{
		"lighting_level":       level,
		"estimated_savings_kw": savings,
		"equipment_types":      in.EquipmentTypes,
	}
	if outcome.Status == StatusCompleted {
		outcome.Summary = e.recordActionAudit(ctx, outcome.ActionID, action.TypeLoadShed, target, actorID, role, params, outcome.Details)
	}
	return outcome, nil
}

// PreCool runs the pre-cooling action: each zone is driven to the target
// temperature in cool mode, with the run cost estimated from the cooling
// window and the configured electricity rate.
func (e Engine) PreCool(ctx context.Context, in *action.PreCoolingInput, actorID, role string) (ActionOutcome, error) {
	params := map[string]any{
		"zone_count":      len(in.ZoneIDs),
		"zones":           in.ZoneIDs,
		"target_temp":     in.TargetTemp,
		"start_time":      in.StartTime,
		"occupancy_start": in.OccupancyStart,
		"max_rate_delta":  in.MaxRateDelta,
		"enable_adaptive": in.EnableAdaptive,
		"reason":          in.Reason,
	}
	target := ""
	if len(in.ZoneIDs) == 1 {
		target = in.ZoneIDs[0]
	}
	if err := e.authorize(ctx, action.TypePreCooling, target, actorID, role, params); err != nil {
		return ActionOutcome{}, err
	}
	if err := in.Validate(); err != nil {
		return ActionOutcome{}, err
	}

	window, err := in.WindowMinutes()
	if err != nil {
		return ActionOutcome{}, err
	}

	var totalDelta float64
	outcome := ActionOutcome{
		ActionID:  uuid.NewString(),
		Timestamp: e.nowRFC3339(),
		Status:    StatusCompleted,
	}
	for _, zoneID := range in.ZoneIDs {
		if zs, err := e.GetZoneState(ctx, zoneID); err == nil {
			if current, ok := zs.State["temperature_setpoint"].(float64); ok && current > in.TargetTemp {
				totalDelta += current - in.TargetTemp
			}
		}
		cmd, err := e.ExecuteAction(ctx, ExecuteRequest{
			ActionType: rules.CmdSetTemperature,
			TargetZone: zoneID,
			Parameters: map[string]any{"setpoint": in.TargetTemp, "mode": "cool"},
			ActorID:    actorID,
			Role:       role,
		})
		if err != nil {
			return ActionOutcome{}, err
		}
		outcome.Commands = append(outcome.Commands, cmd)
		if cmd.Status != StatusCompleted {
			outcome.Status = cmd.Status
		}
	}

	avgDelta := 0.0
	if len(in.ZoneIDs) > 0 {
		avgDelta = totalDelta / float64(len(in.ZoneIDs))
	}
	hours := float64(window) / 60.0
	cost := action.EstimatePreCoolingCost(len(in.ZoneIDs), avgDelta, hours, e.electricityRate())
	params["estimated_cost"] = cost
	outcome.Details = map[string]any{
		"window_minutes":  window,
		"estimated_cost":  cost,
		"cost_limit_usd":  in.CostLimitUSD,
		"enable_adaptive": in.EnableAdaptive,
	}
	if outcome.Status == StatusCompleted {
		outcome.Summary = e.recordActionAudit(ctx, outcome.ActionID, action.TypePreCooling, target, actorID, role, params, outcome.Details)
	}
	return outcome, nil
}

// authorize enforces the ODRL policy and records denied attempts in the
// audit trail before returning the denial.
func (e Engine) authorize(ctx context.Context, actionType, targetZone, actorID, role string, params map[string]any) error {
	err := e.CheckPolicy(actionType, role)
	if err == nil {
		return nil
	}
	details := map[string]any{"parameters": params, "denial": err.Error()}
	data, merr := json.Marshal(details)
	if merr != nil {
		data = []byte("{}")
	}
	_ = e.Repo.InsertAuditEntry(ctx, domain.AuditEntry{
		ActionID:    uuid.NewString(),
		TS:          e.nowRFC3339(),
		ActionType:  actionType,
		TargetZone:  targetZone,
		ActorID:     actorID,
		Role:        role,
		Status:      "denied",
		Summary:     err.Error(),
		DetailsJSON: string(data),
	})
	return err
}

// recordActionAudit writes the action-level audit entry using the
// descriptor's summary template and returns the rendered summary.
func (e Engine) recordActionAudit(ctx context.Context, actionID, actionType, targetZone, actorID, role string, params, details map[string]any) string {
	summary := ""
	if e.Registry != nil {
		if d := e.Registry.Get(actionType); d != nil {
			summary = d.AuditDescriptor.FormatSummary(params)
		}
	}
	payload := map[string]any{"parameters": params}
	if details != nil {
		payload["details"] = details
	}
	data, err := json.Marshal(payload)
	if err != nil {
		data = []byte("{}")
	}
	_ = e.Repo.InsertAuditEntry(ctx, domain.AuditEntry{
		ActionID:    actionID,
		TS:          e.now().UTC().Format(time.RFC3339),
		ActionType:  actionType,
		TargetZone:  targetZone,
		ActorID:     actorID,
		Role:        role,
		Status:      StatusCompleted,
		Summary:     summary,
		DetailsJSON: string(data),
	})
	return summary
}

func (e Engine) avgZoneLoadKW() float64 {
	if e.Config != nil && e.Config.Rates.AvgZoneLoadKW > 0 {
		return e.Config.Rates.AvgZoneLoadKW
	}
	return 10.0
}

func (e Engine) electricityRate() float64 {
	if e.Config != nil && e.Config.Rates.ElectricityPerKWH > 0 {
		return e.Config.Rates.ElectricityPerKWH
	}
	return 0.12
}
