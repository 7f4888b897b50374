package server

import (
	"encoding/json"

	"buildline/internal/domain"
)

// Request payloads

type DevLoginRequest struct {
	ActorID string `json:"actor_id"`
	Role    string `json:"role" enum:"operator,facility_manager,energy_manager,contractor"`
}

type ExecuteActionRequest struct {
	ActionType string         `json:"action_type"`
	TargetZone string         `json:"target_zone"`
	Parameters map[string]any `json:"parameters"`
}

type ValidateActionRequest struct {
	ActionType string         `json:"action_type"`
	Parameters map[string]any `json:"parameters"`
}

// Response payloads

type DevLoginResponse struct {
	Token string `json:"token"`
}

type WhoAmIResponse struct {
	ActorID string `json:"actor_id"`
	Role    string `json:"role,omitempty"`
	Source  string `json:"source,omitempty"`
}

type ValidationResponse struct {
	Valid    bool     `json:"is_valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

type ActionResponse struct {
	ID         string         `json:"id"`
	ActionType string         `json:"action_type"`
	Status     string         `json:"status" enum:"pending,running,completed,failed,canceled"`
	TargetZone string         `json:"target_zone,omitempty"`
	ActorID    string         `json:"actor_id,omitempty"`
	Parameters map[string]any `json:"parameters,omitempty"`
	Result     map[string]any `json:"result,omitempty"`
	CreatedAt  string         `json:"created_at" format:"date-time"`
	UpdatedAt  string         `json:"updated_at" format:"date-time"`
}

type HistoryEntryResponse struct {
	ID            int64          `json:"id"`
	TS            string         `json:"ts" format:"date-time"`
	ZoneID        string         `json:"zone_id"`
	ActionID      string         `json:"action_id"`
	ActionType    string         `json:"action_type"`
	PreviousState map[string]any `json:"previous_state,omitempty"`
	NewState      map[string]any `json:"new_state,omitempty"`
	Parameters    map[string]any `json:"parameters,omitempty"`
}

type AuditEntryResponse struct {
	ID         int64          `json:"id"`
	ActionID   string         `json:"action_id"`
	TS         string         `json:"ts" format:"date-time"`
	ActionType string         `json:"action_type"`
	TargetZone string         `json:"target_zone,omitempty"`
	ActorID    string         `json:"actor_id,omitempty"`
	Role       string         `json:"role,omitempty"`
	Status     string         `json:"status" enum:"completed,failed,denied"`
	Summary    string         `json:"summary,omitempty"`
	Details    map[string]any `json:"details,omitempty"`
}

// Conversion helpers

func actionResponse(a domain.ActiveAction) ActionResponse {
	return ActionResponse{
		ID:         a.ID,
		ActionType: a.ActionType,
		Status:     a.Status,
		TargetZone: a.TargetZone,
		ActorID:    a.ActorID,
		Parameters: decodeJSONMap(a.ParamsJSON),
		Result:     decodeJSONMap(a.ResultJSON),
		CreatedAt:  a.CreatedAt,
		UpdatedAt:  a.UpdatedAt,
	}
}

func historyEntryResponse(c domain.StateChange) HistoryEntryResponse {
	return HistoryEntryResponse{
		ID:            c.ID,
		TS:            c.TS,
		ZoneID:        c.ZoneID,
		ActionID:      c.ActionID,
		ActionType:    c.ActionType,
		PreviousState: decodeJSONMap(c.PrevStateJSON),
		NewState:      decodeJSONMap(c.NewStateJSON),
		Parameters:    decodeJSONMap(c.ParamsJSON),
	}
}

func auditEntryResponse(e domain.AuditEntry) AuditEntryResponse {
	return AuditEntryResponse{
		ID:         e.ID,
		ActionID:   e.ActionID,
		TS:         e.TS,
		ActionType: e.ActionType,
		TargetZone: e.TargetZone,
		ActorID:    e.ActorID,
		Role:       e.Role,
		Status:     e.Status,
		Summary:    e.Summary,
		Details:    decodeJSONMap(e.DetailsJSON),
	}
}

// JSON helpers

func decodeJSONMap(raw string) map[string]any {
	if raw == "" {
		return nil
	}
	var tmp any
	if err := json.Unmarshal([]byte(raw), &tmp); err != nil {
		return nil
	}
	if obj, ok := tmp.(map[string]any); ok {
		return obj
	}
	return nil
}

func nonNilSlice[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}
