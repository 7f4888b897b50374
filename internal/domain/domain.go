package domain

// Zone is the persisted state of one building zone. StateJSON holds the
// free-form equipment state map (setpoint, hvac mode, lighting level, ...)
// as stored; typed accessors live on the callers that know the keys.
type Zone struct {
	ID           string `json:"id"`
	Name         string `json:"name,omitempty"`
	StateJSON    string `json:"state_json"`
	LastActionID string `json:"last_action_id,omitempty"`
	UpdatedAt    string `json:"updated_at" format:"date-time"`
}

// StateChange is one recorded zone state transition.
type StateChange struct {
	ID            int64  `json:"id"`
	TS            string `json:"ts" format:"date-time"`
	ZoneID        string `json:"zone_id"`
	ActionID      string `json:"action_id"`
	ActionType    string `json:"action_type"`
	PrevStateJSON string `json:"previous_state_json"`
	NewStateJSON  string `json:"new_state_json"`
	ParamsJSON    string `json:"parameters_json"`
}

// AuditEntry is one action recorded in the audit trail. Summary is the
// rendered human-readable line from the action's audit descriptor.
type AuditEntry struct {
	ID          int64  `json:"id"`
	ActionID    string `json:"action_id"`
	TS          string `json:"ts" format:"date-time"`
	ActionType  string `json:"action_type"`
	TargetZone  string `json:"target_zone,omitempty"`
	ActorID     string `json:"actor_id,omitempty"`
	Role        string `json:"role,omitempty"`
	Status      string `json:"status" enum:"completed,failed,denied"`
	Summary     string `json:"summary,omitempty"`
	DetailsJSON string `json:"details_json,omitempty"`
}

// ActiveAction is an in-flight or completed action execution tracked by the
// engine, e.g. a running load shed that can still be canceled.
type ActiveAction struct {
	ID         string `json:"id"`
	ActionType string `json:"action_type"`
	Status     string `json:"status" enum:"pending,running,completed,failed,canceled"`
	TargetZone string `json:"target_zone,omitempty"`
	ActorID    string `json:"actor_id,omitempty"`
	ParamsJSON string `json:"parameters_json,omitempty"`
	ResultJSON string `json:"result_json,omitempty"`
	CreatedAt  string `json:"created_at" format:"date-time"`
	UpdatedAt  string `json:"updated_at" format:"date-time"`
}
