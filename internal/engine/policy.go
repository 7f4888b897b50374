package engine

import (
	"fmt"

	"buildline/internal/descriptor"
)

// DeniedError is returned when a role's ODRL policy forbids an action.
type DeniedError struct {
	ActionType string
	Role       string
	Reason     string
}

func (e DeniedError) Error() string {
	return fmt.Sprintf("role %s is not permitted to execute %s: %s", e.Role, e.ActionType, e.Reason)
}

// CheckPolicy enforces the action's ODRL policy for the given role. Unknown
// roles are denied; actions without a registered descriptor pass, since the
// wire vocabulary has no role table of its own.
func (e Engine) CheckPolicy(actionType, role string) error {
	if e.Registry == nil {
		return nil
	}
	d := e.Registry.Get(actionType)
	if d == nil {
		return nil
	}
	policy, ok := d.Policy(role)
	if !ok {
		return DeniedError{ActionType: actionType, Role: role, Reason: "unknown role"}
	}
	if !policy.Permitted {
		reason := policy.Reason
		if reason == "" {
			reason = "not permitted"
		}
		return DeniedError{ActionType: actionType, Role: role, Reason: reason}
	}
	return nil
}

// PolicyFor exposes the raw policy record, for the descriptor endpoints.
func (e Engine) PolicyFor(actionType, role string) (descriptor.ODRLPolicy, bool) {
	if e.Registry == nil {
		return descriptor.ODRLPolicy{}, false
	}
	d := e.Registry.Get(actionType)
	if d == nil {
		return descriptor.ODRLPolicy{}, false
	}
	return d.Policy(role)
}
