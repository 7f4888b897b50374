package action

import (
	"fmt"
	"math"

	"github.com/danielgtaylor/huma/v2"
)

// AdjustSetpointInput is the validated input for a zone setpoint change.
type AdjustSetpointInput struct {
	ZoneID          string   `json:"zone_id" minLength:"1" doc:"Target zone identifier"`
	NewSetpoint     float64  `json:"new_setpoint" minimum:"50" maximum:"90" doc:"New temperature setpoint in Fahrenheit"`
	Reason          string   `json:"reason" minLength:"1" doc:"Reason for setpoint adjustment"`
	Priority        string   `json:"priority,omitempty" enum:"low,medium,high,emergency" default:"medium" doc:"Adjustment priority"`
	MaxChange       float64  `json:"max_change,omitempty" exclusiveMinimum:"0" maximum:"15" default:"5" doc:"Maximum allowed temperature change in degrees F"`
	CurrentSetpoint *float64 `json:"current_setpoint,omitempty" minimum:"50" maximum:"90" doc:"Current setpoint for validation (optional)"`
}

func (i *AdjustSetpointInput) setDefaults(raw map[string]any) {
	if _, ok := raw["priority"]; !ok {
		i.Priority = "medium"
	}
	if _, ok := raw["max_change"]; !ok {
		i.MaxChange = 5.0
	}
}

// Validate applies the cross-field rules: the comfort-range recheck on the
// setpoint, and the change-magnitude limit when the current setpoint is
// known. The first violated rule wins.
func (i *AdjustSetpointInput) Validate() error {
	if i.NewSetpoint < 60.0 || i.NewSetpoint > 80.0 {
		return fmt.Errorf(
			"Setpoint %s°F is outside typical comfort range (60-80°F). Use high/emergency priority if intentional.",
			fmtNum(i.NewSetpoint))
	}
	if i.CurrentSetpoint != nil {
		change := math.Abs(i.NewSetpoint - *i.CurrentSetpoint)
		if change > i.MaxChange {
			return fmt.Errorf(
				"Setpoint change of %s°F exceeds max_change limit of %s°F",
				fmtNum(change), fmtNum(i.MaxChange))
		}
	}
	return nil
}

// Resolve runs the cross-field rules after schema validation has passed.
func (i *AdjustSetpointInput) Resolve(_ huma.Context) []error {
	if err := i.Validate(); err != nil {
		return []error{&huma.ErrorDetail{
			Location: "body.new_setpoint",
			Message:  err.Error(),
			Value:    i.NewSetpoint,
		}}
	}
	return nil
}

var _ huma.Resolver = (*AdjustSetpointInput)(nil)
