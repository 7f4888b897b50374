package catalog

import "buildline/internal/descriptor"

// AdjustSetpoint describes the zone temperature setpoint adjustment action.
func AdjustSetpoint() *descriptor.ActionDescriptor {
	return &descriptor.ActionDescriptor{
		ActionID:    "adjust-setpoint",
		ActionName:  "Adjust Temperature Setpoint",
		ActionType:  "control",
		Description: "Modify zone temperature setpoint with SHACL validation and ODRL governance",
		Version:     "1.0.0",

		UIFields: []descriptor.UIFieldDescriptor{
			{
				FieldName:    "user_role",
				FieldType:    descriptor.FieldSelect,
				Label:        "User / Role",
				Required:     true,
				DefaultValue: "facility_manager:Facility Manager",
				Options: []descriptor.SelectOption{
					{Value: "operator:Operator", Label: "Operator (Basic Controls)"},
					{Value: "facility_manager:Facility Manager", Label: "Facility Manager (All Controls)"},
					{Value: "energy_manager:Energy Manager", Label: "Energy Manager (Optimization)"},
					{Value: "contractor:Contractor", Label: "Contractor (Limited Access)"},
				},
				HelpText: "Select your role for proper governance enforcement",
			},
			{
				FieldName: "zone_id",
				FieldType: descriptor.FieldZoneSelector,
				Label:     "Zone Selection (Click tile or select)",
				Required:  true,
				HelpText:  "Select target zone for setpoint adjustment",
			},
			{
				FieldName: "new_setpoint",
				FieldType: descriptor.FieldNumber,
				Label:     "New Setpoint (°F)",
				Required:  true,
				MinValue:  f(60.0),
				MaxValue:  f(80.0),
				Step:      f(0.5),
				HelpText:  "Range: 60-80°F for comfort and safety",
			},
			{
				FieldName:    "priority",
				FieldType:    descriptor.FieldSelect,
				Label:        "Priority Level",
				Required:     true,
				DefaultValue: "medium",
				Options: []descriptor.SelectOption{
					{Value: "low", Label: "Low - Scheduled adjustment"},
					{Value: "medium", Label: "Medium - Normal operation"},
					{Value: "high", Label: "High - Comfort issue"},
					{Value: "emergency", Label: "Emergency - Critical response"},
				},
				HelpText: "Emergency priority requires manager authorization",
			},
			{
				FieldName:   "reason",
				FieldType:   descriptor.FieldText,
				Label:       "Reason",
				Required:    false,
				Placeholder: "e.g., Occupant complaint",
				HelpText:    "Optional explanation for audit trail",
			},
		},
		UILayout: descriptor.LayoutSingleColumn,

		GraphNodes: []descriptor.GraphNodeDescriptor{
			{
				NodeID:      "action:adjust-setpoint",
				NodeType:    descriptor.NodeAction,
				Label:       "Adjust Temperature Setpoint",
				Description: "Modify zone temperature setpoint",
				Relationships: []descriptor.GraphRelationship{
					{Target: "constraint:setpoint-range", Type: "has_constraint"},
					{Target: "constraint:max-delta", Type: "has_constraint"},
					{Target: "constraint:operator-limit", Type: "has_constraint"},
					{Target: "policy:operator-restrictions", Type: "governed_by"},
					{Target: "policy:contractor-restrictions", Type: "governed_by"},
					{Target: "brick:Temperature_Setpoint", Type: "targets"},
				},
			},
			{
				NodeID:      "constraint:setpoint-range",
				NodeType:    descriptor.NodeConstraint,
				Label:       "Setpoint Range: 60-80°F",
				Description: "SHACL: Absolute temperature limits for comfort and safety",
			},
			{
				NodeID:      "constraint:max-delta",
				NodeType:    descriptor.NodeConstraint,
				Label:       "Max Delta: 15°F",
				Description: "SHACL: Maximum temperature change in single adjustment",
			},
			{
				NodeID:      "constraint:operator-limit",
				NodeType:    descriptor.NodeConstraint,
				Label:       "Operator Limit: 5°F",
				Description: "SHACL: Reduced limit for operator role",
			},
			{
				NodeID:      "policy:operator-restrictions",
				NodeType:    descriptor.NodePolicy,
				Label:       "Operator: 5°F Max Change",
				Description: "ODRL: Operators limited to 5°F adjustments",
			},
			{
				NodeID:      "policy:contractor-restrictions",
				NodeType:    descriptor.NodePolicy,
				Label:       "Contractor: No Emergency Priority",
				Description: "ODRL: Contractors cannot use emergency priority",
			},
		},

		AuditDescriptor: descriptor.AuditLogDescriptor{
			SummaryTemplate: "{zone_id} setpoint changed to {new_setpoint}°F (Priority: {priority})",
			Icon:            "🌡️",
			DetailFields: []descriptor.AuditDetailField{
				{Param: "zone_id", Label: "Target Zone", Format: "text"},
				{Param: "new_setpoint", Label: "New Setpoint", Format: "temperature"},
				{Param: "priority", Label: "Priority Level", Format: "text"},
				{Param: "reason", Label: "Reason", Format: "text"},
			},
			Formatters: map[string]string{
				"priority": "capitalize",
			},
		},

		SHACLConstraints: []string{
			"Setpoint range: 60-80°F (comfort)",
			"Max delta: 5°F for operators, 15°F for managers",
			"Server room protection: 15-25°C critical range",
			"Occupancy constraints enforced",
		},

		ODRLPolicies: map[string]descriptor.ODRLPolicy{
			descriptor.RoleOperator: {
				Permitted: true,
				Constraints: []string{
					"max_delta: 5°F",
					"priority: low/medium only",
					"no_emergency_override: true",
				},
			},
			descriptor.RoleFacilityManager: {
				Permitted: true,
				Constraints: []string{
					"max_delta: 15°F",
					"priority: all levels",
					"emergency_override: true",
				},
			},
			descriptor.RoleEnergyManager: {
				Permitted: true,
				Constraints: []string{
					"max_delta: 15°F",
					"priority: all levels",
					"emergency_override: true",
					"optimization_access: true",
				},
			},
			descriptor.RoleContractor: {
				Permitted: true,
				Constraints: []string{
					"max_delta: 15°F",
					"priority: low/medium only",
					"no_emergency_override: true",
					"temporary_access: true",
				},
			},
		},

		TargetType:          "brick:Temperature_Setpoint",
		RequiredPermissions: []string{"zone:write", "setpoint:modify"},
		SideEffects:         []string{"hvac:mode_change", "power:consumption_change", "audit:log"},
		HandlerFunction:     "handleAdjustSetpoint",
		ValidationClass:     "AdjustSetpointInput",
	}
}
