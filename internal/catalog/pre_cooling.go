package catalog

import "buildline/internal/descriptor"

// PreCooling describes the peak-demand optimization pre-cooling action.
func PreCooling() *descriptor.ActionDescriptor {
	return &descriptor.ActionDescriptor{
		ActionID:    "pre-cooling",
		ActionName:  "Pre-Cooling - Optimize Peak Demand",
		ActionType:  "optimization",
		Description: "Strategic pre-cooling during off-peak hours to reduce peak demand costs",
		Version:     "1.0.0",

		UIFields: []descriptor.UIFieldDescriptor{
			{
				FieldName:    "user_role",
				FieldType:    descriptor.FieldSelect,
				Label:        "User / Role",
				Required:     true,
				DefaultValue: "facility_manager:Facility Manager",
				Options: []descriptor.SelectOption{
					{Value: "operator:Operator", Label: "Operator (No Access)"},
					{Value: "facility_manager:Facility Manager", Label: "Facility Manager (3 zones, $50 limit)"},
					{Value: "energy_manager:Energy Manager", Label: "Energy Manager (Full Access)"},
					{Value: "contractor:Contractor", Label: "Contractor (No Access)"},
				},
				HelpText: "Pre-cooling requires optimization expertise",
			},
			{
				FieldName: "zone_ids",
				FieldType: descriptor.FieldMultiSelect,
				Label:     "Select Zones for Pre-Cooling",
				Required:  true,
				Options: []descriptor.SelectOption{
					{Value: "dynamic", Label: "Populated from available zones"},
				},
				HelpText: "Facility Mgr: max 3 zones",
			},
			{
				FieldName:    "target_temp",
				FieldType:    descriptor.FieldNumber,
				Label:        "Target Temperature (°F)",
				Required:     true,
				DefaultValue: 65.0,
				MinValue:     f(60.0),
				MaxValue:     f(75.0),
				Step:         f(0.5),
				HelpText:     "Range: 60-75°F for pre-cooling comfort",
			},
			{
				FieldName:    "start_time",
				FieldType:    descriptor.FieldTime,
				Label:        "Start Time (HH:MM, 24-hour)",
				Required:     true,
				DefaultValue: "05:00",
				Pattern:      `^([01]\d|2[0-3]):([0-5]\d)$`,
				Placeholder:  "05:00",
				HelpText:     "When to begin pre-cooling",
			},
			{
				FieldName:    "occupancy_start",
				FieldType:    descriptor.FieldTime,
				Label:        "Occupancy Start (HH:MM, 24-hour)",
				Required:     true,
				DefaultValue: "08:00",
				Pattern:      `^([01]\d|2[0-3]):([0-5]\d)$`,
				Placeholder:  "08:00",
				HelpText:     "When occupants arrive",
			},
			{
				FieldName:    "max_rate_delta",
				FieldType:    descriptor.FieldNumber,
				Label:        "Max Cooling Rate (°F/hr)",
				Required:     true,
				DefaultValue: 5.0,
				MinValue:     f(1.0),
				MaxValue:     f(10.0),
				Step:         f(0.5),
				HelpText:     "1-10°F/hr cooling rate limit",
			},
			{
				FieldName:    "electricity_rate",
				FieldType:    descriptor.FieldNumber,
				Label:        "Electricity Rate ($/kWh)",
				Required:     true,
				DefaultValue: 0.12,
				MinValue:     f(0.01),
				MaxValue:     f(1.0),
				Step:         f(0.01),
				HelpText:     "Cost per kilowatt-hour for cost estimation",
			},
			{
				FieldName:    "enable_adaptive",
				FieldType:    descriptor.FieldCheckbox,
				Label:        "Enable Adaptive Learning",
				Required:     false,
				DefaultValue: true,
				HelpText:     "Learn from historical patterns to optimize",
			},
			{
				FieldName:   "reason",
				FieldType:   descriptor.FieldText,
				Label:       "Reason",
				Required:    true,
				Placeholder: "e.g., Peak demand reduction",
				HelpText:    "Explanation for pre-cooling action",
			},
		},
		UILayout: descriptor.LayoutSingleColumn,

		GraphNodes: []descriptor.GraphNodeDescriptor{
			{
				NodeID:      "action:pre-cooling",
				NodeType:    descriptor.NodeAction,
				Label:       "Pre-Cooling Optimization",
				Description: "Peak demand reduction through strategic cooling",
				Relationships: []descriptor.GraphRelationship{
					{Target: "constraint:target-temp-range", Type: "has_constraint"},
					{Target: "constraint:time-window", Type: "has_constraint"},
					{Target: "constraint:cooling-rate", Type: "has_constraint"},
					{Target: "constraint:economics-validation", Type: "has_constraint"},
					{Target: "policy:operator-denied", Type: "governed_by"},
					{Target: "policy:fm-zone-limit", Type: "governed_by"},
					{Target: "policy:fm-cost-limit", Type: "governed_by"},
					{Target: "policy:contractor-denied", Type: "governed_by"},
					{Target: "brick:HVAC_System", Type: "targets"},
				},
			},
			{
				NodeID:      "constraint:target-temp-range",
				NodeType:    descriptor.NodeConstraint,
				Label:       "Target Temp: 60-75°F (≥62°F for economics)",
				Description: "SHACL: Temperature limits with economic validation",
			},
			{
				NodeID:      "constraint:time-window",
				NodeType:    descriptor.NodeConstraint,
				Label:       "Time Window: 30 min - 8 hours",
				Description: "SHACL: Pre-cooling window constraints",
			},
			{
				NodeID:      "constraint:cooling-rate",
				NodeType:    descriptor.NodeConstraint,
				Label:       "Cooling Rate: 1-10°F/hr",
				Description: "SHACL: Maximum cooling rate for equipment protection",
			},
			{
				NodeID:      "constraint:economics-validation",
				NodeType:    descriptor.NodeConstraint,
				Label:       "Economics: Target ≥62°F",
				Description: "SHACL: Prevent excessive energy waste",
			},
			{
				NodeID:      "policy:operator-denied",
				NodeType:    descriptor.NodePolicy,
				Label:       "Operator: No Access",
				Description: "ODRL: Requires optimization expertise",
			},
			{
				NodeID:      "policy:fm-zone-limit",
				NodeType:    descriptor.NodePolicy,
				Label:       "Facility Manager: Max 3 Zones",
				Description: "ODRL: Zone count limitation",
			},
			{
				NodeID:      "policy:fm-cost-limit",
				NodeType:    descriptor.NodePolicy,
				Label:       "Facility Manager: $50 Cost Limit",
				Description: "ODRL: Budget constraint",
			},
			{
				NodeID:      "policy:contractor-denied",
				NodeType:    descriptor.NodePolicy,
				Label:       "Contractor: No Access",
				Description: "ODRL: Requires building system knowledge",
			},
		},

		AuditDescriptor: descriptor.AuditLogDescriptor{
			SummaryTemplate: "{zone_count} zones pre-cooled to {target_temp}°F (Cost: {estimated_cost})",
			Icon:            "❄️",
			DetailFields: []descriptor.AuditDetailField{
				{Param: "target_temp", Label: "Target Temperature", Format: "temperature"},
				{Param: "start_time", Label: "Start Time", Format: "time"},
				{Param: "occupancy_start", Label: "Occupancy Start", Format: "time"},
				{Param: "max_rate_delta", Label: "Max Cooling Rate", Format: "cooling_rate"},
				{Param: "electricity_rate", Label: "Electricity Rate", Format: "currency_rate"},
				{Param: "estimated_cost", Label: "Estimated Cost", Format: "currency"},
				{Param: "enable_adaptive", Label: "Adaptive Learning", Format: "boolean"},
				{Param: "zones", Label: "Zones", Format: "zone_list"},
				{Param: "reason", Label: "Reason", Format: "text"},
			},
			Formatters: map[string]string{
				"electricity_rate": "currency_rate",
				"estimated_cost":   "currency",
				"enable_adaptive":  "boolean_enabled",
				"zones":            "zone_list",
			},
		},

		SHACLConstraints: []string{
			"Target temperature: 60-75°F (≥62°F for economics)",
			"Time window: 30 minutes to 8 hours",
			"Max cooling rate: 1-10°F/hr",
			"No duplicate zones, no empty zone IDs",
			"Time format: HH:MM (24-hour)",
			"Overnight windows supported",
		},

		ODRLPolicies: map[string]descriptor.ODRLPolicy{
			descriptor.RoleOperator: {
				Permitted: false,
				Reason:    "Pre-cooling requires optimization expertise",
			},
			descriptor.RoleFacilityManager: {
				Permitted: true,
				Constraints: []string{
					"max_zones: 3",
					"max_cost: $50",
					"priority: low/medium only",
				},
			},
			descriptor.RoleEnergyManager: {
				Permitted: true,
				Constraints: []string{
					"max_zones: unlimited",
					"max_cost: $500",
					"priority: low/medium/high",
					"optimization_authority: true",
				},
			},
			descriptor.RoleContractor: {
				Permitted: false,
				Reason:    "Pre-cooling requires building system knowledge",
			},
		},

		TargetType:          "brick:HVAC_System",
		RequiredPermissions: []string{"zone:write", "hvac:control", "demand:optimize", "pre-cooling:execute"},
		SideEffects:         []string{"power:consumption_increase", "peak:demand_reduction", "cost:savings", "comfort:optimization"},
		HandlerFunction:     "handlePreCooling",
		ValidationClass:     "PreCoolingInput",
		CostCalculator:      "EstimatePreCoolingCost",
	}
}
