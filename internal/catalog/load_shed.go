package catalog

import "buildline/internal/descriptor"

// LoadShed describes the demand-response lighting reduction action.
func LoadShed() *descriptor.ActionDescriptor {
	return &descriptor.ActionDescriptor{
		ActionID:    "load-shed",
		ActionName:  "Load Shed - Reduce Lighting",
		ActionType:  "demand_response",
		Description: "Demand management through strategic lighting reduction with occupancy protection",
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
					{Value: "facility_manager:Facility Manager", Label: "Facility Manager (Levels 1-3)"},
					{Value: "energy_manager:Energy Manager", Label: "Energy Manager (All Levels)"},
					{Value: "contractor:Contractor", Label: "Contractor (Limited Access)"},
				},
				HelpText: "Energy Manager required for shed levels 4-5",
			},
			{
				FieldName: "zone_ids",
				FieldType: descriptor.FieldMultiSelect,
				Label:     "Select Zones to Shed",
				Required:  true,
				Options: []descriptor.SelectOption{
					{Value: "dynamic", Label: "Populated from available zones"},
				},
				HelpText: "Zones whose lighting will be reduced",
			},
			{
				FieldName:    "shed_level",
				FieldType:    descriptor.FieldNumber,
				Label:        "Shed Level (1-5)",
				Required:     true,
				DefaultValue: 2,
				MinValue:     f(1),
				MaxValue:     f(5),
				Step:         f(1),
				HelpText:     "1=20%, 2=35%, 3=50%, 4=65%, 5=80% reduction",
			},
			{
				FieldName:    "duration_minutes",
				FieldType:    descriptor.FieldNumber,
				Label:        "Duration (minutes)",
				Required:     true,
				DefaultValue: 30,
				MinValue:     f(1),
				MaxValue:     f(240),
				Step:         f(1),
				HelpText:     "Max 240 min total, 120 min for levels 4-5",
			},
			{
				FieldName:   "reason",
				FieldType:   descriptor.FieldText,
				Label:       "Reason",
				Required:    false,
				Placeholder: "e.g., Peak demand event",
				HelpText:    "Optional explanation for audit trail",
			},
		},
		UILayout: descriptor.LayoutSingleColumn,

		GraphNodes: []descriptor.GraphNodeDescriptor{
			{
				NodeID:      "action:load-shed",
				NodeType:    descriptor.NodeAction,
				Label:       "Load Shed - Reduce Lighting",
				Description: "Demand response through lighting control",
				Relationships: []descriptor.GraphRelationship{
					{Target: "constraint:shed-level-range", Type: "has_constraint"},
					{Target: "constraint:duration-limits", Type: "has_constraint"},
					{Target: "constraint:occupancy-protection", Type: "has_constraint"},
					{Target: "policy:energy-manager-level-45", Type: "governed_by"},
					{Target: "brick:Lighting_System", Type: "targets"},
				},
			},
			{
				NodeID:      "constraint:shed-level-range",
				NodeType:    descriptor.NodeConstraint,
				Label:       "Shed Level: 1-5",
				Description: "SHACL: Five discrete reduction levels",
			},
			{
				NodeID:      "constraint:duration-limits",
				NodeType:    descriptor.NodeConstraint,
				Label:       "Duration: Max 240 min (120 min for L4-5)",
				Description: "SHACL: Time limits prevent excessive comfort impact",
			},
			{
				NodeID:      "constraint:occupancy-protection",
				NodeType:    descriptor.NodeConstraint,
				Label:       "Occupancy: Min 40% illumination",
				Description: "SHACL: Minimum lighting for occupied spaces",
			},
			{
				NodeID:      "policy:energy-manager-level-45",
				NodeType:    descriptor.NodePolicy,
				Label:       "Energy Manager: Required for L4-5",
				Description: "ODRL: High shed levels require energy manager authorization",
			},
		},

		AuditDescriptor: descriptor.AuditLogDescriptor{
			SummaryTemplate: "Load shed level {shed_level} for {duration_minutes} minutes",
			Icon:            "⚡",
			DetailFields: []descriptor.AuditDetailField{
				{Param: "shed_level", Label: "Shed Level", Format: "number"},
				{Param: "duration_minutes", Label: "Duration", Format: "minutes"},
				{Param: "zones", Label: "Affected Zones", Format: "list"},
				{Param: "reason", Label: "Reason", Format: "text"},
			},
			Formatters: map[string]string{
				"shed_level": "shed_level",
			},
		},

		SHACLConstraints: []string{
			"Shed level: 1-5 discrete levels",
			"Duration: Max 240 minutes, Level 4-5 max 120 minutes",
			"Occupancy-aware: Min 40% illumination when occupied",
			"Server room exemption enforced",
		},

		ODRLPolicies: map[string]descriptor.ODRLPolicy{
			descriptor.RoleOperator: {
				Permitted: true,
				Constraints: []string{
					"max_shed_level: 3",
					"max_duration: 120",
					"requires_authorization: facility_manager",
				},
			},
			descriptor.RoleFacilityManager: {
				Permitted: true,
				Constraints: []string{
					"max_shed_level: 3",
					"max_duration: 240",
					"emergency_override: true",
				},
			},
			descriptor.RoleEnergyManager: {
				Permitted: true,
				Constraints: []string{
					"max_shed_level: 5",
					"max_duration: 240",
					"level_45_duration: 120",
					"demand_response_authority: true",
				},
			},
			descriptor.RoleContractor: {
				Permitted: false,
				Reason:    "Load shedding requires operational authority",
			},
		},

		TargetType:          "brick:Lighting_System",
		RequiredPermissions: []string{"zone:write", "lighting:control", "demand:manage"},
		SideEffects:         []string{"power:reduction", "comfort:degradation", "occupancy:notification"},
		HandlerFunction:     "handleLoadShed",
		ValidationClass:     "LoadShedInput",
	}
}
