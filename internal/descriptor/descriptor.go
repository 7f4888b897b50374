// Package descriptor defines the self-describing metadata model for
// building-automation actions. A descriptor carries everything needed to
// render an action's input form, place it in the knowledge graph, format its
// audit entries, and enforce role-based governance — independent of the code
// that eventually executes it.
package descriptor

// Field types for UI form generation.
const (
	FieldText         = "text"
	FieldNumber       = "number"
	FieldSelect       = "select"
	FieldCheckbox     = "checkbox"
	FieldTime         = "time"
	FieldMultiSelect  = "multi-select"
	FieldZoneSelector = "zone-selector"
)

// Graph node types.
const (
	NodeAction     = "action"
	NodeConstraint = "constraint"
	NodePolicy     = "policy"
	NodeProperty   = "property"
	NodeEffect     = "effect"
)

// Form layouts.
const (
	LayoutSingleColumn = "single-column"
	LayoutTwoColumn    = "two-column"
	LayoutGrid         = "grid"
)

// The four standard governance roles. Every descriptor's ODRL policy map
// must carry an entry for each.
const (
	RoleOperator        = "operator"
	RoleFacilityManager = "facility_manager"
	RoleEnergyManager   = "energy_manager"
	RoleContractor      = "contractor"
)

// StandardRoles lists the roles every descriptor must govern.
var StandardRoles = []string{RoleOperator, RoleFacilityManager, RoleEnergyManager, RoleContractor}

// SelectOption is one entry of a select/multi-select field.
type SelectOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// UIFieldDescriptor describes a single form field with all rendering
// metadata. Numeric constraints apply only to number fields, text
// constraints only to text fields, and options only to select fields.
type UIFieldDescriptor struct {
	FieldName string `json:"field_name"`
	FieldType string `json:"field_type" enum:"text,number,select,checkbox,time,multi-select,zone-selector"`
	Label     string `json:"label"`
	Required  bool   `json:"required"`

	DefaultValue any    `json:"default_value,omitempty"`
	Placeholder  string `json:"placeholder,omitempty"`
	HelpText     string `json:"help_text,omitempty"`

	// Number constraints.
	MinValue *float64 `json:"min_value,omitempty"`
	MaxValue *float64 `json:"max_value,omitempty"`
	Step     *float64 `json:"step,omitempty"`

	// Text constraints.
	Pattern   string `json:"pattern,omitempty"`
	MinLength *int   `json:"min_length,omitempty"`
	MaxLength *int   `json:"max_length,omitempty"`

	// Select/multi-select options, in display order.
	Options []SelectOption `json:"options,omitempty"`

	// Conditional display: show only when DependsOn has DependsValue.
	DependsOn    string `json:"depends_on,omitempty"`
	DependsValue any    `json:"depends_value,omitempty"`

	// Layout hints.
	GridColumn string `json:"grid_column,omitempty"`
	CSSClass   string `json:"css_class,omitempty"`
}

// GraphRelationship is a directed edge from the owning node to Target.
// Target may name a node defined by another descriptor; cross-descriptor
// references are allowed and not resolved here.
type GraphRelationship struct {
	Target string `json:"target"`
	Type   string `json:"type"`
}

// GraphNodeDescriptor describes how an action appears in the knowledge graph.
type GraphNodeDescriptor struct {
	NodeID        string              `json:"node_id"`
	NodeType      string              `json:"node_type" enum:"action,constraint,policy,property,effect"`
	Label         string              `json:"label"`
	Description   string              `json:"description,omitempty"`
	Color         string              `json:"color,omitempty"`
	Relationships []GraphRelationship `json:"relationships,omitempty"`
}

// AuditDetailField names one input field shown in detailed audit views.
type AuditDetailField struct {
	Param  string `json:"param"`
	Label  string `json:"label"`
	Format string `json:"format"`
}

// AuditLogDescriptor describes how to render an action in the audit log.
type AuditLogDescriptor struct {
	// SummaryTemplate contains {param} placeholders referencing input
	// field names or computed values.
	SummaryTemplate string             `json:"summary_template"`
	DetailFields    []AuditDetailField `json:"detail_fields"`
	Icon            string             `json:"icon,omitempty"`
	// Formatters maps a field name to a named formatter applied before
	// template substitution, e.g. "temperature" appends °F.
	Formatters map[string]string `json:"formatters,omitempty"`
}

// ODRLPolicy is a per-role permission record. When Permitted is false a
// Reason is mandatory; when true, Constraints optionally lists
// human-readable limits.
type ODRLPolicy struct {
	Permitted   bool     `json:"permitted"`
	Reason      string   `json:"reason,omitempty"`
	Constraints []string `json:"constraints,omitempty"`
}

// ActionDescriptor is the complete self-describing metadata bundle for one
// action kind. Descriptors are built once at startup, registered, and never
// mutated.
type ActionDescriptor struct {
	ActionID    string `json:"action_id"`
	ActionName  string `json:"action_name"`
	ActionType  string `json:"action_type"`
	Description string `json:"description"`
	Version     string `json:"version"`

	UIFields []UIFieldDescriptor `json:"ui_fields"`
	UILayout string              `json:"ui_layout" enum:"single-column,two-column,grid"`

	GraphNodes []GraphNodeDescriptor `json:"graph_nodes"`

	AuditDescriptor AuditLogDescriptor `json:"audit_descriptor"`

	// Human-readable constraint descriptions; documentation only, not
	// machine-enforced at this layer.
	SHACLConstraints []string `json:"shacl_constraints"`

	// Role name -> permission record. Must cover StandardRoles.
	ODRLPolicies map[string]ODRLPolicy `json:"odrl_policies"`

	TargetType          string   `json:"target_type"`
	RequiredPermissions []string `json:"required_permissions"`
	SideEffects         []string `json:"side_effects"`

	HandlerFunction string `json:"handler_function"`
	ValidationClass string `json:"validation_class"`

	CostCalculator string `json:"cost_calculator,omitempty"`
}

// Policy returns the ODRL policy record for a role and whether one exists.
func (d *ActionDescriptor) Policy(role string) (ODRLPolicy, bool) {
	p, ok := d.ODRLPolicies[role]
	return p, ok
}
