package descriptor_test

import (
	"testing"

	"buildline/internal/descriptor"
)

func testDescriptor(id string) *descriptor.ActionDescriptor {
	return &descriptor.ActionDescriptor{
		ActionID:    id,
		ActionName:  "Test Action",
		ActionType:  "control",
		Description: "fixture",
		Version:     "1.0.0",
		UIFields: []descriptor.UIFieldDescriptor{
			{FieldName: "zone_id", FieldType: descriptor.FieldZoneSelector, Label: "Zone", Required: true},
		},
		UILayout: descriptor.LayoutSingleColumn,
		GraphNodes: []descriptor.GraphNodeDescriptor{
			{
				NodeID:   "action:" + id,
				NodeType: descriptor.NodeAction,
				Label:    "Test Action",
				Relationships: []descriptor.GraphRelationship{
					{Target: "property:zone_state", Type: "affects"},
				},
			},
		},
		AuditDescriptor: descriptor.AuditLogDescriptor{
			SummaryTemplate: "{zone_id} touched",
			DetailFields:    []descriptor.AuditDetailField{{Param: "zone_id", Label: "Zone", Format: "text"}},
		},
		SHACLConstraints: []string{"zone_id must reference a known zone"},
		ODRLPolicies: map[string]descriptor.ODRLPolicy{
			descriptor.RoleOperator:        {Permitted: true},
			descriptor.RoleFacilityManager: {Permitted: true},
			descriptor.RoleEnergyManager:   {Permitted: true},
			descriptor.RoleContractor:      {Permitted: false, Reason: "requires operational authority"},
		},
		TargetType:          "brick:Zone",
		RequiredPermissions: []string{"zone.write"},
		SideEffects:         []string{"zone_state_change"},
		HandlerFunction:     "handleTest",
		ValidationClass:     "TestInput",
	}
}

func TestRegisterOverwritesSilently(t *testing.T) {
	reg := descriptor.NewRegistry()
	reg.Register(testDescriptor("test-action"))

	second := testDescriptor("test-action")
	second.Version = "2.0.0"
	reg.Register(second)

	if n := len(reg.ListAll()); n != 1 {
		t.Fatalf("expected 1 descriptor after re-registration, got %d", n)
	}
	got := reg.Get("test-action")
	if got == nil || got.Version != "2.0.0" {
		t.Fatalf("Get did not return the latest registration: %+v", got)
	}
}

func TestValidateCompletenessComplete(t *testing.T) {
	reg := descriptor.NewRegistry()
	reg.Register(testDescriptor("test-action"))
	ok, errs := reg.ValidateCompleteness("test-action")
	if !ok || len(errs) != 0 {
		t.Fatalf("expected complete, got %v", errs)
	}
}

func TestValidateCompletenessMissingSections(t *testing.T) {
	cases := []struct {
		name  string
		strip func(d *descriptor.ActionDescriptor)
		want  string
	}{
		{"ui_fields", func(d *descriptor.ActionDescriptor) { d.UIFields = nil }, "No UI fields defined"},
		{"graph_nodes", func(d *descriptor.ActionDescriptor) { d.GraphNodes = nil }, "No graph nodes defined"},
		{"audit_summary", func(d *descriptor.ActionDescriptor) { d.AuditDescriptor.SummaryTemplate = "" }, "No audit summary template defined"},
		{"shacl_constraints", func(d *descriptor.ActionDescriptor) { d.SHACLConstraints = nil }, "No SHACL constraints defined"},
		{"odrl_policies", func(d *descriptor.ActionDescriptor) { d.ODRLPolicies = nil }, "No ODRL policies defined"},
		{"handler_function", func(d *descriptor.ActionDescriptor) { d.HandlerFunction = "" }, "No handler function specified"},
		{"validation_class", func(d *descriptor.ActionDescriptor) { d.ValidationClass = "" }, "No validation class specified"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			reg := descriptor.NewRegistry()
			d := testDescriptor("test-action")
			tc.strip(d)
			reg.Register(d)
			ok, errs := reg.ValidateCompleteness("test-action")
			if ok {
				t.Fatal("expected incomplete")
			}
			if len(errs) != 1 || errs[0] != tc.want {
				t.Fatalf("errors = %v, want [%q]", errs, tc.want)
			}
		})
	}
}
