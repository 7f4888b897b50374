package catalog_test

import (
	"testing"

	"buildline/internal/catalog"
	"buildline/internal/descriptor"
)

func newRegistry(t *testing.T) *descriptor.Registry {
	t.Helper()
	reg := descriptor.NewRegistry()
	catalog.Register(reg)
	return reg
}

func TestRegisterInstallsAllActions(t *testing.T) {
	reg := newRegistry(t)
	for _, id := range []string{"adjust-setpoint", "load-shed", "pre-cooling"} {
		if reg.Get(id) == nil {
			t.Fatalf("descriptor %s not registered", id)
		}
	}
	if len(reg.ListAll()) != 3 {
		t.Fatalf("expected 3 descriptors, got %d", len(reg.ListAll()))
	}
}

func TestEveryDescriptorIsComplete(t *testing.T) {
	reg := newRegistry(t)
	for _, d := range reg.ListAll() {
		ok, errs := reg.ValidateCompleteness(d.ActionID)
		if !ok {
			t.Fatalf("%s incomplete: %v", d.ActionID, errs)
		}
	}
}

func TestCompletenessUnknownAction(t *testing.T) {
	reg := newRegistry(t)
	ok, errs := reg.ValidateCompleteness("defrost")
	if ok {
		t.Fatal("expected incomplete")
	}
	if len(errs) != 1 || errs[0] != "Action 'defrost' not found in registry" {
		t.Fatalf("unexpected errors: %v", errs)
	}
}

func TestEveryDescriptorCoversStandardRoles(t *testing.T) {
	reg := newRegistry(t)
	for _, d := range reg.ListAll() {
		for _, role := range descriptor.StandardRoles {
			p, ok := d.Policy(role)
			if !ok {
				t.Fatalf("%s missing policy for role %s", d.ActionID, role)
			}
			if !p.Permitted && p.Reason == "" {
				t.Fatalf("%s denies %s without a reason", d.ActionID, role)
			}
		}
	}
}

func TestODRLDenials(t *testing.T) {
	reg := newRegistry(t)

	p, _ := reg.Get("load-shed").Policy(descriptor.RoleContractor)
	if p.Permitted || p.Reason != "Load shedding requires operational authority" {
		t.Fatalf("unexpected load-shed contractor policy: %+v", p)
	}

	p, _ = reg.Get("pre-cooling").Policy(descriptor.RoleOperator)
	if p.Permitted || p.Reason != "Pre-cooling requires optimization expertise" {
		t.Fatalf("unexpected pre-cooling operator policy: %+v", p)
	}

	p, _ = reg.Get("pre-cooling").Policy(descriptor.RoleContractor)
	if p.Permitted || p.Reason != "Pre-cooling requires building system knowledge" {
		t.Fatalf("unexpected pre-cooling contractor policy: %+v", p)
	}

	// adjust-setpoint is permitted for every role, with constraints.
	for _, role := range descriptor.StandardRoles {
		p, _ = reg.Get("adjust-setpoint").Policy(role)
		if !p.Permitted {
			t.Fatalf("adjust-setpoint should permit %s", role)
		}
		if len(p.Constraints) == 0 {
			t.Fatalf("adjust-setpoint policy for %s carries no constraints", role)
		}
	}
}

func TestAdjustSetpointSummary(t *testing.T) {
	d := catalog.AdjustSetpoint()
	got := d.AuditDescriptor.FormatSummary(map[string]any{
		"zone_id":      "Z001",
		"new_setpoint": 72.0,
		"priority":     "medium",
		"reason":       "occupant request",
	})
	want := "Z001 setpoint changed to 72°F (Priority: Medium)"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestLoadShedSummary(t *testing.T) {
	d := catalog.LoadShed()
	got := d.AuditDescriptor.FormatSummary(map[string]any{
		"shed_level":       3,
		"duration_minutes": 60,
		"zones":            []string{"Z001", "Z002"},
	})
	want := "Load shed level Level 3 (50% reduction) for 60 minutes"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestPreCoolingSummary(t *testing.T) {
	d := catalog.PreCooling()
	got := d.AuditDescriptor.FormatSummary(map[string]any{
		"zone_count":     3,
		"target_temp":    68.0,
		"estimated_cost": 8.64,
	})
	want := "3 zones pre-cooled to 68°F (Cost: $8.64)"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestSummaryLeavesUnknownPlaceholders(t *testing.T) {
	d := catalog.AdjustSetpoint()
	got := d.AuditDescriptor.FormatSummary(map[string]any{"zone_id": "Z001"})
	want := "Z001 setpoint changed to {new_setpoint}°F (Priority: {priority})"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestFormatters(t *testing.T) {
	cases := []struct {
		formatter string
		value     any
		want      string
	}{
		{"temperature", 72.0, "72°F"},
		{"temperature", 71.5, "71.5°F"},
		{"minutes", 30.0, "30 minutes"},
		{"capitalize", "medium", "Medium"},
		{"currency", 8.639, "$8.64"},
		{"currency_rate", 0.12, "$0.12/kWh"},
		{"cooling_rate", 5.0, "5°F/hr"},
		{"boolean", true, "enabled"},
		{"boolean_enabled", false, "disabled"},
		{"zone_list", []string{"Z001", "Z002"}, "Z001, Z002"},
		{"list", []any{"a", "b"}, "a, b"},
		{"shed_level", 4, "Level 4 (65% reduction)"},
		{"shed_level", 7, "Level 7"},
		{"", 60.0, "60"},
	}
	for _, tc := range cases {
		got := descriptor.ApplyFormatter(tc.formatter, tc.value)
		if got != tc.want {
			t.Fatalf("ApplyFormatter(%q, %v) = %q, want %q", tc.formatter, tc.value, got, tc.want)
		}
	}
}

func TestGraphNodesReferenceSelf(t *testing.T) {
	reg := newRegistry(t)
	for _, d := range reg.ListAll() {
		var actionNode bool
		for _, n := range d.GraphNodes {
			if n.NodeID == "action:"+d.ActionID {
				actionNode = true
				if len(n.Relationships) == 0 {
					t.Fatalf("%s action node has no relationships", d.ActionID)
				}
			}
		}
		if !actionNode {
			t.Fatalf("%s has no action graph node", d.ActionID)
		}
	}
}
