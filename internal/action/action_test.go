package action_test

import (
	"math"
	"strings"
	"testing"

	"buildline/internal/action"
)

func errStrings(errs []error) []string {
	out := make([]string, 0, len(errs))
	for _, err := range errs {
		out = append(out, err.Error())
	}
	return out
}

func TestAdjustSetpointValid(t *testing.T) {
	in, errs := action.ValidateAdjustSetpoint(map[string]any{
		"zone_id":      "Z001",
		"new_setpoint": 72.0,
		"reason":       "occupant request",
	})
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errStrings(errs))
	}
	if in.Priority != "medium" {
		t.Fatalf("default priority not applied: %q", in.Priority)
	}
	if in.MaxChange != 5.0 {
		t.Fatalf("default max_change not applied: %v", in.MaxChange)
	}
}

func TestAdjustSetpointComfortRange(t *testing.T) {
	_, errs := action.ValidateAdjustSetpoint(map[string]any{
		"zone_id":      "Z001",
		"new_setpoint": 59.0,
		"reason":       "deep night setback",
	})
	if len(errs) != 1 {
		t.Fatalf("expected one error, got %v", errStrings(errs))
	}
	want := "Setpoint 59°F is outside typical comfort range (60-80°F). Use high/emergency priority if intentional."
	if errs[0].Error() != want {
		t.Fatalf("unexpected error: %q", errs[0])
	}
}

func TestAdjustSetpointMaxChange(t *testing.T) {
	_, errs := action.ValidateAdjustSetpoint(map[string]any{
		"zone_id":          "Z001",
		"new_setpoint":     78.0,
		"current_setpoint": 70.0,
		"reason":           "warm-up",
	})
	if len(errs) != 1 {
		t.Fatalf("expected one error, got %v", errStrings(errs))
	}
	want := "Setpoint change of 8°F exceeds max_change limit of 5°F"
	if errs[0].Error() != want {
		t.Fatalf("unexpected error: %q", errs[0])
	}

	// A wider max_change admits the same move.
	in, errs := action.ValidateAdjustSetpoint(map[string]any{
		"zone_id":          "Z001",
		"new_setpoint":     78.0,
		"current_setpoint": 70.0,
		"max_change":       10.0,
		"reason":           "warm-up",
	})
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errStrings(errs))
	}
	if in.MaxChange != 10.0 {
		t.Fatalf("explicit max_change lost: %v", in.MaxChange)
	}
}

func TestAdjustSetpointSchemaBounds(t *testing.T) {
	_, errs := action.ValidateAdjustSetpoint(map[string]any{
		"zone_id":      "Z001",
		"new_setpoint": 95.0,
		"reason":       "sauna",
	})
	if len(errs) == 0 {
		t.Fatal("expected schema error for setpoint above 90")
	}
	// Schema failures are reported before the comfort-range rule runs.
	for _, e := range errs {
		if strings.Contains(e.Error(), "comfort range") {
			t.Fatalf("cross-field rule ran on schema-invalid input: %q", e)
		}
	}
}

func TestLoadShedValidWithDefaults(t *testing.T) {
	in, errs := action.ValidateLoadShed(map[string]any{
		"zone_ids":         []any{"Z001", "Z002"},
		"shed_level":       3,
		"duration_minutes": 60,
		"reason":           "demand response event",
	})
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errStrings(errs))
	}
	if in.MinComfortTemp != 68.0 || in.MaxComfortTemp != 78.0 {
		t.Fatalf("comfort defaults not applied: %v %v", in.MinComfortTemp, in.MaxComfortTemp)
	}
}

func TestLoadShedNativeGoValues(t *testing.T) {
	// In-process callers hand over Go ints and typed slices rather than the
	// JSON-decoded float64/[]any forms; both must validate identically.
	in, errs := action.ValidateLoadShed(map[string]any{
		"zone_ids":         []string{"Z001", "Z002", "Z003"},
		"shed_level":       3,
		"duration_minutes": 60,
		"equipment_types":  []string{"hvac", "lighting"},
		"reason":           "demand response event",
	})
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errStrings(errs))
	}
	if in.ShedLevel != 3 || in.DurationMinutes != 60 {
		t.Fatalf("decoded input mismatch: %+v", in)
	}
	if len(in.ZoneIDs) != 3 || len(in.EquipmentTypes) != 2 {
		t.Fatalf("slices lost in decode: %+v", in)
	}
}

func TestLoadShedZoneIDHygiene(t *testing.T) {
	_, errs := action.ValidateLoadShed(map[string]any{
		"zone_ids":         []any{"Z001", "  "},
		"shed_level":       2,
		"duration_minutes": 30,
		"reason":           "dr event",
	})
	if len(errs) != 1 || errs[0].Error() != "Zone IDs cannot be empty or whitespace" {
		t.Fatalf("unexpected errors: %v", errStrings(errs))
	}

	_, errs = action.ValidateLoadShed(map[string]any{
		"zone_ids":         []any{"Z001", "Z001"},
		"shed_level":       2,
		"duration_minutes": 30,
		"reason":           "dr event",
	})
	if len(errs) != 1 || errs[0].Error() != "Duplicate zone IDs not allowed" {
		t.Fatalf("unexpected errors: %v", errStrings(errs))
	}
}

func TestLoadShedAggressiveLevelDurationCap(t *testing.T) {
	_, errs := action.ValidateLoadShed(map[string]any{
		"zone_ids":         []any{"Z001"},
		"shed_level":       5,
		"duration_minutes": 150,
		"reason":           "grid emergency",
	})
	if len(errs) != 1 {
		t.Fatalf("expected one error, got %v", errStrings(errs))
	}
	want := "Shed level 5 should not exceed 120 minutes duration due to occupant comfort concerns"
	if errs[0].Error() != want {
		t.Fatalf("unexpected error: %q", errs[0])
	}

	// Level 3 at the same duration is fine.
	_, errs = action.ValidateLoadShed(map[string]any{
		"zone_ids":         []any{"Z001"},
		"shed_level":       3,
		"duration_minutes": 150,
		"reason":           "grid emergency",
	})
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errStrings(errs))
	}
}

func TestLoadShedComfortBand(t *testing.T) {
	_, errs := action.ValidateLoadShed(map[string]any{
		"zone_ids":         []any{"Z001"},
		"shed_level":       2,
		"duration_minutes": 60,
		"min_comfort_temp": 72.0,
		"max_comfort_temp": 75.0,
		"reason":           "dr event",
	})
	if len(errs) != 1 {
		t.Fatalf("expected one error, got %v", errStrings(errs))
	}
	want := "Comfort temperature range (3°F) is too narrow. Minimum range is 5°F."
	if errs[0].Error() != want {
		t.Fatalf("unexpected error: %q", errs[0])
	}
}

func TestLoadShedPriorityZoneOverlap(t *testing.T) {
	_, errs := action.ValidateLoadShed(map[string]any{
		"zone_ids":         []any{"Z002", "Z001"},
		"shed_level":       2,
		"duration_minutes": 60,
		"priority_zones":   []any{"Z001", "Z003"},
		"reason":           "dr event",
	})
	if len(errs) != 1 {
		t.Fatalf("expected one error, got %v", errStrings(errs))
	}
	want := "Priority zones cannot be in shed zone list: Z001"
	if errs[0].Error() != want {
		t.Fatalf("unexpected error: %q", errs[0])
	}
}

func TestPreCoolingOvernightWindow(t *testing.T) {
	in, errs := action.ValidatePreCooling(map[string]any{
		"zone_ids":        []any{"Z001"},
		"target_temp":     68.0,
		"start_time":      "23:00",
		"occupancy_start": "07:00",
		"reason":          "morning peak shaving",
	})
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errStrings(errs))
	}
	window, err := in.WindowMinutes()
	if err != nil {
		t.Fatal(err)
	}
	if window != 480 {
		t.Fatalf("expected 480 minute window, got %d", window)
	}
	if in.MaxRateDelta != 5.0 || in.Priority != "medium" || !in.EnableAdaptive {
		t.Fatalf("defaults not applied: %+v", in)
	}
}

func TestPreCoolingWindowTooShort(t *testing.T) {
	_, errs := action.ValidatePreCooling(map[string]any{
		"zone_ids":        []any{"Z001"},
		"target_temp":     68.0,
		"start_time":      "07:45",
		"occupancy_start": "08:00",
		"reason":          "late start",
	})
	if len(errs) != 1 {
		t.Fatalf("expected one error, got %v", errStrings(errs))
	}
	want := "Pre-cooling window too short (15 minutes). Minimum 30 minutes required between start_time and occupancy_start."
	if errs[0].Error() != want {
		t.Fatalf("unexpected error: %q", errs[0])
	}
}

func TestPreCoolingWindowTooLong(t *testing.T) {
	_, errs := action.ValidatePreCooling(map[string]any{
		"zone_ids":        []any{"Z001"},
		"target_temp":     68.0,
		"start_time":      "20:00",
		"occupancy_start": "08:00",
		"reason":          "all-night run",
	})
	if len(errs) != 1 {
		t.Fatalf("expected one error, got %v", errStrings(errs))
	}
	want := "Pre-cooling window too long (720 minutes). Maximum 8 hours (480 minutes) allowed."
	if errs[0].Error() != want {
		t.Fatalf("unexpected error: %q", errs[0])
	}
}

func TestPreCoolingTargetTooAggressive(t *testing.T) {
	_, errs := action.ValidatePreCooling(map[string]any{
		"zone_ids":        []any{"Z001"},
		"target_temp":     61.0,
		"start_time":      "05:00",
		"occupancy_start": "08:00",
		"reason":          "deep chill",
	})
	if len(errs) != 1 {
		t.Fatalf("expected one error, got %v", errStrings(errs))
	}
	want := "Target temperature 61°F is too aggressive for pre-cooling. Minimum 62°F to avoid excessive energy waste."
	if errs[0].Error() != want {
		t.Fatalf("unexpected error: %q", errs[0])
	}
}

func TestPreCoolingRejectsEmergencyPriority(t *testing.T) {
	_, errs := action.ValidatePreCooling(map[string]any{
		"zone_ids":        []any{"Z001"},
		"target_temp":     68.0,
		"start_time":      "05:00",
		"occupancy_start": "08:00",
		"priority":        "emergency",
		"reason":          "rush",
	})
	if len(errs) == 0 {
		t.Fatal("expected schema error for emergency priority")
	}
}

func TestPreCoolingOutdoorTempOrdering(t *testing.T) {
	_, errs := action.ValidatePreCooling(map[string]any{
		"zone_ids":         []any{"Z001"},
		"target_temp":      68.0,
		"start_time":       "05:00",
		"occupancy_start":  "08:00",
		"min_outdoor_temp": 80.0,
		"max_outdoor_temp": 70.0,
		"reason":           "bad band",
	})
	if len(errs) != 1 {
		t.Fatalf("expected one error, got %v", errStrings(errs))
	}
	want := "min_outdoor_temp (80°F) must be less than max_outdoor_temp (70°F)"
	if errs[0].Error() != want {
		t.Fatalf("unexpected error: %q", errs[0])
	}
}

func TestValidateParamsUnknownType(t *testing.T) {
	msgs := action.ValidateParams("open-windows", map[string]any{})
	if len(msgs) != 1 || msgs[0] != "unknown action type: open-windows" {
		t.Fatalf("unexpected messages: %v", msgs)
	}
}

func TestInputSchemas(t *testing.T) {
	schemas := action.InputSchemas()
	for _, typ := range action.Types {
		s := schemas[typ]
		if s == nil {
			t.Fatalf("missing schema for %s", typ)
		}
		// Exported schemas are resolved, not $ref stubs into the registry.
		if s.Ref != "" {
			t.Fatalf("schema for %s is a ref: %s", typ, s.Ref)
		}
		if len(s.Properties) == 0 {
			t.Fatalf("schema for %s has no properties", typ)
		}
	}
	setpoint := schemas[action.TypeAdjustSetpoint].Properties["new_setpoint"]
	if setpoint == nil || setpoint.Minimum == nil || *setpoint.Minimum != 50 {
		t.Fatalf("new_setpoint bounds not exported: %+v", setpoint)
	}
	if action.InputSchema("nope") != nil {
		t.Fatal("expected nil schema for unknown type")
	}
}

func TestEstimateShedSavings(t *testing.T) {
	cases := []struct {
		level int
		want  float64
	}{
		{1, 0.20}, {2, 0.35}, {3, 0.50}, {4, 0.65}, {5, 0.80},
		{9, 0.50}, // unknown level falls back to level 3
	}
	for _, tc := range cases {
		got := action.EstimateShedSavings(4, tc.level, 10.0)
		want := 4 * 10.0 * tc.want
		if math.Abs(got-want) > 1e-9 {
			t.Fatalf("level %d: got %v, want %v", tc.level, got, want)
		}
	}
	if f := action.ShedFraction(3); f != 0.50 {
		t.Fatalf("ShedFraction(3) = %v", f)
	}
}

func TestEstimatePreCoolingCost(t *testing.T) {
	// 2 zones, 4°F delta, 3 hours, $0.12/kWh: 2*4*3*3 kWh * 0.12 = $8.64
	got := action.EstimatePreCoolingCost(2, 4.0, 3.0, 0.12)
	if math.Abs(got-8.64) > 1e-9 {
		t.Fatalf("got %v, want 8.64", got)
	}
}

func TestEstimatePeakSavings(t *testing.T) {
	got := action.EstimatePeakSavings(3, 15.0, 2.0)
	if math.Abs(got-90.0) > 1e-9 {
		t.Fatalf("got %v, want 90", got)
	}
}
