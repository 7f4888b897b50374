package rules_test

import (
	"strings"
	"testing"

	"buildline/internal/rules"
)

func TestValidateSetTemperatureOK(t *testing.T) {
	v := rules.New()
	res := v.Validate(rules.CmdSetTemperature, map[string]any{
		"setpoint": 72.0,
		"mode":     "cool",
	})
	if !res.Valid {
		t.Fatalf("expected valid, got errors: %v", res.Errors)
	}
	if len(res.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", res.Warnings)
	}
}

func TestValidateUnsupportedCommand(t *testing.T) {
	v := rules.New()
	res := v.Validate("openWindows", map[string]any{})
	if res.Valid {
		t.Fatal("expected invalid")
	}
	if res.Errors[0] != "Unsupported action type: openWindows" {
		t.Fatalf("unexpected error: %q", res.Errors[0])
	}
}

func TestValidateMissingRequired(t *testing.T) {
	v := rules.New()
	res := v.Validate(rules.CmdSetTemperature, map[string]any{"mode": "heat"})
	if res.Valid {
		t.Fatal("expected invalid")
	}
	if res.Errors[0] != "Missing required parameters: setpoint" {
		t.Fatalf("unexpected error: %q", res.Errors[0])
	}
}

func TestValidateRangeAndEnum(t *testing.T) {
	v := rules.New()
	res := v.Validate(rules.CmdSetTemperature, map[string]any{
		"setpoint": 95.0,
		"mode":     "turbo",
	})
	if res.Valid {
		t.Fatal("expected invalid")
	}
	if len(res.Errors) != 2 {
		t.Fatalf("expected 2 errors, got %v", res.Errors)
	}
	// Params are checked in sorted key order: mode before setpoint.
	if !strings.Contains(res.Errors[0], "'mode' must be one of") {
		t.Fatalf("unexpected first error: %q", res.Errors[0])
	}
	if !strings.Contains(res.Errors[1], "'setpoint' must be <= 85") {
		t.Fatalf("unexpected second error: %q", res.Errors[1])
	}
}

func TestValidateTypeMismatchShortCircuits(t *testing.T) {
	v := rules.New()
	res := v.Validate(rules.CmdSetTemperature, map[string]any{"setpoint": "hot"})
	if res.Valid {
		t.Fatal("expected invalid")
	}
	if res.Errors[0] != "Parameter 'setpoint' must be of type number, got string" {
		t.Fatalf("unexpected error: %q", res.Errors[0])
	}
	// The range checks must not fire on a mistyped value.
	for _, e := range res.Errors {
		if strings.Contains(e, ">=") || strings.Contains(e, "<=") {
			t.Fatalf("range error on mistyped value: %q", e)
		}
	}
}

func TestValidateUnknownParameterWarns(t *testing.T) {
	v := rules.New()
	res := v.Validate(rules.CmdSetOccupancyMode, map[string]any{
		"mode":  "standby",
		"extra": 1,
	})
	if !res.Valid {
		t.Fatalf("expected valid, got errors: %v", res.Errors)
	}
	if len(res.Warnings) != 1 || res.Warnings[0] != "Unknown parameter: extra" {
		t.Fatalf("unexpected warnings: %v", res.Warnings)
	}
}

func TestValidateBooleanAndOptional(t *testing.T) {
	v := rules.New()
	res := v.Validate(rules.CmdEnableEconomizer, map[string]any{
		"enabled":          true,
		"min_outdoor_temp": 45.0,
	})
	if !res.Valid {
		t.Fatalf("expected valid, got errors: %v", res.Errors)
	}
	res = v.Validate(rules.CmdEnableEconomizer, map[string]any{
		"enabled": "yes",
	})
	if res.Valid {
		t.Fatal("expected invalid")
	}
	if res.Errors[0] != "Parameter 'enabled' must be of type boolean, got string" {
		t.Fatalf("unexpected error: %q", res.Errors[0])
	}
}

func TestValidateLightingLevelBounds(t *testing.T) {
	v := rules.New()
	res := v.Validate(rules.CmdSetLightingLevel, map[string]any{
		"level":     120.0,
		"fade_time": -1.0,
	})
	if res.Valid {
		t.Fatal("expected invalid")
	}
	if len(res.Errors) != 2 {
		t.Fatalf("expected 2 errors (fade_time min, level max), got %v", res.Errors)
	}
}

func TestCommandsSorted(t *testing.T) {
	v := rules.New()
	cmds := v.Commands()
	if len(cmds) != 5 {
		t.Fatalf("expected 5 commands, got %d", len(cmds))
	}
	for i := 1; i < len(cmds); i++ {
		if cmds[i-1] >= cmds[i] {
			t.Fatalf("commands not sorted: %v", cmds)
		}
	}
	if _, ok := v.Spec(rules.CmdAdjustVentilation); !ok {
		t.Fatal("missing adjustVentilation spec")
	}
}

func TestNewWithTable(t *testing.T) {
	v := rules.NewWithTable(map[string]rules.CommandSpec{
		"ping": {Required: []string{"target"}, Validations: map[string]rules.ParamRule{
			"target": {Type: rules.TypeString},
		}},
	})
	if res := v.Validate("ping", map[string]any{"target": "Z001"}); !res.Valid {
		t.Fatalf("expected valid, got %v", res.Errors)
	}
}
