package action

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sync"

	"github.com/danielgtaylor/huma/v2"
)

// schemaRegistry holds the generated JSON Schemas for all input models. The
// same registry backs both Schemas() and the standalone validators, so the
// exported schema and the enforced one can never drift apart.
var (
	schemaOnce     sync.Once
	schemaRegistry huma.Registry
	inputSchemas   map[string]*huma.Schema
)

func schemas() (huma.Registry, map[string]*huma.Schema) {
	schemaOnce.Do(func() {
		schemaRegistry = huma.NewMapRegistry("#/components/schemas/", huma.DefaultSchemaNamer)
		// allowRef=false: callers get the resolved schema with its full
		// property set, not a $ref stub into the registry.
		inputSchemas = map[string]*huma.Schema{
			TypeAdjustSetpoint: schemaRegistry.Schema(reflect.TypeOf(AdjustSetpointInput{}), false, "AdjustSetpointInput"),
			TypeLoadShed:       schemaRegistry.Schema(reflect.TypeOf(LoadShedInput{}), false, "LoadShedInput"),
			TypePreCooling:     schemaRegistry.Schema(reflect.TypeOf(PreCoolingInput{}), false, "PreCoolingInput"),
		}
	})
	return schemaRegistry, inputSchemas
}

// InputSchema returns the JSON Schema for an action type's input, or nil
// when the action type is unknown.
func InputSchema(actionType string) *huma.Schema {
	_, m := schemas()
	return m[actionType]
}

// InputSchemas returns the schemas for all action types, keyed by action
// identifier.
func InputSchemas() map[string]*huma.Schema {
	_, m := schemas()
	return m
}

type defaulter interface {
	setDefaults(raw map[string]any)
}

type crossValidator interface {
	Validate() error
}

// validateInput runs the full two-phase validation used outside the HTTP
// request path: schema validation against the raw parameters first, then
// decode, defaults, and the cross-field rules. Schema failures are returned
// all at once; the cross-field phase stops at the first violation.
func validateInput[T any](actionType string, raw map[string]any) (*T, []error) {
	registry, m := schemas()
	schema, ok := m[actionType]
	if !ok {
		return nil, []error{fmt.Errorf("unknown action type: %s", actionType)}
	}

	// huma holds tag-derived constraints (enum members, bounds) in their
	// JSON-decoded form, so the payload must be in that form too: a round
	// trip turns Go ints into float64 and typed slices into []any.
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, []error{err}
	}
	var params map[string]any
	if err := json.Unmarshal(data, &params); err != nil {
		return nil, []error{err}
	}

	res := &huma.ValidateResult{}
	huma.Validate(registry, schema, huma.NewPathBuffer([]byte(""), 0), huma.ModeWriteToServer, params, res)
	if len(res.Errors) > 0 {
		return nil, res.Errors
	}

	out := new(T)
	if err := json.Unmarshal(data, out); err != nil {
		return nil, []error{err}
	}
	if d, ok := any(out).(defaulter); ok {
		d.setDefaults(raw)
	}
	if v, ok := any(out).(crossValidator); ok {
		if err := v.Validate(); err != nil {
			return nil, []error{err}
		}
	}
	return out, nil
}

// ValidateAdjustSetpoint validates raw parameters for a setpoint change.
func ValidateAdjustSetpoint(raw map[string]any) (*AdjustSetpointInput, []error) {
	return validateInput[AdjustSetpointInput](TypeAdjustSetpoint, raw)
}

// ValidateLoadShed validates raw parameters for a load shed.
func ValidateLoadShed(raw map[string]any) (*LoadShedInput, []error) {
	return validateInput[LoadShedInput](TypeLoadShed, raw)
}

// ValidatePreCooling validates raw parameters for a pre-cooling run.
func ValidatePreCooling(raw map[string]any) (*PreCoolingInput, []error) {
	return validateInput[PreCoolingInput](TypePreCooling, raw)
}

// ValidateParams validates raw parameters for any supported action type and
// reports every error as a string. Used by the generic validation endpoint
// and the CLI dry-run path.
func ValidateParams(actionType string, raw map[string]any) []string {
	var errs []error
	switch actionType {
	case TypeAdjustSetpoint:
		_, errs = ValidateAdjustSetpoint(raw)
	case TypeLoadShed:
		_, errs = ValidateLoadShed(raw)
	case TypePreCooling:
		_, errs = ValidatePreCooling(raw)
	default:
		errs = []error{fmt.Errorf("unknown action type: %s", actionType)}
	}
	out := make([]string, 0, len(errs))
	for _, err := range errs {
		out = append(out, err.Error())
	}
	return out
}
