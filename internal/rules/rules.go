// Package rules validates wire-level device commands against a declarative
// parameter vocabulary. The vocabulary mirrors what a SHACL shapes graph
// would express: per-command required and optional parameters with type,
// range, and enum constraints.
//
// This vocabulary is deliberately separate from the action catalog: it
// governs the low-level commands an action handler emits toward equipment,
// not the operator-facing action inputs.
package rules

import (
	"fmt"
	"sort"
	"strings"
)

// Parameter types.
const (
	TypeString  = "string"
	TypeNumber  = "number"
	TypeBoolean = "boolean"
	TypeObject  = "object"
	TypeArray   = "array"
)

// ParamRule constrains a single parameter.
type ParamRule struct {
	Type string   `json:"type"`
	Enum []string `json:"enum,omitempty"`
	Min  *float64 `json:"min,omitempty"`
	Max  *float64 `json:"max,omitempty"`
	Unit string   `json:"unit,omitempty"`
}

// CommandSpec is the rule set for one wire command.
type CommandSpec struct {
	Required    []string             `json:"required_params"`
	Optional    []string             `json:"optional_params"`
	Validations map[string]ParamRule `json:"validations"`
}

// Result is the outcome of a validation run. Errors make the command
// invalid; warnings flag suspicious but acceptable input.
type Result struct {
	Valid    bool     `json:"is_valid"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// Validator validates commands against a loaded vocabulary.
type Validator struct {
	specs map[string]CommandSpec
}

// New returns a validator over the default command vocabulary.
func New() *Validator {
	return &Validator{specs: DefaultTable()}
}

// NewWithTable returns a validator over a custom vocabulary, for tests or
// site-specific equipment.
func NewWithTable(specs map[string]CommandSpec) *Validator {
	return &Validator{specs: specs}
}

// Commands returns the supported command names, sorted.
func (v *Validator) Commands() []string {
	out := make([]string, 0, len(v.specs))
	for name := range v.specs {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Spec returns the rule set for a command and whether the command exists.
func (v *Validator) Spec(command string) (CommandSpec, bool) {
	s, ok := v.specs[command]
	return s, ok
}

// Validate checks command parameters against the vocabulary. All errors are
// collected rather than stopping at the first, so a caller can report every
// problem at once.
func (v *Validator) Validate(command string, params map[string]any) Result {
	spec, ok := v.specs[command]
	if !ok {
		return Result{Valid: false, Errors: []string{fmt.Sprintf("Unsupported action type: %s", command)}}
	}

	var errors, warnings []string

	var missing []string
	for _, name := range spec.Required {
		if _, present := params[name]; !present {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		errors = append(errors, fmt.Sprintf("Missing required parameters: %s", strings.Join(missing, ", ")))
	}

	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		rule, known := spec.Validations[name]
		if !known {
			if !contains(spec.Optional, name) && !contains(spec.Required, name) {
				warnings = append(warnings, fmt.Sprintf("Unknown parameter: %s", name))
			}
			continue
		}
		errors = append(errors, checkParam(name, params[name], rule)...)
	}

	return Result{Valid: len(errors) == 0, Errors: errors, Warnings: warnings}
}

// checkParam validates one value against its rule. A type mismatch
// suppresses the remaining checks since they would be meaningless.
func checkParam(name string, value any, rule ParamRule) []string {
	var errors []string

	if rule.Type != "" && !typeMatches(value, rule.Type) {
		return []string{fmt.Sprintf(
			"Parameter '%s' must be of type %s, got %s", name, rule.Type, typeName(value))}
	}

	if len(rule.Enum) > 0 {
		s, _ := value.(string)
		if !contains(rule.Enum, s) {
			errors = append(errors, fmt.Sprintf(
				"Parameter '%s' must be one of [%s], got '%v'",
				name, strings.Join(rule.Enum, ", "), value))
		}
	}

	if rule.Type == TypeNumber {
		n := asFloat(value)
		if rule.Min != nil && n < *rule.Min {
			errors = append(errors, fmt.Sprintf(
				"Parameter '%s' must be >= %v, got %v", name, *rule.Min, value))
		}
		if rule.Max != nil && n > *rule.Max {
			errors = append(errors, fmt.Sprintf(
				"Parameter '%s' must be <= %v, got %v", name, *rule.Max, value))
		}
	}

	return errors
}

func typeMatches(value any, expected string) bool {
	switch expected {
	case TypeString:
		_, ok := value.(string)
		return ok
	case TypeNumber:
		switch value.(type) {
		case float64, float32, int, int64:
			return true
		}
		return false
	case TypeBoolean:
		_, ok := value.(bool)
		return ok
	case TypeObject:
		_, ok := value.(map[string]any)
		return ok
	case TypeArray:
		_, ok := value.([]any)
		return ok
	default:
		return true
	}
}

func typeName(value any) string {
	switch value.(type) {
	case string:
		return TypeString
	case float64, float32, int, int64:
		return TypeNumber
	case bool:
		return TypeBoolean
	case map[string]any:
		return TypeObject
	case []any:
		return TypeArray
	case nil:
		return "null"
	default:
		return fmt.Sprintf("%T", value)
	}
}

func asFloat(value any) float64 {
	switch n := value.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return 0
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
