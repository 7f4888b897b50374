package descriptor

import (
	"fmt"
	"strings"
)

// FormatSummary renders the descriptor's audit summary line for a set of
// action parameters. Each {param} placeholder is replaced with the value of
// that parameter after applying the field's named formatter, if any.
// Placeholders with no matching parameter are left untouched so a partial
// render is still recognizable in the log.
func (a AuditLogDescriptor) FormatSummary(params map[string]any) string {
	out := a.SummaryTemplate
	for name, value := range params {
		placeholder := "{" + name + "}"
		if !strings.Contains(out, placeholder) {
			continue
		}
		out = strings.ReplaceAll(out, placeholder, a.formatValue(name, value))
	}
	return out
}

func (a AuditLogDescriptor) formatValue(name string, value any) string {
	return ApplyFormatter(a.Formatters[name], value)
}

// ApplyFormatter renders a value through one of the named audit formatters.
// Unknown formatter names fall back to plain rendering.
func ApplyFormatter(formatter string, value any) string {
	switch formatter {
	case "temperature":
		return fmt.Sprintf("%v°F", trimFloat(value))
	case "minutes":
		return fmt.Sprintf("%v minutes", trimFloat(value))
	case "capitalize":
		s := fmt.Sprintf("%v", value)
		if s == "" {
			return s
		}
		return strings.ToUpper(s[:1]) + s[1:]
	case "currency":
		return fmt.Sprintf("$%.2f", toFloat(value))
	case "currency_rate":
		return fmt.Sprintf("$%v/kWh", trimFloat(value))
	case "cooling_rate":
		return fmt.Sprintf("%v°F/hr", trimFloat(value))
	case "boolean", "boolean_enabled":
		if b, ok := value.(bool); ok {
			if b {
				return "enabled"
			}
			return "disabled"
		}
		return fmt.Sprintf("%v", value)
	case "list", "zone_list":
		if list, ok := value.([]string); ok {
			return strings.Join(list, ", ")
		}
		if list, ok := value.([]any); ok {
			parts := make([]string, len(list))
			for i, v := range list {
				parts[i] = fmt.Sprintf("%v", v)
			}
			return strings.Join(parts, ", ")
		}
		return fmt.Sprintf("%v", value)
	case "shed_level":
		level := int(toFloat(value))
		percentages := map[int]int{1: 20, 2: 35, 3: 50, 4: 65, 5: 80}
		if pct, ok := percentages[level]; ok {
			return fmt.Sprintf("Level %d (%d%% reduction)", level, pct)
		}
		return fmt.Sprintf("Level %d", level)
	default:
		return fmt.Sprintf("%v", trimFloat(value))
	}
}

// trimFloat strips the trailing ".0" JSON decoding adds to integral numbers.
func trimFloat(value any) any {
	f, ok := value.(float64)
	if !ok {
		return value
	}
	if f == float64(int64(f)) {
		return int64(f)
	}
	return f
}

func toFloat(value any) float64 {
	switch v := value.(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return 0
	}
}
