// Package action defines the typed input models for building control
// actions. Each input carries its structural constraints as schema tags,
// which drive both request validation and the exported JSON Schemas, and a
// Validate method holding the cross-field rules that tags cannot express.
package action

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Action identifiers, matching the descriptor registry keys.
const (
	TypeAdjustSetpoint = "adjust-setpoint"
	TypeLoadShed       = "load-shed"
	TypePreCooling     = "pre-cooling"
)

// Types lists every supported action identifier.
var Types = []string{TypeAdjustSetpoint, TypeLoadShed, TypePreCooling}

// validateZoneIDs rejects duplicate, empty, or whitespace-only zone IDs.
// Structural tags already require at least one entry.
func validateZoneIDs(ids []string) error {
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if strings.TrimSpace(id) == "" {
			return fmt.Errorf("Zone IDs cannot be empty or whitespace")
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("Duplicate zone IDs not allowed")
		}
		seen[id] = struct{}{}
	}
	return nil
}

// overlap returns the sorted intersection of two zone lists.
func overlap(a, b []string) []string {
	set := make(map[string]struct{}, len(a))
	for _, v := range a {
		set[v] = struct{}{}
	}
	var out []string
	for _, v := range b {
		if _, ok := set[v]; ok {
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}

// fmtNum renders a float without trailing zeros, e.g. 5 not 5.000000.
func fmtNum(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
