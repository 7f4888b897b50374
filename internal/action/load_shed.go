package action

import (
	"fmt"
	"strings"

	"github.com/danielgtaylor/huma/v2"
)

// shedSavings maps shed level to the fraction of load removed.
var shedSavings = map[int]float64{1: 0.20, 2: 0.35, 3: 0.50, 4: 0.65, 5: 0.80}

// LoadShedInput is the validated input for a demand-response load shed.
type LoadShedInput struct {
	ZoneIDs           []string `json:"zone_ids" minItems:"1" doc:"Target zone identifiers for load shedding"`
	ShedLevel         int      `json:"shed_level" enum:"1,2,3,4,5" doc:"Load shed intensity (1=minimal, 5=maximum)"`
	DurationMinutes   int      `json:"duration_minutes" minimum:"1" maximum:"240" doc:"Duration to maintain load shed (max 4 hours)"`
	EquipmentTypes    []string `json:"equipment_types,omitempty" enum:"hvac,lighting,fan,pump,chiller,boiler" doc:"Equipment types to shed (empty = all)"`
	Reason            string   `json:"reason" minLength:"1" doc:"Reason for load shedding"`
	MinComfortTemp    float64  `json:"min_comfort_temp,omitempty" minimum:"60" maximum:"75" default:"68" doc:"Minimum acceptable temperature in Fahrenheit"`
	MaxComfortTemp    float64  `json:"max_comfort_temp,omitempty" minimum:"70" maximum:"85" default:"78" doc:"Maximum acceptable temperature in Fahrenheit"`
	PriorityZones     []string `json:"priority_zones,omitempty" doc:"Zones to protect from shedding"`
	ExpectedSavingsKW *float64 `json:"expected_savings_kw,omitempty" minimum:"0" doc:"Expected energy savings in kilowatts"`
}

func (i *LoadShedInput) setDefaults(raw map[string]any) {
	if _, ok := raw["min_comfort_temp"]; !ok {
		i.MinComfortTemp = 68.0
	}
	if _, ok := raw["max_comfort_temp"]; !ok {
		i.MaxComfortTemp = 78.0
	}
}

// Validate applies the cross-field rules in order: zone ID hygiene, the
// duration cap for aggressive shed levels, comfort band sanity, and priority
// zone disjointness. The first violated rule wins.
func (i *LoadShedInput) Validate() error {
	if err := validateZoneIDs(i.ZoneIDs); err != nil {
		return err
	}
	if i.ShedLevel >= 4 && i.DurationMinutes > 120 {
		return fmt.Errorf(
			"Shed level %d should not exceed 120 minutes duration due to occupant comfort concerns",
			i.ShedLevel)
	}
	if i.MinComfortTemp >= i.MaxComfortTemp {
		return fmt.Errorf(
			"min_comfort_temp (%s°F) must be less than max_comfort_temp (%s°F)",
			fmtNum(i.MinComfortTemp), fmtNum(i.MaxComfortTemp))
	}
	if band := i.MaxComfortTemp - i.MinComfortTemp; band < 5.0 {
		return fmt.Errorf(
			"Comfort temperature range (%s°F) is too narrow. Minimum range is 5°F.",
			fmtNum(band))
	}
	if shared := overlap(i.ZoneIDs, i.PriorityZones); len(shared) > 0 {
		return fmt.Errorf(
			"Priority zones cannot be in shed zone list: %s",
			strings.Join(shared, ", "))
	}
	return nil
}

// Resolve runs the cross-field rules after schema validation has passed.
func (i *LoadShedInput) Resolve(_ huma.Context) []error {
	if err := i.Validate(); err != nil {
		return []error{&huma.ErrorDetail{
			Location: "body",
			Message:  err.Error(),
		}}
	}
	return nil
}

var _ huma.Resolver = (*LoadShedInput)(nil)

// EstimateShedSavings returns the expected kW reduction for a shed across
// zoneCount zones at the given level, assuming avgZoneLoadKW per zone.
// Unknown levels fall back to the level-3 fraction.
func EstimateShedSavings(zoneCount, shedLevel int, avgZoneLoadKW float64) float64 {
	fraction, ok := shedSavings[shedLevel]
	if !ok {
		fraction = 0.50
	}
	return float64(zoneCount) * avgZoneLoadKW * fraction
}

// ShedFraction returns the load reduction fraction for a shed level, with
// the same level-3 fallback as EstimateShedSavings.
func ShedFraction(shedLevel int) float64 {
	if fraction, ok := shedSavings[shedLevel]; ok {
		return fraction
	}
	return 0.50
}
