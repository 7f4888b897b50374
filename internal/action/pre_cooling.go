package action

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/danielgtaylor/huma/v2"
)

// PreCoolingInput is the validated input for a pre-cooling optimization run.
type PreCoolingInput struct {
	ZoneIDs        []string `json:"zone_ids" minItems:"1" doc:"Target zone identifiers for pre-cooling"`
	TargetTemp     float64  `json:"target_temp" minimum:"60" maximum:"75" doc:"Target pre-cooling temperature in Fahrenheit (60-75°F)"`
	StartTime      string   `json:"start_time" pattern:"^([01][0-9]|2[0-3]):([0-5][0-9])$" doc:"Pre-cooling start time in HH:MM format (24-hour)"`
	OccupancyStart string   `json:"occupancy_start" pattern:"^([01][0-9]|2[0-3]):([0-5][0-9])$" doc:"Expected occupancy start time in HH:MM format (24-hour)"`
	MaxRateDelta   float64  `json:"max_rate_delta,omitempty" minimum:"1" maximum:"10" default:"5" doc:"Maximum cooling rate in °F per hour (1-10°F/hr)"`
	Priority       string   `json:"priority,omitempty" enum:"low,medium,high" default:"medium" doc:"Action priority level (emergency not allowed for pre-cooling)"`
	EnableAdaptive bool     `json:"enable_adaptive,omitempty" default:"true" doc:"Enable adaptive learning from historical performance"`
	CostLimitUSD   *float64 `json:"cost_limit_usd,omitempty" minimum:"0" doc:"Maximum acceptable cost in USD"`
	Reason         string   `json:"reason" minLength:"1" doc:"Reason for pre-cooling action"`
	MinOutdoorTemp *float64 `json:"min_outdoor_temp,omitempty" minimum:"-20" maximum:"100" doc:"Minimum outdoor temperature to enable pre-cooling (°F)"`
	MaxOutdoorTemp *float64 `json:"max_outdoor_temp,omitempty" minimum:"-20" maximum:"120" doc:"Maximum outdoor temperature to enable pre-cooling (°F)"`
}

func (i *PreCoolingInput) setDefaults(raw map[string]any) {
	if _, ok := raw["max_rate_delta"]; !ok {
		i.MaxRateDelta = 5.0
	}
	if _, ok := raw["priority"]; !ok {
		i.Priority = "medium"
	}
	if _, ok := raw["enable_adaptive"]; !ok {
		i.EnableAdaptive = true
	}
}

// Validate applies the cross-field rules in order: zone ID hygiene, the
// economics floor on the target temperature, the pre-cooling window bounds,
// and outdoor temperature ordering. The first violated rule wins.
func (i *PreCoolingInput) Validate() error {
	if err := validateZoneIDs(i.ZoneIDs); err != nil {
		return err
	}
	if i.TargetTemp < 62.0 {
		return fmt.Errorf(
			"Target temperature %s°F is too aggressive for pre-cooling. Minimum 62°F to avoid excessive energy waste.",
			fmtNum(i.TargetTemp))
	}
	window, err := i.WindowMinutes()
	if err != nil {
		return err
	}
	if window < 30 {
		return fmt.Errorf(
			"Pre-cooling window too short (%d minutes). Minimum 30 minutes required between start_time and occupancy_start.",
			window)
	}
	if window > 480 {
		return fmt.Errorf(
			"Pre-cooling window too long (%d minutes). Maximum 8 hours (480 minutes) allowed.",
			window)
	}
	if i.MinOutdoorTemp != nil && i.MaxOutdoorTemp != nil && *i.MinOutdoorTemp >= *i.MaxOutdoorTemp {
		return fmt.Errorf(
			"min_outdoor_temp (%s°F) must be less than max_outdoor_temp (%s°F)",
			fmtNum(*i.MinOutdoorTemp), fmtNum(*i.MaxOutdoorTemp))
	}
	return nil
}

// WindowMinutes computes the pre-cooling window length. A start time after
// the occupancy time is treated as an overnight window wrapping midnight,
// e.g. 23:00 to 07:00 is 480 minutes.
func (i *PreCoolingInput) WindowMinutes() (int, error) {
	start, err := parseClock(i.StartTime)
	if err != nil {
		return 0, fmt.Errorf("Invalid time format: %v", err)
	}
	occupancy, err := parseClock(i.OccupancyStart)
	if err != nil {
		return 0, fmt.Errorf("Invalid time format: %v", err)
	}
	if occupancy < start {
		occupancy += 24 * 60
	}
	return occupancy - start, nil
}

// Resolve runs the cross-field rules after schema validation has passed.
func (i *PreCoolingInput) Resolve(_ huma.Context) []error {
	if err := i.Validate(); err != nil {
		return []error{&huma.ErrorDetail{
			Location: "body",
			Message:  err.Error(),
		}}
	}
	return nil
}

var _ huma.Resolver = (*PreCoolingInput)(nil)

// parseClock converts an HH:MM string to minutes since midnight.
func parseClock(s string) (int, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("%q is not in HH:MM format", s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("%q has an invalid hour", s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("%q has an invalid minute", s)
	}
	return hour*60 + minute, nil
}

// EstimatePreCoolingCost estimates the cost of a pre-cooling run, assuming
// roughly 3 kWh per zone per °F of delta per hour of runtime.
func EstimatePreCoolingCost(zoneCount int, targetTempDelta, durationHours, ratePerKWH float64) float64 {
	estimatedKWH := float64(zoneCount) * targetTempDelta * durationHours * 3.0
	return estimatedKWH * ratePerKWH
}

// EstimatePeakSavings estimates monthly peak-demand charge savings from
// shifting cooling load off peak.
func EstimatePeakSavings(zoneCount int, demandRatePerKW, peakReductionKWPerZone float64) float64 {
	return float64(zoneCount) * peakReductionKWPerZone * demandRatePerKW
}
