package rules

// Wire command names emitted by action handlers.
const (
	CmdSetTemperature    = "setTemperature"
	CmdSetOccupancyMode  = "setOccupancyMode"
	CmdAdjustVentilation = "adjustVentilation"
	CmdEnableEconomizer  = "enableEconomizer"
	CmdSetLightingLevel  = "setLightingLevel"
)

// DefaultTable returns the built-in command vocabulary. A production
// deployment would derive this from the building's shapes graph; the
// built-in table covers the standard equipment set.
func DefaultTable() map[string]CommandSpec {
	return map[string]CommandSpec{
		CmdSetTemperature: {
			Required: []string{"setpoint"},
			Optional: []string{"mode"},
			Validations: map[string]ParamRule{
				"setpoint": {Type: TypeNumber, Min: f(55.0), Max: f(85.0), Unit: "fahrenheit"},
				"mode":     {Type: TypeString, Enum: []string{"heat", "cool", "auto", "off"}},
			},
		},
		CmdSetOccupancyMode: {
			Required: []string{"mode"},
			Optional: []string{},
			Validations: map[string]ParamRule{
				"mode": {Type: TypeString, Enum: []string{"occupied", "unoccupied", "standby"}},
			},
		},
		CmdAdjustVentilation: {
			Required: []string{"rate"},
			Optional: []string{"mode"},
			Validations: map[string]ParamRule{
				"rate": {Type: TypeNumber, Min: f(0), Max: f(10000), Unit: "cfm"},
				"mode": {Type: TypeString, Enum: []string{"constant", "demand-based", "scheduled"}},
			},
		},
		CmdEnableEconomizer: {
			Required: []string{"enabled"},
			Optional: []string{"min_outdoor_temp", "max_outdoor_temp"},
			Validations: map[string]ParamRule{
				"enabled":          {Type: TypeBoolean},
				"min_outdoor_temp": {Type: TypeNumber, Min: f(-20), Max: f(120)},
				"max_outdoor_temp": {Type: TypeNumber, Min: f(-20), Max: f(120)},
			},
		},
		CmdSetLightingLevel: {
			Required: []string{"level"},
			Optional: []string{"duration", "fade_time"},
			Validations: map[string]ParamRule{
				"level":     {Type: TypeNumber, Min: f(0), Max: f(100), Unit: "percent"},
				"duration":  {Type: TypeNumber, Min: f(0), Max: f(86400), Unit: "seconds"},
				"fade_time": {Type: TypeNumber, Min: f(0), Max: f(300), Unit: "seconds"},
			},
		},
	}
}

func f(v float64) *float64 { return &v }
