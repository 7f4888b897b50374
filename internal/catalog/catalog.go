// Package catalog defines the shipped action descriptors and installs them
// into a registry at startup.
package catalog

import "buildline/internal/descriptor"

// Register installs every shipped descriptor. Call once during startup
// before the registry is handed to the server or CLI.
func Register(reg *descriptor.Registry) {
	reg.Register(AdjustSetpoint())
	reg.Register(LoadShed())
	reg.Register(PreCooling())
}

func f(v float64) *float64 { return &v }
