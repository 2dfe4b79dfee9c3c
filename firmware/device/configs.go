//go:build tinygo

package device

import (
	"machine"

	"github.com/calvinmclean/drv8825"
)

// StepperConfig has the pins wired to the DRV8825
type StepperConfig struct {
	DirectionPin machine.Pin
	StepPin      machine.Pin
	EnablePin    machine.Pin

	// StartDisabled keeps the driver outputs off until the first Enable command
	StartDisabled bool
}

func (c StepperConfig) validate() error {
	if c.DirectionPin == c.StepPin || c.DirectionPin == c.EnablePin || c.StepPin == c.EnablePin {
		return drv8825.ErrDuplicatePin
	}
	return nil
}
