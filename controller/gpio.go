package controller

import (
	"fmt"

	"github.com/calvinmclean/drv8825/stepper"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

func openGPIO(pins PinConfig, startDisabled bool) (Driver, error) {
	_, err := host.Init()
	if err != nil {
		return nil, fmt.Errorf("error initializing GPIO: %w", err)
	}

	return newGPIODriver(gpioreg.ByName, pins, startDisabled)
}

func newGPIODriver(lookup func(string) gpio.PinIO, pins PinConfig, startDisabled bool) (Driver, error) {
	err := pins.Validate()
	if err != nil {
		return nil, err
	}

	lines := make([]stepper.DigitalLine, 3)
	for i, name := range []string{pins.Direction, pins.Step, pins.Enable} {
		p := lookup(name)
		if p == nil {
			return nil, fmt.Errorf("unknown pin %q", name)
		}
		lines[i] = pinLine{p}
	}

	s, err := stepper.New(stepper.Config{
		Direction:     lines[0],
		Step:          lines[1],
		Enable:        lines[2],
		StartDisabled: startDisabled,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating stepper: %w", err)
	}

	return stepperDriver{s}, nil
}

// pinLine is a stepper.DigitalLine on a periph GPIO pin
type pinLine struct {
	pin gpio.PinIO
}

func (l pinLine) Set(value bool) error {
	err := l.pin.Out(gpio.Level(value))
	if err != nil {
		return fmt.Errorf("%s: %w", l.pin.Name(), err)
	}
	return nil
}

func (l pinLine) Get() bool {
	return l.pin.Read() == gpio.High
}
