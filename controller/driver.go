package controller

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/calvinmclean/drv8825"
	"github.com/calvinmclean/drv8825/stepper"
)

// Driver is a stepper driver reachable from this host, either directly through GPIO or through
// the firmware over serial
type Driver interface {
	Enable() error
	Disable() error
	SetDirection(string) error
	Forward(steps int, stepDelay time.Duration) error
	Backward(steps int, stepDelay time.Duration) error
	Status() (Status, error)
	Close() error
}

// Status is the state of the enable and direction lines
type Status struct {
	Enabled   bool
	Direction drv8825.Direction
}

func (s Status) String() string {
	state := drv8825.Disabled
	if s.Enabled {
		state = drv8825.Enabled
	}
	return state.String() + " " + s.Direction.String()
}

// Open creates the Driver for the configured backend
func Open(cfg Config, logger *slog.Logger) (Driver, error) {
	switch cfg.Backend {
	case BackendGPIO:
		return openGPIO(cfg.Pins, cfg.StartDisabled)
	case BackendSerial:
		baud, err := cfg.baudRate()
		if err != nil {
			return nil, err
		}
		return openSerial(cfg.SerialPort, baud, cfg.StartDisabled, logger)
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}

// stepperDriver runs a stepper.Controller in this process
type stepperDriver struct {
	*stepper.Controller
}

var _ Driver = stepperDriver{}

func (d stepperDriver) Status() (Status, error) {
	return Status{
		Enabled:   d.Enabled(),
		Direction: d.Direction(),
	}, nil
}

// Close leaves the lines at their current levels
func (d stepperDriver) Close() error {
	return nil
}
