// Package stepper drives a bipolar stepper motor through a DRV8825-style
// step/direction driver using three digital output lines.
package stepper

import (
	"errors"
	"fmt"
	"time"

	"github.com/calvinmclean/drv8825"
)

// DigitalLine is a single digital output
type DigitalLine interface {
	// Set writes the logic level of the line. It has taken effect when Set returns
	Set(value bool) error
	// Get reads back the level the line is currently driving
	Get() bool
}

// Clock blocks the caller for a duration
type Clock interface {
	Sleep(d time.Duration)
}

// SystemClock sleeps using time.Sleep
type SystemClock struct{}

func (SystemClock) Sleep(d time.Duration) {
	time.Sleep(d)
}

// Config has the lines and timing source used by a Controller
type Config struct {
	Direction DigitalLine
	Step      DigitalLine
	Enable    DigitalLine

	// Clock defaults to SystemClock
	Clock Clock

	// StartDisabled leaves the driver disabled after New. By default all lines start low,
	// which means Forward and Enabled
	StartDisabled bool
}

// Controller translates motion requests into level changes on the DIR, STEP and ENABLE lines.
// It is not safe for concurrent use
type Controller struct {
	direction DigitalLine
	step      DigitalLine
	enable    DigitalLine
	clock     Clock
}

// New creates a Controller and drives every line to a known state
func New(cfg Config) (*Controller, error) {
	if cfg.Direction == nil || cfg.Step == nil || cfg.Enable == nil {
		return nil, errors.New("direction, step, and enable lines are required")
	}

	if cfg.Clock == nil {
		cfg.Clock = SystemClock{}
	}

	c := &Controller{
		direction: cfg.Direction,
		step:      cfg.Step,
		enable:    cfg.Enable,
		clock:     cfg.Clock,
	}

	err := c.setDirection(drv8825.DirectionForward)
	if err != nil {
		return nil, err
	}

	err = c.step.Set(false)
	if err != nil {
		return nil, fmt.Errorf("error setting step line: %w", err)
	}

	initial := drv8825.Enabled
	if cfg.StartDisabled {
		initial = drv8825.Disabled
	}
	err = c.setEnable(initial)
	if err != nil {
		return nil, err
	}

	return c, nil
}

// Enable turns on the driver outputs
func (c *Controller) Enable() error {
	return c.setEnable(drv8825.Enabled)
}

// Disable turns off the driver outputs so the motor can freewheel
func (c *Controller) Disable() error {
	return c.setEnable(drv8825.Disabled)
}

// SetDirection sets the direction for the following steps. It accepts "forward" or "backward" in any case
func (c *Controller) SetDirection(direction string) error {
	d, err := drv8825.ParseDirection(direction)
	if err != nil {
		return err
	}
	return c.setDirection(d)
}

// Forward moves the motor forward (clockwise). stepDelay is held after each edge of every
// step pulse, so a move takes about 2*steps*stepDelay
func (c *Controller) Forward(steps int, stepDelay time.Duration) error {
	return c.move(drv8825.DirectionForward, steps, stepDelay)
}

// Backward moves the motor backward (counterclockwise)
func (c *Controller) Backward(steps int, stepDelay time.Duration) error {
	return c.move(drv8825.DirectionBackward, steps, stepDelay)
}

// Enabled reports whether the ENABLE line is currently driving the enabled level
func (c *Controller) Enabled() bool {
	return drv8825.EnableStateFromLevel(c.enable.Get()) == drv8825.Enabled
}

// Direction returns the direction the DIR line is currently selecting
func (c *Controller) Direction() drv8825.Direction {
	return drv8825.DirectionFromLevel(c.direction.Get())
}

func (c *Controller) move(d drv8825.Direction, steps int, stepDelay time.Duration) error {
	// reject before touching DIR so an invalid request has no side effects
	if steps <= 0 {
		return fmt.Errorf("%w: %d", drv8825.ErrInvalidStepCount, steps)
	}

	err := c.setDirection(d)
	if err != nil {
		return err
	}

	return c.runSteps(steps, stepDelay)
}

func (c *Controller) runSteps(steps int, stepDelay time.Duration) error {
	if steps <= 0 {
		return fmt.Errorf("%w: %d", drv8825.ErrInvalidStepCount, steps)
	}

	for range steps {
		err := c.step.Set(true)
		if err != nil {
			return fmt.Errorf("error setting step line: %w", err)
		}
		c.clock.Sleep(stepDelay)

		err = c.step.Set(false)
		if err != nil {
			return fmt.Errorf("error setting step line: %w", err)
		}
		c.clock.Sleep(stepDelay)
	}

	return nil
}

func (c *Controller) setDirection(d drv8825.Direction) error {
	err := c.direction.Set(d.Level())
	if err != nil {
		return fmt.Errorf("error setting direction line: %w", err)
	}
	return nil
}

func (c *Controller) setEnable(e drv8825.EnableState) error {
	err := c.enable.Set(e.Level())
	if err != nil {
		return fmt.Errorf("error setting enable line: %w", err)
	}
	return nil
}
