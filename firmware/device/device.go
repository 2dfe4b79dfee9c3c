//go:build tinygo

package device

import (
	"errors"
	"machine"
	"time"

	"github.com/calvinmclean/drv8825/stepper"

	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/delay"
)

var errNoByte = errors.New("no byte available")

// Device controls a stepper motor through a DRV8825 and reads commands from a UART
type Device struct {
	stepper *stepper.Controller
	uart    drivers.UART

	verbose bool
}

// New configures the pins and creates the Device
func New(stepperCfg StepperConfig, uart drivers.UART) (Device, error) {
	err := stepperCfg.validate()
	if err != nil {
		return Device{}, errors.New("invalid stepper config: " + err.Error())
	}

	s, err := stepper.New(stepper.Config{
		Direction:     newPinLine(stepperCfg.DirectionPin),
		Step:          newPinLine(stepperCfg.StepPin),
		Enable:        newPinLine(stepperCfg.EnablePin),
		Clock:         busyClock{},
		StartDisabled: stepperCfg.StartDisabled,
	})
	if err != nil {
		return Device{}, errors.New("error creating stepper: " + err.Error())
	}

	return Device{
		stepper: s,
		uart:    uart,
	}, nil
}

// Enable turns on the driver outputs
func (d *Device) Enable() error {
	if d.verbose {
		println("Enable")
	}
	return d.stepper.Enable()
}

// Disable turns off the driver outputs
func (d *Device) Disable() error {
	if d.verbose {
		println("Disable")
	}
	return d.stepper.Disable()
}

// SetDirection sets the direction used by the next steps
func (d *Device) SetDirection(direction string) error {
	if d.verbose {
		println("SetDirection", direction)
	}
	return d.stepper.SetDirection(direction)
}

// Forward moves the motor forward
func (d *Device) Forward(steps int, stepDelay time.Duration) error {
	if d.verbose {
		println("Forward", steps, stepDelay.String())
	}
	return d.stepper.Forward(steps, stepDelay)
}

// Backward moves the motor backward
func (d *Device) Backward(steps int, stepDelay time.Duration) error {
	if d.verbose {
		println("Backward", steps, stepDelay.String())
	}
	return d.stepper.Backward(steps, stepDelay)
}

// Status returns the current levels of the enable and direction lines
func (d *Device) Status() (bool, string) {
	return d.stepper.Enabled(), d.stepper.Direction().String()
}

// Verbose turns on logging of every operation
func (d *Device) Verbose() {
	d.verbose = true
	println("Set Verbose Mode")
}

func (d *Device) ReadByte() (byte, error) {
	if d.uart.Buffered() == 0 {
		return 0, errNoByte
	}

	var b [1]byte
	_, err := d.uart.Read(b[:])
	return b[0], err
}

func (d *Device) WriteByte(b byte) error {
	_, err := d.uart.Write([]byte{b})
	return err
}

// pinLine is a stepper.DigitalLine on a GPIO output
type pinLine struct {
	pin machine.Pin
}

func newPinLine(pin machine.Pin) pinLine {
	pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	return pinLine{pin}
}

func (p pinLine) Set(value bool) error {
	p.pin.Set(value)
	return nil
}

func (p pinLine) Get() bool {
	return p.pin.Get()
}

// busyClock busy-waits for short step delays, which are too coarse with time.Sleep
type busyClock struct{}

func (busyClock) Sleep(d time.Duration) {
	delay.Sleep(d)
}
