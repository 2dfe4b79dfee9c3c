//go:build tinygo

package main

import (
	"machine"

	"github.com/calvinmclean/drv8825/firmware/commands"
	"github.com/calvinmclean/drv8825/firmware/device"

	"tinygo.org/x/drivers"
)

func main() {
	stepperCfg := device.StepperConfig{
		DirectionPin:  machine.GP2,
		StepPin:       machine.GP3,
		EnablePin:     machine.GP4,
		StartDisabled: true,
	}

	uart, ok := machine.Serial.(drivers.UART)
	if !ok {
		panic("serial port does not support reading")
	}

	d, err := device.New(stepperCfg, uart)
	if err != nil {
		panic(err)
	}

	commands.Run(&d)
}
