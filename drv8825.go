package drv8825

import (
	"errors"
	"fmt"
	"strings"
)

const TerminationChar = 0x04 // ascii EOT (End of Transmission)

var (
	// ErrInvalidArgument is the parent of every input validation error
	ErrInvalidArgument = errors.New("invalid argument")

	ErrInvalidDirection = fmt.Errorf("%w: direction must be 'forward' or 'backward'", ErrInvalidArgument)
	ErrInvalidStepCount = fmt.Errorf("%w: number of steps must be positive", ErrInvalidArgument)

	// ErrDuplicatePin is returned when the same pin is configured for more than one line
	ErrDuplicatePin = fmt.Errorf("%w: pins must be distinct", ErrInvalidArgument)
)

// Direction is the rotation direction selected by the DIR line
type Direction int

const (
	DirectionForward Direction = iota
	DirectionBackward
)

// ParseDirection parses "forward" or "backward", ignoring case
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(s) {
	case "forward":
		return DirectionForward, nil
	case "backward":
		return DirectionBackward, nil
	default:
		return DirectionForward, fmt.Errorf("%w: %q", ErrInvalidDirection, s)
	}
}

func (d Direction) String() string {
	switch d {
	case DirectionForward:
		return "Forward"
	case DirectionBackward:
		return "Backward"
	default:
		return "Unknown"
	}
}

// Level is the DIR line level for this direction. Low is forward, high is backward
func (d Direction) Level() bool {
	return d == DirectionBackward
}

// DirectionFromLevel is the inverse of Level
func DirectionFromLevel(level bool) Direction {
	if level {
		return DirectionBackward
	}
	return DirectionForward
}

// EnableState is the state of the driver's outputs. The DRV8825 ENABLE input is active low
type EnableState int

const (
	Enabled EnableState = iota
	Disabled
)

func (e EnableState) String() string {
	switch e {
	case Enabled:
		return "Enabled"
	case Disabled:
		return "Disabled"
	default:
		return "Unknown"
	}
}

// Level is the ENABLE line level for this state
func (e EnableState) Level() bool {
	return e == Disabled
}

// EnableStateFromLevel is the inverse of Level
func EnableStateFromLevel(level bool) EnableState {
	if level {
		return Disabled
	}
	return Enabled
}
