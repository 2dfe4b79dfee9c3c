package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/calvinmclean/drv8825"
	"github.com/calvinmclean/drv8825/controller"
)

// jogState is the move described by the jog panel inputs
type jogState struct {
	direction string
	steps     string
	delay     string
}

func (s jogState) command() (string, error) {
	direction, err := drv8825.ParseDirection(s.direction)
	if err != nil {
		return "", err
	}

	steps, err := strconv.Atoi(strings.TrimSpace(s.steps))
	if err != nil {
		return "", fmt.Errorf("%w: steps %q", drv8825.ErrInvalidArgument, s.steps)
	}
	if steps <= 0 {
		return "", fmt.Errorf("%w: %d", drv8825.ErrInvalidStepCount, steps)
	}

	cmd := fmt.Sprintf("%s %d", strings.ToLower(direction.String()), steps)

	// an empty delay uses the configured default
	delay := strings.TrimSpace(s.delay)
	if delay != "" {
		_, err = controller.ParseStepDelay(delay)
		if err != nil {
			return "", err
		}
		cmd += " " + delay
	}

	return cmd, nil
}
