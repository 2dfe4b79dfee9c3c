package ui

import (
	"fmt"
	"io"
	"time"
)

// controllerWrapper writes text commands to the controller's input
type controllerWrapper struct {
	writer        io.Writer
	lastMoveTimer *timer
}

func (c *controllerWrapper) SetEnabled(enabled bool) {
	if enabled {
		fmt.Fprintln(c.writer, "enable")
		return
	}
	fmt.Fprintln(c.writer, "disable")
}

func (c *controllerWrapper) SetDirection(direction string) {
	fmt.Fprintf(c.writer, "direction %s\n", direction)
}

func (c *controllerWrapper) Move(s jogState) error {
	cmd, err := s.command()
	if err != nil {
		return err
	}

	c.lastMoveTimer.Set(time.Now())
	fmt.Fprintln(c.writer, cmd)
	return nil
}

func (c *controllerWrapper) Status() {
	fmt.Fprintln(c.writer, "status")
}
