package controller

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/calvinmclean/drv8825"

	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"
)

const (
	// SerialPortNone is shown in the UI when no serial port should be used
	SerialPortNone = "None"

	defaultReplyTimeout = 2 * time.Second
	readPollInterval    = 100 * time.Millisecond
)

var (
	ErrNoUSBSerial = errors.New("no USB serial ports found")

	// ErrRemote wraps an error reported by the firmware
	ErrRemote = errors.New("device error")
)

// GetSerialPorts lists the USB serial ports on this machine
func GetSerialPorts() ([]string, error) {
	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, fmt.Errorf("error listing serial ports: %w", err)
	}

	var result []string
	for _, p := range ports {
		if p.IsUSB {
			result = append(result, p.Name)
		}
	}

	if len(result) == 0 {
		return nil, ErrNoUSBSerial
	}

	return result, nil
}

// serialDriver sends firmware commands over a serial port and waits for each reply
type serialDriver struct {
	port         io.ReadWriteCloser
	replyTimeout time.Duration
	logger       *slog.Logger

	// pending holds bytes read after the last reply's termination character
	pending []byte

	// stale counts replies still owed for commands that timed out. The firmware answers every
	// command in order, so these arrive before the reply to the next command
	stale int
}

var _ Driver = &serialDriver{}

func openSerial(name string, baud int, startDisabled bool, logger *slog.Logger) (Driver, error) {
	port, err := serial.Open(name, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, fmt.Errorf("error opening serial port %s: %w", name, err)
	}

	err = port.SetReadTimeout(readPollInterval)
	if err != nil {
		port.Close()
		return nil, fmt.Errorf("error setting read timeout: %w", err)
	}

	// drop anything the firmware printed before we connected
	err = port.ResetInputBuffer()
	if err != nil {
		port.Close()
		return nil, fmt.Errorf("error resetting input buffer: %w", err)
	}

	d := newSerialDriver(port, logger)
	if startDisabled {
		err = d.Disable()
		if err != nil {
			port.Close()
			return nil, err
		}
	}

	return d, nil
}

func newSerialDriver(port io.ReadWriteCloser, logger *slog.Logger) *serialDriver {
	return &serialDriver{
		port:         port,
		replyTimeout: defaultReplyTimeout,
		logger:       logger.With("module", "serial"),
	}
}

func (d *serialDriver) Enable() error {
	_, err := d.send(string(drv8825.FlagEnable), 0)
	return err
}

func (d *serialDriver) Disable() error {
	_, err := d.send(string(drv8825.FlagDisable), 0)
	return err
}

func (d *serialDriver) SetDirection(direction string) error {
	parsed, err := drv8825.ParseDirection(direction)
	if err != nil {
		return err
	}

	_, err = d.send(string(drv8825.FlagDirection)+strings.ToLower(parsed.String()), 0)
	return err
}

func (d *serialDriver) Forward(steps int, stepDelay time.Duration) error {
	return d.move(drv8825.FlagForward, steps, stepDelay)
}

func (d *serialDriver) Backward(steps int, stepDelay time.Duration) error {
	return d.move(drv8825.FlagBackward, steps, stepDelay)
}

func (d *serialDriver) move(flag byte, steps int, stepDelay time.Duration) error {
	if steps <= 0 {
		return fmt.Errorf("%w: %d", drv8825.ErrInvalidStepCount, steps)
	}

	_, err := d.send(fmt.Sprintf("%c%d %d", flag, steps, stepDelay.Microseconds()), moveDuration(steps, stepDelay))
	return err
}

// moveDuration is how long the firmware holds the step line for a move, saturating at the
// maximum Duration
func moveDuration(steps int, stepDelay time.Duration) time.Duration {
	if steps <= 0 || stepDelay <= 0 {
		return 0
	}
	if time.Duration(steps) > math.MaxInt64/2/stepDelay {
		return math.MaxInt64
	}
	return 2 * time.Duration(steps) * stepDelay
}

func (d *serialDriver) Status() (Status, error) {
	body, err := d.send(string(drv8825.FlagStatus), 0)
	if err != nil {
		return Status{}, err
	}

	for _, line := range body {
		if !strings.HasPrefix(line, "enabled=") {
			continue
		}

		var (
			enabled   bool
			direction string
		)
		_, err = fmt.Sscanf(line, "enabled=%t direction=%s", &enabled, &direction)
		if err != nil {
			return Status{}, fmt.Errorf("invalid status %q: %w", line, err)
		}

		parsed, err := drv8825.ParseDirection(direction)
		if err != nil {
			return Status{}, fmt.Errorf("invalid status %q: %w", line, err)
		}

		return Status{Enabled: enabled, Direction: parsed}, nil
	}

	return Status{}, errors.New("status missing from reply")
}

func (d *serialDriver) Close() error {
	return d.port.Close()
}

// send writes a command and reads until the termination character. wait is how long the command
// is expected to run on the device
func (d *serialDriver) send(cmd string, wait time.Duration) ([]string, error) {
	d.logger.Debug("sending command", "command", cmd)

	_, err := d.port.Write([]byte(cmd + "\n"))
	if err != nil {
		return nil, fmt.Errorf("error writing command: %w", err)
	}

	timeout := wait + d.replyTimeout
	if timeout < wait {
		timeout = math.MaxInt64
	}

	reply, err := d.readReply(time.Now().Add(timeout))
	if err != nil {
		return nil, err
	}

	lines := strings.Split(strings.TrimRight(reply, "\r\n"), "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], "\r")
	}

	last := lines[len(lines)-1]
	body := lines[:len(lines)-1]
	for _, line := range body {
		d.logger.Debug("device output", "line", line)
	}

	switch {
	case last == drv8825.ReplyOK:
		return body, nil
	case strings.HasPrefix(last, drv8825.ReplyError):
		return body, remoteError(strings.TrimPrefix(last, drv8825.ReplyError))
	default:
		return body, fmt.Errorf("unexpected reply %q", last)
	}
}

// readReply returns the reply to the last command written, discarding replies owed to commands
// that already timed out
func (d *serialDriver) readReply(deadline time.Time) (string, error) {
	buf := make([]byte, 256)
	for {
		idx := bytes.IndexByte(d.pending, drv8825.TerminationChar)
		if idx >= 0 {
			reply := string(d.pending[:idx])
			d.pending = d.pending[idx+1:]

			if d.stale > 0 {
				d.stale--
				d.logger.Warn("discarding late reply", "reply", reply)
				continue
			}
			return reply, nil
		}

		if time.Now().After(deadline) {
			d.stale++
			return "", errors.New("timed out waiting for reply")
		}

		n, err := d.port.Read(buf)
		if err != nil {
			return "", fmt.Errorf("error reading reply: %w", err)
		}
		d.pending = append(d.pending, buf[:n]...)
	}
}

// remoteError keeps the local sentinel errors so errors.Is works the same for both backends
func remoteError(msg string) error {
	for _, sentinel := range []error{drv8825.ErrInvalidDirection, drv8825.ErrInvalidStepCount, drv8825.ErrInvalidArgument} {
		if strings.HasPrefix(msg, sentinel.Error()) {
			return fmt.Errorf("%w: %w%s", ErrRemote, sentinel, strings.TrimPrefix(msg, sentinel.Error()))
		}
	}
	return fmt.Errorf("%w: %s", ErrRemote, msg)
}
