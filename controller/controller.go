package controller

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/calvinmclean/drv8825"
	"github.com/calvinmclean/drv8825/movelog"
)

const helpText = `Available Commands:
enable: Enable the driver outputs.
disable: Disable the driver outputs so the motor can freewheel.
direction forward|backward: Set the direction for the following steps.
forward <steps> [delay]: Move forward. Delay is a duration like 10ms or seconds like 0.01.
backward <steps> [delay]: Move backward.
status: Print the current enable and direction state.
help: Show this message.
quit: Stop reading commands.`

var aliases = map[string]string{
	"e":    "enable",
	"d":    "disable",
	"r":    "direction",
	"dir":  "direction",
	"f":    "forward",
	"b":    "backward",
	"s":    "status",
	"h":    "help",
	"?":    "help",
	"q":    "quit",
	"exit": "quit",
}

// Controller runs text commands against a Driver. It is safe for concurrent use
type Controller struct {
	mu sync.Mutex

	driver    Driver
	recorder  moveRecorder
	logger    *slog.Logger
	stepDelay time.Duration
}

// New opens the configured Driver
func New(cfg Config, logger *slog.Logger) (*Controller, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	driver, err := Open(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("error opening %s driver: %w", cfg.Backend, err)
	}

	return newController(driver, cfg, logger)
}

// NewFromEnv loads the config file named by DRV8825_CONFIG (if set) and DRV8825_* environment
// variables
func NewFromEnv() (*Controller, error) {
	cfg, err := LoadConfig(os.Getenv("DRV8825_CONFIG"))
	if err != nil {
		return nil, err
	}

	return New(cfg, slog.Default())
}

func newController(driver Driver, cfg Config, logger *slog.Logger) (*Controller, error) {
	stepDelay, err := cfg.stepDelay()
	if err != nil {
		return nil, err
	}

	var recorder moveRecorder = noopMoveRecorder{}
	if cfg.MoveLogAddr != "" {
		recorder = movelog.NewClient(cfg.MoveLogAddr)
	}

	return &Controller{
		driver:    driver,
		recorder:  recorder,
		logger:    logger,
		stepDelay: stepDelay,
	}, nil
}

// Run reads one command per line from r and writes each result to w. It returns when r is
// exhausted, when "quit" is read, or when ctx is done before the next command
func (c *Controller) Run(ctx context.Context, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		if command(fields[0]) == "quit" {
			return nil
		}

		out, err := c.Execute(ctx, line)
		if err != nil {
			fmt.Fprintf(w, "%s%v\n", drv8825.ReplyError, err)
			continue
		}

		if out != "" {
			fmt.Fprintln(w, out)
		}
	}

	return scanner.Err()
}

// Execute runs a single command like "forward 200 1ms" and returns its output
func (c *Controller) Execute(ctx context.Context, line string) (string, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	logger := c.logger.With("command", line)

	out, err := c.execute(ctx, command(fields[0]), fields[1:])
	if err != nil {
		recordError(err)
		logger.Error("command failed", "error", err)
		return "", err
	}

	logger.Debug("command succeeded", "output", out)
	return out, nil
}

func (c *Controller) execute(ctx context.Context, cmd string, args []string) (string, error) {
	switch cmd {
	case "enable":
		err := c.driver.Enable()
		if err != nil {
			return "", err
		}
		return drv8825.Enabled.String(), nil
	case "disable":
		err := c.driver.Disable()
		if err != nil {
			return "", err
		}
		return drv8825.Disabled.String(), nil
	case "direction":
		if len(args) != 1 {
			return "", fmt.Errorf("%w: expected direction forward|backward", drv8825.ErrInvalidArgument)
		}
		err := c.driver.SetDirection(args[0])
		if err != nil {
			return "", err
		}
		d, _ := drv8825.ParseDirection(args[0])
		return d.String(), nil
	case "forward":
		return c.move(ctx, drv8825.DirectionForward, args)
	case "backward":
		return c.move(ctx, drv8825.DirectionBackward, args)
	case "status":
		s, err := c.driver.Status()
		if err != nil {
			return "", err
		}
		return s.String(), nil
	case "help":
		return helpText, nil
	default:
		return "", fmt.Errorf("%w: unknown command %q", drv8825.ErrInvalidArgument, cmd)
	}
}

func (c *Controller) move(ctx context.Context, direction drv8825.Direction, args []string) (string, error) {
	if len(args) < 1 || len(args) > 2 {
		return "", fmt.Errorf("%w: expected <steps> [delay]", drv8825.ErrInvalidArgument)
	}

	steps, err := strconv.Atoi(args[0])
	if err != nil {
		return "", fmt.Errorf("%w: steps %q", drv8825.ErrInvalidArgument, args[0])
	}

	stepDelay := c.stepDelay
	if len(args) == 2 {
		stepDelay, err = ParseStepDelay(args[1])
		if err != nil {
			return "", err
		}
	}

	start := time.Now()
	if direction == drv8825.DirectionBackward {
		err = c.driver.Backward(steps, stepDelay)
	} else {
		err = c.driver.Forward(steps, stepDelay)
	}
	if err != nil {
		return "", err
	}
	duration := time.Since(start)

	recordMove(direction, steps)

	id, err := c.recorder.RecordMove(ctx, movelog.Move{
		Direction: direction.String(),
		Steps:     steps,
		StepDelay: stepDelay,
		StartedAt: start,
		Duration:  duration,
	})
	if err != nil {
		// the move already happened so this is not a command failure
		c.logger.Warn("error recording move", "error", err)
	} else if id != "" {
		c.logger.Debug("recorded move", "id", id)
	}

	return fmt.Sprintf("%s %d steps in %s", direction, steps, duration.Round(time.Millisecond)), nil
}

// Close releases the Driver
func (c *Controller) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	err := c.driver.Close()
	if err != nil && !errors.Is(err, os.ErrClosed) {
		return err
	}
	return nil
}

func command(s string) string {
	s = strings.ToLower(s)
	if alias, ok := aliases[s]; ok {
		return alias
	}
	return s
}
