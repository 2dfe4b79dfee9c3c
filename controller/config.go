package controller

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/calvinmclean/drv8825"
	"github.com/pelletier/go-toml/v2"
)

const (
	BackendGPIO   = "gpio"
	BackendSerial = "serial"
)

// Config is the host-side configuration. Most values are strings so they can be bound directly
// to UI entries and environment variables
type Config struct {
	// Backend is "gpio" to drive pins on this machine or "serial" to send commands to the firmware
	Backend string `toml:"backend"`

	SerialPort string `toml:"serial_port"`
	BaudRate   string `toml:"baud_rate"`

	Pins PinConfig `toml:"pins"`

	// StepDelay is used when a move doesn't include a delay. It accepts a Go duration or seconds
	StepDelay     string `toml:"step_delay"`
	StartDisabled bool   `toml:"start_disabled"`

	MoveLogAddr string `toml:"move_log_addr"`
	MetricsAddr string `toml:"metrics_addr"`
}

// PinConfig has the GPIO names for the gpio backend, like "GPIO20"
type PinConfig struct {
	Direction string `toml:"direction"`
	Step      string `toml:"step"`
	Enable    string `toml:"enable"`
}

// Validate makes sure every pin is set and none is used twice
func (p PinConfig) Validate() error {
	if p.Direction == "" || p.Step == "" || p.Enable == "" {
		return errors.New("direction, step, and enable pins are required")
	}

	if strings.EqualFold(p.Direction, p.Step) ||
		strings.EqualFold(p.Direction, p.Enable) ||
		strings.EqualFold(p.Step, p.Enable) {
		return fmt.Errorf("%w: direction=%s step=%s enable=%s", drv8825.ErrDuplicatePin, p.Direction, p.Step, p.Enable)
	}

	return nil
}

// DefaultConfig uses the wiring from the common Raspberry Pi DRV8825 HAT layout
func DefaultConfig() Config {
	return Config{
		Backend:  BackendGPIO,
		BaudRate: "115200",
		Pins: PinConfig{
			Direction: "GPIO20",
			Step:      "GPIO21",
			Enable:    "GPIO16",
		},
		StepDelay: "1ms",
	}
}

// LoadConfig starts from DefaultConfig, then applies the TOML file at path (if path is not empty)
// and finally any DRV8825_* environment variables
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("error reading config file: %w", err)
		}

		err = toml.Unmarshal(data, &cfg)
		if err != nil {
			return Config{}, fmt.Errorf("failed to parse TOML config: %w", err)
		}
	}

	err := cfg.applyEnv()
	if err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c *Config) applyEnv() error {
	strs := map[string]*string{
		"DRV8825_BACKEND":       &c.Backend,
		"DRV8825_SERIAL_PORT":   &c.SerialPort,
		"DRV8825_BAUD_RATE":     &c.BaudRate,
		"DRV8825_DIR_PIN":       &c.Pins.Direction,
		"DRV8825_STEP_PIN":      &c.Pins.Step,
		"DRV8825_ENABLE_PIN":    &c.Pins.Enable,
		"DRV8825_STEP_DELAY":    &c.StepDelay,
		"DRV8825_MOVE_LOG_ADDR": &c.MoveLogAddr,
		"DRV8825_METRICS_ADDR":  &c.MetricsAddr,
	}
	for key, field := range strs {
		if v, ok := os.LookupEnv(key); ok {
			*field = v
		}
	}

	if v, ok := os.LookupEnv("DRV8825_START_DISABLED"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid DRV8825_START_DISABLED: %w", err)
		}
		c.StartDisabled = b
	}

	return nil
}

// Validate checks the fields needed by the selected backend
func (c Config) Validate() error {
	_, err := c.stepDelay()
	if err != nil {
		return err
	}

	switch c.Backend {
	case BackendGPIO:
		return c.Pins.Validate()
	case BackendSerial:
		if c.SerialPort == "" || c.SerialPort == SerialPortNone {
			return errors.New("serial port is required for the serial backend")
		}
		_, err := c.baudRate()
		return err
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
}

func (c Config) stepDelay() (time.Duration, error) {
	if c.StepDelay == "" {
		return 0, nil
	}
	return ParseStepDelay(c.StepDelay)
}

func (c Config) baudRate() (int, error) {
	b, err := strconv.Atoi(c.BaudRate)
	if err != nil || b <= 0 {
		return 0, fmt.Errorf("invalid baud rate %q", c.BaudRate)
	}
	return b, nil
}

// ParseStepDelay accepts a Go duration like "10ms" or a number of seconds like "0.01"
func ParseStepDelay(s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err == nil {
		return d, nil
	}

	seconds, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: step delay %q", drv8825.ErrInvalidArgument, s)
	}

	// also rejects NaN and Inf
	if !(math.Abs(seconds) < math.MaxInt64/float64(time.Second)) {
		return 0, fmt.Errorf("%w: step delay %q is out of range", drv8825.ErrInvalidArgument, s)
	}

	return time.Duration(seconds * float64(time.Second)), nil
}
