package commands

import (
	"errors"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/calvinmclean/drv8825"
)

// Command is a single byte flag followed by space-separated arguments and a newline
type Command struct {
	Flag        byte
	Usage       string
	Run         func(Controller, []string) ([]string, error)
	Description string
}

// Controller is used to control a device
type Controller interface {
	Enable() error
	Disable() error
	SetDirection(string) error
	Forward(int, time.Duration) error
	Backward(int, time.Duration) error
	Status() (enabled bool, direction string)
	Verbose()

	// I/O
	ReadByte() (byte, error)
	WriteByte(byte) error
}

var (
	EnableCommand = &Command{
		Flag: drv8825.FlagEnable,
		Run: func(c Controller, _ []string) ([]string, error) {
			return nil, c.Enable()
		},
		Description: "Enable the driver outputs.",
	}
	DisableCommand = &Command{
		Flag: drv8825.FlagDisable,
		Run: func(c Controller, _ []string) ([]string, error) {
			return nil, c.Disable()
		},
		Description: "Disable the driver outputs so the motor can freewheel.",
	}
	DirectionCommand = &Command{
		Flag:  drv8825.FlagDirection,
		Usage: "forward|backward",
		Run: func(c Controller, args []string) ([]string, error) {
			if len(args) != 1 {
				return nil, errors.New("invalid input: expected a direction")
			}
			return nil, c.SetDirection(args[0])
		},
		Description: "Set the direction for the following steps.",
	}
	ForwardCommand = &Command{
		Flag:  drv8825.FlagForward,
		Usage: "<steps> <delay_us>",
		Run: func(c Controller, args []string) ([]string, error) {
			steps, stepDelay, err := parseMove(args)
			if err != nil {
				return nil, err
			}
			return nil, c.Forward(steps, stepDelay)
		},
		Description: "Move forward. The delay is held after each edge of every step pulse.",
	}
	BackwardCommand = &Command{
		Flag:  drv8825.FlagBackward,
		Usage: "<steps> <delay_us>",
		Run: func(c Controller, args []string) ([]string, error) {
			steps, stepDelay, err := parseMove(args)
			if err != nil {
				return nil, err
			}
			return nil, c.Backward(steps, stepDelay)
		},
		Description: "Move backward. The delay is held after each edge of every step pulse.",
	}
	StatusCommand = &Command{
		Flag: drv8825.FlagStatus,
		Run: func(c Controller, _ []string) ([]string, error) {
			enabled, direction := c.Status()
			return []string{"enabled=" + strconv.FormatBool(enabled) + " direction=" + direction}, nil
		},
		Description: "Print the current enable and direction state.",
	}
	VerboseCommand = &Command{
		Flag: drv8825.FlagVerbose,
		Run: func(c Controller, _ []string) ([]string, error) {
			c.Verbose()
			return nil, nil
		},
		Description: "Enable verbose output.",
	}
	HelpCommand = &Command{
		Flag:        drv8825.FlagHelp,
		Description: "Show all available commands and their descriptions.",
		Run: func(c Controller, _ []string) ([]string, error) {
			lines := []string{"Available Commands:"}
			for _, cmd := range commands {
				usage := string(cmd.Flag)
				if cmd.Usage != "" {
					usage += " " + cmd.Usage
				}
				lines = append(lines, usage+": "+cmd.Description)
			}
			return lines, nil
		},
	}
)

var commands = []*Command{
	EnableCommand,
	DisableCommand,
	DirectionCommand,
	ForwardCommand,
	BackwardCommand,
	StatusCommand,
	VerboseCommand,
}

// Run reads and runs commands until the Controller returns io.EOF. Every command gets a reply
// ending with "ok" or "error: ..." and the termination character
func Run(c Controller) {
	cmdMap := map[byte]*Command{
		HelpCommand.Flag: HelpCommand,
	}

	for _, cmd := range commands {
		cmdMap[cmd.Flag] = cmd
	}

	for {
		cmdIn, err := c.ReadByte()
		if errors.Is(err, io.EOF) {
			return
		}
		if err != nil {
			continue
		}

		if isSpace(cmdIn) {
			continue
		}

		line, eof := readLine(c)

		var body []string
		cmd, ok := cmdMap[cmdIn]
		if ok {
			body, err = cmd.Run(c, strings.Fields(line))
		} else {
			err = errors.New("unknown command: " + string(cmdIn))
		}

		reply(c, body, err)

		if eof {
			return
		}
	}
}

// readLine reads the rest of a command up to the newline
func readLine(c Controller) (string, bool) {
	var result []byte
	for {
		b, err := c.ReadByte()
		if errors.Is(err, io.EOF) {
			return string(result), true
		}
		if err != nil {
			continue
		}
		if b == '\n' {
			break
		}
		if b == '\r' {
			continue
		}
		result = append(result, b)
	}
	return string(result), false
}

func reply(c Controller, body []string, err error) {
	for _, line := range body {
		writeString(c, line+"\n")
	}

	if err != nil {
		writeString(c, drv8825.ReplyError+err.Error()+"\n")
	} else {
		writeString(c, drv8825.ReplyOK+"\n")
	}

	_ = c.WriteByte(drv8825.TerminationChar)
}

func writeString(c Controller, s string) {
	for i := 0; i < len(s); i++ {
		_ = c.WriteByte(s[i])
	}
}

func parseMove(args []string) (int, time.Duration, error) {
	if len(args) != 2 {
		return 0, 0, errors.New("invalid input: expected <steps> <delay_us>")
	}

	steps, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, 0, errors.New("invalid input: steps: " + args[0])
	}

	us, err := strconv.Atoi(args[1])
	if err != nil {
		return 0, 0, errors.New("invalid input: delay: " + args[1])
	}

	return steps, time.Duration(us) * time.Microsecond, nil
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\n' || b == '\r' || b == '\t'
}
