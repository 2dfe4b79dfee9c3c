package main

import (
	"log/slog"
	"os"

	"github.com/calvinmclean/drv8825/controller"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "drv8825",
	Short: "Control a stepper motor through a DRV8825 driver",
	Long: `Control a stepper motor through a DRV8825 driver, either directly with this machine's GPIO
pins or through a microcontroller running the drv8825 firmware over serial.

Configuration is loaded from defaults, then the --config TOML file, then DRV8825_* environment
variables, and finally any flags that are set.`,
	SilenceUsage: true,
}

func init() {
	addConfigFlags(rootCmd)

	rootCmd.AddCommand(runCmd, forwardCmd, backwardCmd, enableCmd, disableCmd, statusCmd, portsCmd, uiCmd)
}

// addConfigFlags adds the persistent flags read by loadConfig
func addConfigFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.String("config", "", "Path to a TOML config file")
	flags.String("backend", "", "Backend to use: gpio or serial")
	flags.String("serial-port", "", "Serial port for the serial backend")
	flags.String("baud-rate", "", "Baud rate for the serial backend")
	flags.String("dir-pin", "", "GPIO name of the DIR line, like GPIO20")
	flags.String("step-pin", "", "GPIO name of the STEP line")
	flags.String("enable-pin", "", "GPIO name of the ENABLE line")
	flags.String("step-delay", "", "Default delay held after each edge of a step pulse (10ms or 0.01)")
	flags.Bool("start-disabled", false, "Leave the driver disabled after connecting")
	flags.String("move-log", "", "Address of a move log server to record moves")
	flags.BoolP("verbose", "v", false, "Enable debug logging")
}

func main() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// loadConfig applies explicitly set flags on top of controller.LoadConfig
func loadConfig(cmd *cobra.Command) (controller.Config, error) {
	flags := cmd.Flags()

	path, _ := flags.GetString("config")
	cfg, err := controller.LoadConfig(path)
	if err != nil {
		return controller.Config{}, err
	}

	strs := map[string]*string{
		"backend":     &cfg.Backend,
		"serial-port": &cfg.SerialPort,
		"baud-rate":   &cfg.BaudRate,
		"dir-pin":     &cfg.Pins.Direction,
		"step-pin":    &cfg.Pins.Step,
		"enable-pin":  &cfg.Pins.Enable,
		"step-delay":  &cfg.StepDelay,
		"move-log":    &cfg.MoveLogAddr,
	}
	for name, field := range strs {
		if flags.Changed(name) {
			*field, _ = flags.GetString(name)
		}
	}

	if flags.Changed("start-disabled") {
		cfg.StartDisabled, _ = flags.GetBool("start-disabled")
	}

	return cfg, nil
}

func newLogger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelInfo
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = slog.LevelDebug
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func openController(cmd *cobra.Command) (*controller.Controller, controller.Config, *slog.Logger, error) {
	logger := newLogger(cmd)

	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, controller.Config{}, nil, err
	}

	c, err := controller.New(cfg, logger)
	if err != nil {
		return nil, controller.Config{}, nil, err
	}

	return c, cfg, logger, nil
}
