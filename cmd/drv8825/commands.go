package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"

	"github.com/calvinmclean/drv8825/controller"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Read commands from stdin",
	Long: `Read one command per line from stdin until EOF or "quit". Use "help" to list the commands.

When --metrics-addr is set, Prometheus metrics are served at /metrics on that address.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		c, cfg, logger, err := openController(cmd)
		if err != nil {
			return err
		}
		defer c.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		metricsAddr := cfg.MetricsAddr
		if cmd.Flags().Changed("metrics-addr") {
			metricsAddr, _ = cmd.Flags().GetString("metrics-addr")
		}

		if metricsAddr != "" {
			mux := http.NewServeMux()
			mux.Handle("/metrics", controller.MetricsHandler())
			server := &http.Server{Addr: metricsAddr, Handler: mux}

			go func() {
				logger.Info("serving metrics", "addr", metricsAddr)
				err := server.ListenAndServe()
				if err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("metrics server failed", "error", err)
				}
			}()
			defer server.Shutdown(context.Background())
		}

		return c.Run(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

var forwardCmd = moveCommand("forward")

var backwardCmd = moveCommand("backward")

func moveCommand(direction string) *cobra.Command {
	return &cobra.Command{
		Use:   direction + " STEPS [DELAY]",
		Short: "Move " + direction + " by STEPS steps",
		Long: `Move ` + direction + ` by STEPS steps. DELAY is held after each edge of every step pulse and
accepts a duration like 10ms or seconds like 0.01. The configured step delay is used when it is
omitted.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeOnce(cmd, direction+" "+strings.Join(args, " "))
		},
	}
}

var enableCmd = &cobra.Command{
	Use:   "enable",
	Short: "Enable the driver outputs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return executeOnce(cmd, "enable")
	},
}

var disableCmd = &cobra.Command{
	Use:   "disable",
	Short: "Disable the driver outputs so the motor can freewheel",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return executeOnce(cmd, "disable")
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the enable and direction state",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return executeOnce(cmd, "status")
	},
}

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List USB serial ports",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ports, err := controller.GetSerialPorts()
		if err != nil {
			return err
		}

		for _, p := range ports {
			fmt.Fprintln(cmd.OutOrStdout(), p)
		}
		return nil
	},
}

func init() {
	runCmd.Flags().String("metrics-addr", "", "Address to serve Prometheus metrics on, like :9090")
}

func executeOnce(cmd *cobra.Command, line string) error {
	c, _, _, err := openController(cmd)
	if err != nil {
		return err
	}
	defer c.Close()

	out, err := c.Execute(cmd.Context(), line)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}
