package main

import (
	"context"
	"io"
	"log/slog"
	"os"

	"fyne.io/fyne/v2/app"
	"github.com/calvinmclean/drv8825/controller"
	"github.com/calvinmclean/drv8825/ui"
	"github.com/spf13/cobra"
)

var uiCmd = &cobra.Command{
	Use:   "ui",
	Short: "Open the configuration window and jog panel",
	Long: `Open the configuration window and then a jog panel for the stepper. Commands typed on stdin
are also run, and all output is shown in the panel's log. The panel stays open when stdin is
closed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		logger := newLogger(cmd)

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		application := app.NewWithID("com.calvinmclean.drv8825")

		var (
			input *io.PipeWriter
			done  <-chan struct{}
		)

		configWindow := ui.NewConfigWindow(application)
		configWindow.OnSubmit = func() {
			c, err := controller.New(cfg, logger)
			if err != nil {
				ui.ShowError(application, err)
				return
			}

			stepperUI := ui.NewStepperUI(application)
			input, done = startController(ctx, c, os.Stdin, io.MultiWriter(cmd.OutOrStdout(), stepperUI), cancel, logger)

			stepperUI.Show(ctx, input, !cfg.StartDisabled)
		}
		configWindow.Show(&cfg)

		application.Run()

		// the window is closed so stop reading commands and release the driver
		cancel()
		if input != nil {
			input.Close()
			<-done
		}

		return nil
	},
}

type commandRunner interface {
	Run(ctx context.Context, r io.Reader, w io.Writer) error
	Close() error
}

// startController runs c on lines from stdin and from the returned writer until "quit", a read
// error, or the writer is closed. Then c is closed, stop is called, and done is closed. Reaching
// the end of stdin does not stop c
func startController(ctx context.Context, c commandRunner, stdin io.Reader, out io.Writer, stop func(), logger *slog.Logger) (*io.PipeWriter, <-chan struct{}) {
	r, w := io.Pipe()

	// read from Stdin also
	go func() {
		_, _ = io.Copy(w, stdin)
	}()

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer stop()
		defer c.Close()

		err := c.Run(ctx, r, out)
		if err != nil {
			logger.Error("error running controller", "error", err)
		}
	}()

	return w, done
}
