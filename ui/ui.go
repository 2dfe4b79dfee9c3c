package ui

import (
	"context"
	"io"
	"strings"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
)

const maxLogLines = 200

// StepperUI is a jog panel for the stepper. It is also an io.Writer so controller output can
// be shown in the log accordion
type StepperUI struct {
	app fyne.App

	logMtx     sync.Mutex
	logLines   []string
	logContent *widget.Label
	logScroll  *container.Scroll
}

func NewStepperUI(app fyne.App) *StepperUI {
	logContent := widget.NewLabel("")
	logScroll := container.NewVScroll(logContent)
	logScroll.SetMinSize(fyne.NewSize(300, 150))

	return &StepperUI{
		app:        app,
		logContent: logContent,
		logScroll:  logScroll,
	}
}

// Write adds each line of p to the log
func (ui *StepperUI) Write(p []byte) (int, error) {
	ui.logMtx.Lock()
	for line := range strings.SplitSeq(strings.TrimRight(string(p), "\n"), "\n") {
		ui.logLines = append(ui.logLines, line)
	}
	if len(ui.logLines) > maxLogLines {
		ui.logLines = ui.logLines[len(ui.logLines)-maxLogLines:]
	}
	text := strings.Join(ui.logLines, "\n")
	ui.logMtx.Unlock()

	fyne.Do(func() {
		ui.logContent.SetText(text)
		ui.logScroll.ScrollToBottom()
	})

	return len(p), nil
}

// Show opens the jog panel. Commands are written to w. Closing the window quits the app
func (ui *StepperUI) Show(ctx context.Context, w io.Writer, startEnabled bool) {
	window := ui.app.NewWindow("DRV8825")

	lastMoveTimer := newTimer()
	lastMoveTimer.Go(ctx)

	c := &controllerWrapper{writer: w, lastMoveTimer: lastMoveTimer}

	enableCheck := widget.NewCheck("Enabled", c.SetEnabled)
	enableCheck.Checked = startEnabled

	directionSelect := widget.NewSelect([]string{"forward", "backward"}, c.SetDirection)
	directionSelect.Selected = "forward"

	stepsEntry := widget.NewEntry()
	stepsEntry.SetPlaceHolder("Steps")
	stepsEntry.SetText("200")

	delayEntry := widget.NewEntry()
	delayEntry.SetPlaceHolder("Delay (default)")

	moveButton := widget.NewButton("Move", func() {
		err := c.Move(jogState{
			direction: directionSelect.Selected,
			steps:     stepsEntry.Text,
			delay:     delayEntry.Text,
		})
		if err != nil {
			dialog.ShowError(err, window)
		}
	})

	statusButton := widget.NewButton("Status", c.Status)

	content := container.NewVBox(
		container.NewHBox(
			enableCheck,
			layout.NewSpacer(),
			widget.NewLabel("Last move:"),
			container.NewPadded(lastMoveTimer.text),
		),
		container.NewGridWithColumns(2,
			widget.NewLabel("Direction:"),
			directionSelect,
		),
		container.NewGridWithColumns(2,
			widget.NewLabel("Steps:"),
			stepsEntry,
		),
		container.NewGridWithColumns(2,
			widget.NewLabel("Step Delay:"),
			delayEntry,
		),
		container.NewHBox(moveButton, statusButton),
		widget.NewAccordion(
			widget.NewAccordionItem("Logs", ui.logScroll),
		),
	)

	go func() {
		<-ctx.Done()
		fyne.Do(func() {
			ui.app.Quit()
		})
	}()

	window.SetOnClosed(func() {
		ui.app.Quit()
	})
	window.SetContent(content)
	window.Resize(fyne.NewSize(400, 300))
	window.Show()
}

// ShowError shows err in a new window and quits the app when it is closed
func ShowError(app fyne.App, err error) {
	window := app.NewWindow("Error")
	window.Resize(fyne.NewSize(400, 150))
	window.Show()
	showError(app, window, err)
}
