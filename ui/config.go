package ui

import (
	"errors"
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/data/binding"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"github.com/calvinmclean/drv8825/controller"
)

type ConfigWindow struct {
	app      fyne.App
	OnSubmit func()
}

func NewConfigWindow(app fyne.App) *ConfigWindow {
	return &ConfigWindow{
		app: app,
	}
}

// loadConfigFromPreferences keeps the values already in cfg as fallbacks
func (cw *ConfigWindow) loadConfigFromPreferences(cfg *controller.Config) {
	prefs := cw.app.Preferences()
	cfg.Backend = prefs.StringWithFallback("backend", cfg.Backend)
	cfg.SerialPort = prefs.StringWithFallback("serialPort", cfg.SerialPort)
	cfg.BaudRate = prefs.StringWithFallback("baudRate", cfg.BaudRate)
	cfg.Pins.Direction = prefs.StringWithFallback("dirPin", cfg.Pins.Direction)
	cfg.Pins.Step = prefs.StringWithFallback("stepPin", cfg.Pins.Step)
	cfg.Pins.Enable = prefs.StringWithFallback("enablePin", cfg.Pins.Enable)
	cfg.StepDelay = prefs.StringWithFallback("stepDelay", cfg.StepDelay)
	cfg.MoveLogAddr = prefs.StringWithFallback("moveLogAddr", cfg.MoveLogAddr)
	cfg.StartDisabled = prefs.BoolWithFallback("startDisabled", cfg.StartDisabled)
}

func (cw *ConfigWindow) saveConfigToPreferences(cfg *controller.Config) {
	prefs := cw.app.Preferences()
	prefs.SetString("backend", cfg.Backend)
	prefs.SetString("serialPort", cfg.SerialPort)
	prefs.SetString("baudRate", cfg.BaudRate)
	prefs.SetString("dirPin", cfg.Pins.Direction)
	prefs.SetString("stepPin", cfg.Pins.Step)
	prefs.SetString("enablePin", cfg.Pins.Enable)
	prefs.SetString("stepDelay", cfg.StepDelay)
	prefs.SetString("moveLogAddr", cfg.MoveLogAddr)
	prefs.SetBool("startDisabled", cfg.StartDisabled)
}

func (cw *ConfigWindow) Show(cfg *controller.Config) {
	window := cw.app.NewWindow("DRV8825 - Configuration")
	window.Resize(fyne.NewSize(400, 350))
	window.SetCloseIntercept(func() {
		// Treat window close as cancel
		window.Close()
		cw.app.Quit()
	})
	window.Show()

	cw.loadConfigFromPreferences(cfg)

	serialPorts, err := controller.GetSerialPorts()
	if err != nil && !errors.Is(err, controller.ErrNoUSBSerial) {
		showError(cw.app, window, fmt.Errorf("error getting serial ports: %w", err))
		return
	}

	serialPorts = append(serialPorts, controller.SerialPortNone)

	serialEntry := widget.NewSelect(serialPorts, nil)
	if cfg.SerialPort == "" {
		cfg.SerialPort = serialPorts[0]
	}
	serialEntry.Bind(binding.BindString(&cfg.SerialPort))

	backendEntry := widget.NewSelect([]string{controller.BackendGPIO, controller.BackendSerial}, nil)
	backendEntry.Bind(binding.BindString(&cfg.Backend))

	baudRateEntry := widget.NewEntry()
	baudRateEntry.Bind(binding.BindString(&cfg.BaudRate))

	dirPinEntry := widget.NewEntry()
	dirPinEntry.Bind(binding.BindString(&cfg.Pins.Direction))

	stepPinEntry := widget.NewEntry()
	stepPinEntry.Bind(binding.BindString(&cfg.Pins.Step))

	enablePinEntry := widget.NewEntry()
	enablePinEntry.Bind(binding.BindString(&cfg.Pins.Enable))

	stepDelayEntry := widget.NewEntry()
	stepDelayEntry.Bind(binding.BindString(&cfg.StepDelay))

	moveLogAddrEntry := widget.NewEntry()
	moveLogAddrEntry.SetPlaceHolder("Optional")
	moveLogAddrEntry.Bind(binding.BindString(&cfg.MoveLogAddr))

	startDisabledCheck := widget.NewCheckWithData("Start Disabled", binding.BindBool(&cfg.StartDisabled))

	validationLabel := widget.NewLabel("")
	validationLabel.Wrapping = fyne.TextWrapWord

	submitButton := widget.NewButton("Submit", func() {
		cw.saveConfigToPreferences(cfg)
		cw.OnSubmit()
		window.Close()
	})
	submitButton.Disable()

	validateForm := func() {
		err := cfg.Validate()
		if err != nil {
			validationLabel.SetText(err.Error())
			submitButton.Disable()
			return
		}
		validationLabel.SetText("")
		submitButton.Enable()
	}

	// Add listeners to field changes
	backendEntry.OnChanged = func(_ string) { validateForm() }
	serialEntry.OnChanged = func(_ string) { validateForm() }
	baudRateEntry.OnChanged = func(_ string) { validateForm() }
	dirPinEntry.OnChanged = func(_ string) { validateForm() }
	stepPinEntry.OnChanged = func(_ string) { validateForm() }
	enablePinEntry.OnChanged = func(_ string) { validateForm() }
	stepDelayEntry.OnChanged = func(_ string) { validateForm() }

	// Initial validation
	validateForm()

	form := container.NewVBox(
		widget.NewCard("Configuration", "", container.NewVBox(
			container.NewGridWithColumns(2,
				widget.NewLabel("Backend:"),
				backendEntry,
			),
			container.NewGridWithColumns(2,
				widget.NewLabel("Serial Port:"),
				serialEntry,
			),
			container.NewGridWithColumns(2,
				widget.NewLabel("Baud Rate:"),
				baudRateEntry,
			),
			container.NewGridWithColumns(2,
				widget.NewLabel("DIR Pin:"),
				dirPinEntry,
			),
			container.NewGridWithColumns(2,
				widget.NewLabel("STEP Pin:"),
				stepPinEntry,
			),
			container.NewGridWithColumns(2,
				widget.NewLabel("ENABLE Pin:"),
				enablePinEntry,
			),
			container.NewGridWithColumns(2,
				widget.NewLabel("Step Delay:"),
				stepDelayEntry,
			),
			container.NewGridWithColumns(2,
				widget.NewLabel("Move Log Address:"),
				moveLogAddrEntry,
			),
			startDisabledCheck,
		)),
		validationLabel,
		container.NewHBox(
			widget.NewButton("Cancel", func() {
				window.Close()
				cw.app.Quit()
			}),
			submitButton,
		),
	)

	window.SetContent(form)
}

func showError(app fyne.App, window fyne.Window, err error) {
	d := dialog.NewError(err, window)
	d.SetOnClosed(func() {
		app.Quit()
	})
	d.Show()
}
