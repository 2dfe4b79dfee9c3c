package controller

import (
	"errors"
	"testing"

	"github.com/calvinmclean/drv8825"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/gpio/gpiotest"
)

type failingPin struct {
	*gpiotest.Pin
}

func (p failingPin) Out(gpio.Level) error {
	return errors.New("pin is busy")
}

func testPins() (map[string]*gpiotest.Pin, func(string) gpio.PinIO) {
	pins := map[string]*gpiotest.Pin{
		"GPIO20": {N: "GPIO20", Num: 20},
		"GPIO21": {N: "GPIO21", Num: 21},
		"GPIO16": {N: "GPIO16", Num: 16},
	}
	return pins, func(name string) gpio.PinIO {
		p, ok := pins[name]
		if !ok {
			return nil
		}
		return p
	}
}

func TestGPIODriver(t *testing.T) {
	pins, lookup := testPins()

	d, err := newGPIODriver(lookup, DefaultConfig().Pins, false)
	require.NoError(t, err)

	t.Run("InitialLevels", func(t *testing.T) {
		assert.Equal(t, gpio.Low, pins["GPIO20"].Read())
		assert.Equal(t, gpio.Low, pins["GPIO21"].Read())
		assert.Equal(t, gpio.Low, pins["GPIO16"].Read())

		s, err := d.Status()
		require.NoError(t, err)
		assert.Equal(t, Status{Enabled: true, Direction: drv8825.DirectionForward}, s)
	})

	t.Run("Disable", func(t *testing.T) {
		require.NoError(t, d.Disable())
		assert.Equal(t, gpio.High, pins["GPIO16"].Read())

		require.NoError(t, d.Enable())
		assert.Equal(t, gpio.Low, pins["GPIO16"].Read())
	})

	t.Run("Backward", func(t *testing.T) {
		require.NoError(t, d.Backward(3, 0))
		assert.Equal(t, gpio.High, pins["GPIO20"].Read())
		assert.Equal(t, gpio.Low, pins["GPIO21"].Read())

		s, err := d.Status()
		require.NoError(t, err)
		assert.Equal(t, drv8825.DirectionBackward, s.Direction)
	})

	t.Run("SetDirection", func(t *testing.T) {
		require.NoError(t, d.SetDirection("FORWARD"))
		assert.Equal(t, gpio.Low, pins["GPIO20"].Read())
	})

	require.NoError(t, d.Close())
}

func TestGPIODriverStartDisabled(t *testing.T) {
	pins, lookup := testPins()

	_, err := newGPIODriver(lookup, DefaultConfig().Pins, true)
	require.NoError(t, err)

	assert.Equal(t, gpio.High, pins["GPIO16"].Read())
}

func TestGPIODriverErrors(t *testing.T) {
	_, lookup := testPins()

	tests := []struct {
		name        string
		pins        PinConfig
		lookup      func(string) gpio.PinIO
		expectedErr error
		errContains string
	}{
		{
			"DuplicatePin",
			PinConfig{Direction: "GPIO20", Step: "GPIO20", Enable: "GPIO16"},
			lookup,
			drv8825.ErrDuplicatePin,
			"",
		},
		{
			"MissingPin",
			PinConfig{Direction: "GPIO20", Step: "GPIO21"},
			lookup,
			nil,
			"pins are required",
		},
		{
			"UnknownPin",
			PinConfig{Direction: "GPIO20", Step: "GPIO21", Enable: "GPIO99"},
			lookup,
			nil,
			`unknown pin "GPIO99"`,
		},
		{
			"OutputFails",
			DefaultConfig().Pins,
			func(name string) gpio.PinIO {
				return failingPin{&gpiotest.Pin{N: name}}
			},
			nil,
			"pin is busy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newGPIODriver(tt.lookup, tt.pins, false)
			require.Error(t, err)
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
			}
			if tt.errContains != "" {
				assert.ErrorContains(t, err, tt.errContains)
			}
		})
	}
}

func TestGPIODriverRegistry(t *testing.T) {
	names := PinConfig{Direction: "DRV_TEST_DIR", Step: "DRV_TEST_STEP", Enable: "DRV_TEST_EN"}
	for i, name := range []string{names.Direction, names.Step, names.Enable} {
		require.NoError(t, gpioreg.Register(&gpiotest.Pin{N: name, Num: 1000 + i}))
	}
	t.Cleanup(func() {
		for _, name := range []string{names.Direction, names.Step, names.Enable} {
			_ = gpioreg.Unregister(name)
		}
	})

	d, err := newGPIODriver(gpioreg.ByName, names, false)
	require.NoError(t, err)

	require.NoError(t, d.Forward(2, 0))
	assert.Equal(t, gpio.Low, gpioreg.ByName(names.Direction).Read())
}
