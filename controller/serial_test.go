package controller

import (
	"bytes"
	"io"
	"log/slog"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/calvinmclean/drv8825"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePort answers each written command with the next scripted reply
type fakePort struct {
	mu       sync.Mutex
	replies  []string
	written  []string
	readable bytes.Buffer
	closed   bool
}

func newFakePort(replies ...string) *fakePort {
	return &fakePort{replies: replies}
}

func (p *fakePort) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.written = append(p.written, string(b))
	if len(p.replies) > 0 {
		p.readable.WriteString(p.replies[0])
		p.replies = p.replies[1:]
	}
	return len(b), nil
}

// Read returns 0, nil when nothing is buffered, like a serial port read timeout
func (p *fakePort) Read(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.readable.Len() == 0 {
		return 0, nil
	}
	return p.readable.Read(b)
}

func (p *fakePort) Close() error {
	p.closed = true
	return nil
}

func (p *fakePort) commands() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	result := make([]string, len(p.written))
	for i, w := range p.written {
		result[i] = strings.TrimSuffix(w, "\n")
	}
	return result
}

func reply(lines ...string) string {
	return strings.Join(lines, "\n") + "\n" + string(rune(drv8825.TerminationChar))
}

func newTestSerialDriver(port io.ReadWriteCloser) *serialDriver {
	d := newSerialDriver(port, slog.New(slog.NewTextHandler(io.Discard, nil)))
	d.replyTimeout = 50 * time.Millisecond
	return d
}

func TestSerialDriverCommands(t *testing.T) {
	tests := []struct {
		name     string
		run      func(*serialDriver) error
		expected string
	}{
		{"Enable", (*serialDriver).Enable, "E"},
		{"Disable", (*serialDriver).Disable, "D"},
		{"SetDirection", func(d *serialDriver) error { return d.SetDirection("BACKWARD") }, "Rbackward"},
		{"Forward", func(d *serialDriver) error { return d.Forward(200, time.Millisecond) }, "F200 1000"},
		{"Backward", func(d *serialDriver) error { return d.Backward(5, 1500*time.Microsecond) }, "B5 1500"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			port := newFakePort(reply(drv8825.ReplyOK))
			d := newTestSerialDriver(port)

			err := tt.run(d)
			require.NoError(t, err)
			assert.Equal(t, []string{tt.expected}, port.commands())
		})
	}
}

func TestSerialDriverValidatesLocally(t *testing.T) {
	port := newFakePort()
	d := newTestSerialDriver(port)

	err := d.Forward(0, time.Millisecond)
	assert.ErrorIs(t, err, drv8825.ErrInvalidStepCount)

	err = d.Backward(-3, time.Millisecond)
	assert.ErrorIs(t, err, drv8825.ErrInvalidStepCount)

	err = d.SetDirection("up")
	assert.ErrorIs(t, err, drv8825.ErrInvalidDirection)

	assert.Empty(t, port.commands())
}

func TestSerialDriverStatus(t *testing.T) {
	port := newFakePort(reply("enabled=false direction=Backward", drv8825.ReplyOK))
	d := newTestSerialDriver(port)

	s, err := d.Status()
	require.NoError(t, err)
	assert.Equal(t, Status{Enabled: false, Direction: drv8825.DirectionBackward}, s)
	assert.Equal(t, []string{"S"}, port.commands())
}

func TestSerialDriverStatusMissing(t *testing.T) {
	port := newFakePort(reply(drv8825.ReplyOK))
	d := newTestSerialDriver(port)

	_, err := d.Status()
	assert.ErrorContains(t, err, "status missing")
}

func TestSerialDriverRemoteErrors(t *testing.T) {
	tests := []struct {
		name        string
		reply       string
		expectedErr error
	}{
		{
			"InvalidStepCount",
			reply(drv8825.ReplyError + drv8825.ErrInvalidStepCount.Error() + ": 0"),
			drv8825.ErrInvalidStepCount,
		},
		{
			"InvalidArgument",
			reply(drv8825.ReplyError + "invalid argument: something"),
			drv8825.ErrInvalidArgument,
		},
		{
			"Other",
			reply(drv8825.ReplyError + "error setting step line: broken"),
			ErrRemote,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newTestSerialDriver(newFakePort(tt.reply))

			err := d.Enable()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrRemote)
			assert.ErrorIs(t, err, tt.expectedErr)
		})
	}
}

func TestSerialDriverBodyLines(t *testing.T) {
	port := newFakePort(reply("Enable", "Set Verbose Mode", drv8825.ReplyOK))
	d := newTestSerialDriver(port)

	require.NoError(t, d.Enable())
}

func TestSerialDriverSplitReplies(t *testing.T) {
	// both replies arrive in the first read
	port := newFakePort(reply(drv8825.ReplyOK)+reply(drv8825.ReplyError+"unknown command: X"), "")
	d := newTestSerialDriver(port)

	require.NoError(t, d.Enable())

	err := d.Disable()
	assert.ErrorIs(t, err, ErrRemote)
	assert.ErrorContains(t, err, "unknown command: X")
}

func TestSerialDriverTimeout(t *testing.T) {
	port := newFakePort("ok\n")
	d := newTestSerialDriver(port)

	err := d.Enable()
	assert.ErrorContains(t, err, "timed out")
}

func TestSerialDriverLateReply(t *testing.T) {
	// the status reply only arrives after the next command is written
	port := newFakePort(
		"",
		reply("enabled=true direction=Forward", drv8825.ReplyOK)+reply(drv8825.ReplyError+"error setting enable line: stuck"),
		reply(drv8825.ReplyOK),
	)
	d := newTestSerialDriver(port)

	_, err := d.Status()
	assert.ErrorContains(t, err, "timed out")

	err = d.Disable()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRemote)
	assert.ErrorContains(t, err, "stuck")

	require.NoError(t, d.Enable())
	assert.Equal(t, []string{"S", "D", "E"}, port.commands())
}

func TestSerialDriverLateReplyAlreadyBuffered(t *testing.T) {
	port := newFakePort("")
	d := newTestSerialDriver(port)

	err := d.Forward(10, 0)
	assert.ErrorContains(t, err, "timed out")

	// the late reply to F and the reply to S arrive together
	port.mu.Lock()
	port.readable.WriteString(reply(drv8825.ReplyError + "late"))
	port.replies = []string{reply("enabled=false direction=Backward", drv8825.ReplyOK)}
	port.mu.Unlock()

	s, err := d.Status()
	require.NoError(t, err)
	assert.Equal(t, Status{Enabled: false, Direction: drv8825.DirectionBackward}, s)
}

func TestMoveDuration(t *testing.T) {
	tests := []struct {
		name      string
		steps     int
		stepDelay time.Duration
		expected  time.Duration
	}{
		{"NoDelay", 1000000, 0, 0},
		{"NegativeDelay", 10, -time.Millisecond, 0},
		{"Normal", 200, time.Millisecond, 400 * time.Millisecond},
		{"Saturates", math.MaxInt64 / 2, time.Hour, math.MaxInt64},
		{"SaturatesMaxSteps", math.MaxInt, time.Nanosecond, math.MaxInt64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, moveDuration(tt.steps, tt.stepDelay))
		})
	}
}

func TestSerialDriverHugeMove(t *testing.T) {
	port := newFakePort(reply(drv8825.ReplyOK))
	d := newTestSerialDriver(port)

	require.NoError(t, d.Forward(math.MaxInt64/2, time.Hour))
}

func TestSerialDriverUnexpectedReply(t *testing.T) {
	d := newTestSerialDriver(newFakePort(reply("what")))

	err := d.Enable()
	assert.ErrorContains(t, err, `unexpected reply "what"`)
}

func TestSerialDriverClose(t *testing.T) {
	port := newFakePort()
	d := newTestSerialDriver(port)

	require.NoError(t, d.Close())
	assert.True(t, port.closed)
}
