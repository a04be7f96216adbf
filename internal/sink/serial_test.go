package sink

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.bug.st/serial"
)

func TestParseSerialPathDefaults(t *testing.T) {
	port, mode, err := parseSerialPath("/dev/ttyUSB0")
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyUSB0", port)
	assert.Equal(t, 4800, mode.BaudRate)
	assert.Equal(t, 8, mode.DataBits)
	assert.Equal(t, serial.NoParity, mode.Parity)
	assert.Equal(t, serial.OneStopBit, mode.StopBits)
}

func TestParseSerialPathFullySpecified(t *testing.T) {
	port, mode, err := parseSerialPath("COM3:9600:7:E:2")
	require.NoError(t, err)
	assert.Equal(t, "COM3", port)
	assert.Equal(t, 9600, mode.BaudRate)
	assert.Equal(t, 7, mode.DataBits)
	assert.Equal(t, serial.EvenParity, mode.Parity)
	assert.Equal(t, serial.TwoStopBits, mode.StopBits)
}

func TestParseSerialPathRejectsEmptyPort(t *testing.T) {
	_, _, err := parseSerialPath("")
	require.Error(t, err)
}

func TestParseSerialPathRejectsBadBaud(t *testing.T) {
	_, _, err := parseSerialPath("COM3:abc")
	require.Error(t, err)
}
