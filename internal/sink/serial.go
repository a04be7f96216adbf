// Package sink provides driver output destinations beyond an in-process
// io.Writer: a real serial port, adapted from the teacher's
// pkg/gnssgo/stream OpenSerial path grammar and reimplemented directly
// against go.bug.st/serial instead of the RTK-stream plumbing that
// grammar originally served.
package sink

import (
	"fmt"
	"strconv"
	"strings"

	"go.bug.st/serial"
)

// OpenSerial opens a real serial port for the driver to write sentences
// to. path follows the teacher's colon-separated grammar:
//
//	port[:baud[:databits[:parity[:stopbits]]]]
//
// e.g. "/dev/ttyUSB0:4800:8:N:1" or simply "COM3" to take all defaults
// (4800 8N1, the common NMEA serial rate).
func OpenSerial(path string) (serial.Port, error) {
	portName, mode, err := parseSerialPath(path)
	if err != nil {
		return nil, err
	}

	port, err := serial.Open(portName, mode)
	if err != nil {
		return nil, fmt.Errorf("sink: open serial port %q: %w", portName, err)
	}
	return port, nil
}

// parseSerialPath is split out from OpenSerial so the path grammar can
// be exercised without a real serial device attached.
func parseSerialPath(path string) (string, *serial.Mode, error) {
	parts := strings.Split(path, ":")
	portName := parts[0]
	if portName == "" {
		return "", nil, fmt.Errorf("sink: empty serial port path")
	}

	mode := &serial.Mode{
		BaudRate: 4800,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	if len(parts) > 1 && parts[1] != "" {
		baud, err := strconv.Atoi(parts[1])
		if err != nil {
			return "", nil, fmt.Errorf("sink: invalid baud rate %q: %w", parts[1], err)
		}
		mode.BaudRate = baud
	}
	if len(parts) > 2 && parts[2] != "" {
		bits, err := strconv.Atoi(parts[2])
		if err != nil {
			return "", nil, fmt.Errorf("sink: invalid data bits %q: %w", parts[2], err)
		}
		mode.DataBits = bits
	}
	if len(parts) > 3 && parts[3] != "" {
		switch strings.ToUpper(parts[3]) {
		case "N":
			mode.Parity = serial.NoParity
		case "E":
			mode.Parity = serial.EvenParity
		case "O":
			mode.Parity = serial.OddParity
		default:
			return "", nil, fmt.Errorf("sink: invalid parity %q", parts[3])
		}
	}
	if len(parts) > 4 && parts[4] != "" {
		switch parts[4] {
		case "1":
			mode.StopBits = serial.OneStopBit
		case "2":
			mode.StopBits = serial.TwoStopBits
		default:
			return "", nil, fmt.Errorf("sink: invalid stop bits %q", parts[4])
		}
	}

	return portName, mode, nil
}
