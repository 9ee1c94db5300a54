package transport

import (
	"time"

	"go.bug.st/serial"

	"github.com/projector-protocol/benq-go/pkg/trace"
)

// SerialReadTimeout is the per-read timeout on a serial link.
const SerialReadTimeout = 50 * time.Millisecond

// BaudRates lists the baud rates BenQ projectors support.
var BaudRates = []int{2400, 4800, 9600, 14400, 19200, 38400, 57600, 115200}

// ValidBaudRate reports whether rate is a supported baud rate.
func ValidBaudRate(rate int) bool {
	for _, r := range BaudRates {
		if r == rate {
			return true
		}
	}
	return false
}

// SerialConnection connects to a projector over RS-232.
// The line is always 8 data bits, no parity, one stop bit.
type SerialConnection struct {
	device   string
	baudRate int

	port serial.Port
	tr   tracer
}

// NewSerialConnection creates a serial connection for the given device
// path and baud rate. The connection is not opened until Open is called.
func NewSerialConnection(device string, baudRate int) *SerialConnection {
	return &SerialConnection{
		device:   device,
		baudRate: baudRate,
	}
}

// Open opens the serial port. Opening an open connection is a no-op.
func (c *SerialConnection) Open() error {
	if c.IsOpen() {
		return nil
	}

	mode := &serial.Mode{
		BaudRate: c.baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(c.device, mode)
	if err != nil {
		c.tr.error(err.Error())
		return &ConnectionError{Conn: c.device, Err: err}
	}
	if err := port.SetReadTimeout(SerialReadTimeout); err != nil {
		_ = port.Close()
		return &ConnectionError{Conn: c.device, Err: err}
	}

	c.port = port
	c.tr.state("open")
	return nil
}

// IsOpen reports whether the serial port is open.
func (c *SerialConnection) IsOpen() bool {
	return c.port != nil
}

// Close closes the serial port. Close is idempotent.
func (c *SerialConnection) Close() error {
	if c.port == nil {
		return nil
	}

	err := c.port.Close()
	c.port = nil
	c.tr.state("close")
	if err != nil {
		return &ConnectionError{Conn: c.device, Err: err}
	}
	return nil
}

// Reset discards unread input and pending output.
func (c *SerialConnection) Reset() error {
	if c.port == nil {
		return ErrNotOpen
	}

	if err := c.port.ResetInputBuffer(); err != nil {
		return c.fail(err)
	}
	if err := c.port.ResetOutputBuffer(); err != nil {
		return c.fail(err)
	}
	c.tr.state("reset")
	return nil
}

// Read reads up to maxBytes bytes. A read timeout yields an empty slice.
func (c *SerialConnection) Read(maxBytes int) ([]byte, error) {
	if c.port == nil {
		return nil, ErrNotOpen
	}

	buf := make([]byte, maxBytes)
	n, err := c.port.Read(buf)
	if err != nil {
		return nil, c.fail(err)
	}
	c.tr.data(trace.DirectionIn, buf[:n])
	return buf[:n], nil
}

// ReadUntil reads bytes until the separator is seen. On timeout the
// partial data read so far is returned.
func (c *SerialConnection) ReadUntil(separator byte) ([]byte, error) {
	if c.port == nil {
		return nil, ErrNotOpen
	}

	var data []byte
	single := make([]byte, 1)
	for {
		n, err := c.port.Read(single)
		if err != nil {
			return nil, c.fail(err)
		}
		if n == 0 {
			// Timeout: the line went quiet.
			c.tr.data(trace.DirectionIn, data)
			return data, nil
		}
		data = append(data, single[0])
		if single[0] == separator {
			c.tr.data(trace.DirectionIn, data)
			return data, nil
		}
	}
}

// Write writes data to the serial port.
func (c *SerialConnection) Write(data []byte) (int, error) {
	if c.port == nil {
		return 0, ErrNotOpen
	}

	n, err := c.port.Write(data)
	if err != nil {
		return n, c.fail(err)
	}
	c.tr.data(trace.DirectionOut, data[:n])
	return n, nil
}

// SetTrace configures wire tracing. Pass nil to disable.
func (c *SerialConnection) SetTrace(logger trace.Logger, connID string) {
	c.tr.set(logger, connID)
}

// String returns the serial device path.
func (c *SerialConnection) String() string {
	return c.device
}

// fail closes the port and wraps err in a *ConnectionError.
func (c *SerialConnection) fail(err error) error {
	c.tr.error(err.Error())
	_ = c.Close()
	return &ConnectionError{Conn: c.device, Err: err}
}
