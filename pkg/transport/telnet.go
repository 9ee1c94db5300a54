package transport

import (
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"time"

	"github.com/projector-protocol/benq-go/pkg/trace"
)

// Telnet connection constants.
const (
	// DefaultTelnetPort is the port BenQ network bridges listen on.
	DefaultTelnetPort = 8000

	// TelnetReadTimeout is the per-read timeout on a network link.
	TelnetReadTimeout = 200 * time.Millisecond

	// DialTimeout bounds connection establishment, distinct from the
	// read timeout.
	DialTimeout = 10 * time.Second
)

// TelnetConnection connects to a projector over a raw TCP socket,
// either the projector's integrated network port or a
// serial-to-network bridge.
type TelnetConnection struct {
	host string
	port int

	conn net.Conn
	tr   tracer
}

// NewTelnetConnection creates a telnet connection for the given host
// and port. The connection is not opened until Open is called.
func NewTelnetConnection(host string, port int) *TelnetConnection {
	return &TelnetConnection{
		host: host,
		port: port,
	}
}

// Open dials the projector. Opening an open connection is a no-op.
// Exceeding the dial timeout returns a *ConnectionError wrapping
// ErrConnectionTimeout.
func (c *TelnetConnection) Open() error {
	if c.IsOpen() {
		return nil
	}

	conn, err := net.DialTimeout("tcp", c.String(), DialTimeout)
	if err != nil {
		c.tr.error(err.Error())
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return &ConnectionError{Conn: c.String(), Err: ErrConnectionTimeout}
		}
		return &ConnectionError{Conn: c.String(), Err: err}
	}

	c.conn = conn
	c.tr.state("open")
	return nil
}

// IsOpen reports whether the socket is connected.
func (c *TelnetConnection) IsOpen() bool {
	return c.conn != nil
}

// Close closes the socket. Close is idempotent.
func (c *TelnetConnection) Close() error {
	if c.conn == nil {
		return nil
	}

	err := c.conn.Close()
	c.conn = nil
	c.tr.state("close")
	if err != nil {
		return &ConnectionError{Conn: c.String(), Err: err}
	}
	return nil
}

// Reset drains unread input. TCP has no output buffer to flush.
func (c *TelnetConnection) Reset() error {
	if c.conn == nil {
		return ErrNotOpen
	}

	buf := make([]byte, 512)
	for {
		_ = c.conn.SetReadDeadline(time.Now().Add(TelnetReadTimeout))
		n, err := c.conn.Read(buf)
		if err != nil {
			if isTimeout(err) {
				break
			}
			return c.fail(err)
		}
		if n == 0 {
			break
		}
	}
	c.tr.state("reset")
	return nil
}

// Read reads up to maxBytes bytes. A read timeout yields an empty slice.
func (c *TelnetConnection) Read(maxBytes int) ([]byte, error) {
	if c.conn == nil {
		return nil, ErrNotOpen
	}

	buf := make([]byte, maxBytes)
	_ = c.conn.SetReadDeadline(time.Now().Add(TelnetReadTimeout))
	n, err := c.conn.Read(buf)
	if err != nil && !isTimeout(err) {
		return nil, c.fail(err)
	}
	c.tr.data(trace.DirectionIn, buf[:n])
	return buf[:n], nil
}

// ReadUntil reads bytes until the separator is seen. On timeout the
// partial data read so far is returned.
func (c *TelnetConnection) ReadUntil(separator byte) ([]byte, error) {
	if c.conn == nil {
		return nil, ErrNotOpen
	}

	var data []byte
	single := make([]byte, 1)
	for {
		_ = c.conn.SetReadDeadline(time.Now().Add(TelnetReadTimeout))
		n, err := c.conn.Read(single)
		if err != nil {
			if isTimeout(err) {
				c.tr.data(trace.DirectionIn, data)
				return data, nil
			}
			return nil, c.fail(err)
		}
		if n == 0 {
			continue
		}
		data = append(data, single[0])
		if single[0] == separator {
			c.tr.data(trace.DirectionIn, data)
			return data, nil
		}
	}
}

// Write writes data to the socket.
func (c *TelnetConnection) Write(data []byte) (int, error) {
	if c.conn == nil {
		return 0, ErrNotOpen
	}

	n, err := c.conn.Write(data)
	if err != nil {
		return n, c.fail(err)
	}
	c.tr.data(trace.DirectionOut, data[:n])
	return n, nil
}

// SetTrace configures wire tracing. Pass nil to disable.
func (c *TelnetConnection) SetTrace(logger trace.Logger, connID string) {
	c.tr.set(logger, connID)
}

// String returns "host:port".
func (c *TelnetConnection) String() string {
	return net.JoinHostPort(c.host, strconv.Itoa(c.port))
}

// fail closes the socket and wraps err in a *ConnectionError.
// io.EOF means the peer closed the link, which is still a connection
// fault from the session's point of view.
func (c *TelnetConnection) fail(err error) error {
	c.tr.error(err.Error())
	_ = c.Close()
	if err == io.EOF {
		err = fmt.Errorf("connection closed by peer")
	}
	return &ConnectionError{Conn: c.String(), Err: err}
}

// isTimeout reports whether err is a read-deadline timeout.
func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
