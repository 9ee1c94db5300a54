package protocol

import (
	"github.com/projector-protocol/benq-go/pkg/trace"
)

// fakeConn is a scripted transport connection. Each Read or ReadUntil
// pops the next chunk from the script; an empty chunk simulates a
// read timeout. Writes are recorded.
type fakeConn struct {
	script  [][]byte
	writes  []string
	resets  int
	closed  bool
	openErr error
}

func scripted(chunks ...string) *fakeConn {
	c := &fakeConn{}
	for _, chunk := range chunks {
		c.script = append(c.script, []byte(chunk))
	}
	return c
}

func (c *fakeConn) pop() []byte {
	if len(c.script) == 0 {
		return nil
	}
	chunk := c.script[0]
	c.script = c.script[1:]
	return chunk
}

func (c *fakeConn) Open() error {
	if c.openErr != nil {
		return c.openErr
	}
	c.closed = false
	return nil
}

func (c *fakeConn) IsOpen() bool { return !c.closed }

func (c *fakeConn) Close() error {
	c.closed = true
	return nil
}

func (c *fakeConn) Reset() error {
	c.resets++
	return nil
}

func (c *fakeConn) Read(maxBytes int) ([]byte, error) {
	chunk := c.pop()
	if len(chunk) > maxBytes {
		chunk = chunk[:maxBytes]
	}
	return chunk, nil
}

func (c *fakeConn) ReadUntil(separator byte) ([]byte, error) {
	return c.pop(), nil
}

func (c *fakeConn) Write(data []byte) (int, error) {
	c.writes = append(c.writes, string(data))
	return len(data), nil
}

func (c *fakeConn) SetTrace(trace.Logger, string) {}

func (c *fakeConn) String() string { return "fake" }
