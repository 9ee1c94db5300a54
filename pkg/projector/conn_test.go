package projector

import (
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/projector-protocol/benq-go/pkg/protocol"
	"github.com/projector-protocol/benq-go/pkg/trace"
)

// fakeConn is a scripted transport connection. Each Read or ReadUntil
// pops the next chunk from the script; an exhausted script simulates
// read timeouts. Safe for concurrent use so poller tests can share it
// with the test goroutine.
type fakeConn struct {
	mu     sync.Mutex
	script [][]byte
	writes []string
	closed bool
}

func scripted(chunks ...string) *fakeConn {
	c := &fakeConn{}
	c.setScript(chunks...)
	return c
}

func (c *fakeConn) setScript(chunks ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.script = nil
	for _, chunk := range chunks {
		c.script = append(c.script, []byte(chunk))
	}
}

func (c *fakeConn) pop() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.script) == 0 {
		return nil
	}
	chunk := c.script[0]
	c.script = c.script[1:]
	return chunk
}

func (c *fakeConn) writeCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.writes)
}

func (c *fakeConn) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = false
	return nil
}

func (c *fakeConn) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.closed
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) Reset() error { return nil }

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
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writes = append(c.writes, string(data))
	return len(data), nil
}

func (c *fakeConn) SetTrace(trace.Logger, string) {}

func (c *fakeConn) String() string { return "fake" }

// newTestSession builds a promptless session on conn with short
// protocol timeouts.
func newTestSession(conn *fakeConn) *Session {
	noPrompt := false
	s := New(conn, Config{
		HasPrompt:   &noPrompt,
		LockTimeout: 50 * time.Millisecond,
		Engine: protocol.Config{
			PromptTimeout:   30 * time.Millisecond,
			ResponseTimeout: 30 * time.Millisecond,
			ReadDelay:       time.Millisecond,
		},
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	s.engine.SetHasPrompt(false)
	return s
}
