package realtime

import (
	"io"
	"sync"
	"testing"
)

// fakeConn is an in-memory Conn. Reads are fed through a channel so tests can
// script frames and then hang up; writes are recorded.
type fakeConn struct {
	frames chan []byte

	mu      sync.Mutex
	written []interface{}
	closed  bool
}

func newFakeConn(frames ...string) *fakeConn {
	c := &fakeConn{frames: make(chan []byte, len(frames)+1)}
	for _, f := range frames {
		c.frames <- []byte(f)
	}
	close(c.frames)
	return c
}

func (c *fakeConn) ReadMessage() (int, []byte, error) {
	data, ok := <-c.frames
	if !ok {
		return 0, nil, io.EOF
	}
	return 1, data, nil
}

func (c *fakeConn) WriteJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.written = append(c.written, v)
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) events() []interface{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]interface{}, len(c.written))
	copy(out, c.written)
	return out
}

func TestRegistryFirstAndLastEdges(t *testing.T) {
	r := NewRegistry()

	s1 := NewSession("u1", "alice", newFakeConn())
	s2 := NewSession("u1", "alice", newFakeConn())

	if !r.Register(s1) {
		t.Error("first session not reported as first")
	}
	if r.Register(s2) {
		t.Error("second session reported as first")
	}

	if r.Unregister(s1) {
		t.Error("unregister with a session remaining reported as last")
	}
	if !r.Unregister(s2) {
		t.Error("final unregister not reported as last")
	}
	if got := len(r.SessionsFor("u1")); got != 0 {
		t.Errorf("sessions after teardown = %d", got)
	}
}

func TestRegistryUnregisterClosesConn(t *testing.T) {
	r := NewRegistry()
	conn := newFakeConn()
	s := NewSession("u1", "alice", conn)

	r.Register(s)
	r.Unregister(s)

	if !conn.closed {
		t.Error("connection left open after unregister")
	}
}

func TestRegistryBroadcastReachesEverySession(t *testing.T) {
	r := NewRegistry()
	c1 := newFakeConn()
	c2 := newFakeConn()
	r.Register(NewSession("u1", "alice", c1))
	r.Register(NewSession("u1", "alice", c2))

	other := newFakeConn()
	r.Register(NewSession("u2", "bob", other))

	r.BroadcastTo("u1", ErrorEvent{Type: EventError, Error: "x"})

	if len(c1.events()) != 1 || len(c2.events()) != 1 {
		t.Errorf("u1 sessions got %d and %d events, want 1 and 1", len(c1.events()), len(c2.events()))
	}
	if len(other.events()) != 0 {
		t.Errorf("u2 received %d events, want 0", len(other.events()))
	}
}

func TestRegistryBroadcastToOfflineUserIsNoop(t *testing.T) {
	r := NewRegistry()
	r.BroadcastTo("ghost", ErrorEvent{Type: EventError, Error: "x"})
}
