package realtime

import (
	"errors"
	"sync"
	"testing"
	"time"
)

// stubConn satisfies Conn without a network peer.
type stubConn struct {
	mu      sync.Mutex
	written []any
	closed  bool
}

func (c *stubConn) WriteJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.written = append(c.written, v)
	return nil
}

func (c *stubConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *stubConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func TestHubAddDuplicate(t *testing.T) {
	h := NewHub()
	a := NewClient("conn-1", StreamAnalysis, &stubConn{})
	if err := h.Add(a); err != nil {
		t.Fatalf("add: %v", err)
	}

	dup := NewClient("conn-1", StreamMetrics, &stubConn{})
	if err := h.Add(dup); !errors.Is(err, ErrDuplicateConnection) {
		t.Errorf("expected ErrDuplicateConnection, got %v", err)
	}
}

func TestHubAddClosedClient(t *testing.T) {
	h := NewHub()
	c := NewClient("conn-1", StreamAnalysis, &stubConn{})
	c.Close()
	if err := h.Add(c); !errors.Is(err, ErrConnectionClosed) {
		t.Errorf("expected ErrConnectionClosed, got %v", err)
	}
	if h.Count(StreamAnalysis) != 0 {
		t.Error("closed client must never be registered")
	}
}

func TestHubRemoveIdempotent(t *testing.T) {
	h := NewHub()
	conn := &stubConn{}
	c := NewClient("conn-1", StreamAnalysis, conn)
	if err := h.Add(c); err != nil {
		t.Fatalf("add: %v", err)
	}

	h.Remove("conn-1")
	if !conn.isClosed() {
		t.Error("remove must close the connection")
	}
	// Second remove and unknown ids are no-ops.
	h.Remove("conn-1")
	h.Remove("never-registered")

	if h.Count(StreamAnalysis) != 0 {
		t.Errorf("count = %d, want 0", h.Count(StreamAnalysis))
	}
}

func TestHubCountPerStream(t *testing.T) {
	h := NewHub()
	for _, c := range []*Client{
		NewClient("a-1", StreamAnalysis, &stubConn{}),
		NewClient("a-2", StreamAnalysis, &stubConn{}),
		NewClient("m-1", StreamMetrics, &stubConn{}),
	} {
		if err := h.Add(c); err != nil {
			t.Fatalf("add %s: %v", c.ID(), err)
		}
	}

	if got := h.Count(StreamAnalysis); got != 2 {
		t.Errorf("analysis count = %d, want 2", got)
	}
	if got := h.Count(StreamMetrics); got != 1 {
		t.Errorf("metrics count = %d, want 1", got)
	}
}

func TestHubBroadcastIsolatesFullQueue(t *testing.T) {
	h := NewHub()

	healthy := make([]*Client, 0, 2)
	for _, id := range []string{"m-1", "m-2"} {
		c := newClient(id, StreamMetrics, &stubConn{}, 4)
		if err := h.Add(c); err != nil {
			t.Fatalf("add %s: %v", id, err)
		}
		healthy = append(healthy, c)
	}

	stuck := newClient("m-stuck", StreamMetrics, &stubConn{}, 1)
	if err := h.Add(stuck); err != nil {
		t.Fatalf("add stuck: %v", err)
	}
	// No WriteLoop runs, so one queued message fills the stuck queue.
	if !stuck.Queue("filler") {
		t.Fatal("expected filler to be accepted")
	}

	h.Broadcast(StreamMetrics, "tick")

	// The failing member is removed; everyone else got the message.
	if got := h.Count(StreamMetrics); got != 2 {
		t.Errorf("count after broadcast = %d, want 2", got)
	}
	if !stuck.Closed() {
		t.Error("expected the stuck connection to be closed")
	}
	for _, c := range healthy {
		select {
		case msg := <-c.send:
			if msg != "tick" {
				t.Errorf("client %s received %v, want tick", c.ID(), msg)
			}
		default:
			t.Errorf("client %s received nothing", c.ID())
		}
	}
}

func TestHubSendRejectionRemovesConnection(t *testing.T) {
	h := NewHub()
	c := newClient("conn-1", StreamAnalysis, &stubConn{}, 1)
	if err := h.Add(c); err != nil {
		t.Fatalf("add: %v", err)
	}

	if !h.Send("conn-1", "first") {
		t.Fatal("expected first send to succeed")
	}
	if h.Send("conn-1", "second") {
		t.Fatal("expected second send to be rejected")
	}
	if h.Count(StreamAnalysis) != 0 {
		t.Error("rejected send must deregister the connection")
	}
	if h.Send("conn-1", "third") {
		t.Error("send to a removed connection must fail")
	}
}

func TestClientQueueAfterClose(t *testing.T) {
	c := NewClient("conn-1", StreamAnalysis, &stubConn{})
	c.Close()
	if c.Queue("late") {
		t.Error("closed client must reject sends")
	}
	c.Close() // safe to call again
}

func TestClientWriteLoopDrainsInOrder(t *testing.T) {
	conn := &stubConn{}
	c := NewClient("conn-1", StreamAnalysis, conn)

	for i := 0; i < 3; i++ {
		if !c.Queue(i) {
			t.Fatalf("queue %d rejected", i)
		}
	}

	done := make(chan struct{})
	go func() {
		c.WriteLoop()
		close(done)
	}()

	// Close after the queue drains; WriteLoop exits via the done channel.
	for {
		conn.mu.Lock()
		n := len(conn.written)
		conn.mu.Unlock()
		if n == 3 {
			break
		}
		time.Sleep(time.Millisecond)
	}
	c.Close()
	<-done

	conn.mu.Lock()
	defer conn.mu.Unlock()
	for i, v := range conn.written {
		if v != i {
			t.Errorf("written[%d] = %v, want %d", i, v, i)
		}
	}
}
