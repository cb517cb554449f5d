package realtime

import (
	"sync"
	"sync/atomic"
)

const outboundQueueSize = 64

// Conn is the subset of the websocket connection the client needs. The
// transport layer owns the real connection; the hub only holds membership.
type Conn interface {
	WriteJSON(v any) error
	Close() error
}

// Client is one bidirectional connection to a remote peer. Outbound
// messages go through a bounded FIFO queue drained by WriteLoop; when the
// queue is full the enqueue is rejected and the hub closes the connection
// rather than silently dropping events.
type Client struct {
	id     string
	stream Stream
	conn   Conn
	send   chan any
	done   chan struct{}
	closed atomic.Bool
	once   sync.Once
}

func NewClient(id string, stream Stream, conn Conn) *Client {
	return newClient(id, stream, conn, outboundQueueSize)
}

func newClient(id string, stream Stream, conn Conn, queueSize int) *Client {
	return &Client{
		id:     id,
		stream: stream,
		conn:   conn,
		send:   make(chan any, queueSize),
		done:   make(chan struct{}),
	}
}

func (c *Client) ID() string {
	return c.id
}

func (c *Client) Stream() Stream {
	return c.stream
}

func (c *Client) Closed() bool {
	return c.closed.Load()
}

// Queue enqueues a message for delivery and reports whether it was
// accepted. A full queue or a closed client rejects the message. The send
// channel is never closed, so a Queue racing Close at worst buffers a
// message that is dropped with the connection.
func (c *Client) Queue(msg any) bool {
	if c.closed.Load() {
		return false
	}
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// WriteLoop drains the outbound queue onto the wire. It is the single
// consumer of the queue and exits on close or the first write failure.
func (c *Client) WriteLoop() {
	for {
		select {
		case <-c.done:
			return
		case msg := <-c.send:
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		}
	}
}

// Close tears the connection down. Safe to call more than once; a closed
// client accepts no further sends.
func (c *Client) Close() {
	c.once.Do(func() {
		c.closed.Store(true)
		close(c.done)
		_ = c.conn.Close()
	})
}
