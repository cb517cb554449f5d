package realtime

import (
	"errors"
	"log"
	"sync"
)

var (
	ErrDuplicateConnection = errors.New("connection already registered")
	ErrConnectionClosed    = errors.New("connection is closed")
)

// Hub is the authoritative registry of live connections per stream. The
// mutex guards membership only; per-connection sends happen outside it so
// one slow consumer never stalls another.
type Hub struct {
	mu      sync.Mutex
	streams map[Stream]map[string]*Client
}

func NewHub() *Hub {
	return &Hub{
		streams: map[Stream]map[string]*Client{
			StreamAnalysis: {},
			StreamMetrics:  {},
		},
	}
}

// Add registers a connection under its stream kind.
func (h *Hub) Add(c *Client) error {
	if c.Closed() {
		return ErrConnectionClosed
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.lookupLocked(c.ID()) != nil {
		return ErrDuplicateConnection
	}
	h.streams[c.Stream()][c.ID()] = c
	return nil
}

// Remove unregisters and closes a connection. Removing an id that is
// already absent is a no-op; disconnect races must be idempotent.
func (h *Hub) Remove(id string) {
	h.mu.Lock()
	c := h.lookupLocked(id)
	if c != nil {
		delete(h.streams[c.Stream()], id)
	}
	h.mu.Unlock()

	if c != nil {
		c.Close()
	}
}

// Send enqueues a message onto one connection's queue and reports whether
// it was delivered. A rejected send closes and deregisters the connection.
func (h *Hub) Send(id string, msg any) bool {
	h.mu.Lock()
	c := h.lookupLocked(id)
	h.mu.Unlock()
	if c == nil {
		return false
	}
	if c.Queue(msg) {
		return true
	}
	log.Printf("realtime: dropping connection %s, outbound queue rejected send", id)
	h.Remove(id)
	return false
}

// Broadcast enqueues a message onto every connection of a stream kind. A
// failure on one member closes and removes that member only; the rest of
// the broadcast proceeds and no error surfaces to the caller.
func (h *Hub) Broadcast(stream Stream, msg any) {
	h.mu.Lock()
	members := make([]*Client, 0, len(h.streams[stream]))
	for _, c := range h.streams[stream] {
		members = append(members, c)
	}
	h.mu.Unlock()

	for _, c := range members {
		if c.Queue(msg) {
			continue
		}
		log.Printf("realtime: dropping connection %s mid-broadcast", c.ID())
		h.Remove(c.ID())
	}
}

// Count returns the current membership size of a stream kind.
func (h *Hub) Count(stream Stream) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.streams[stream])
}

func (h *Hub) lookupLocked(id string) *Client {
	for _, members := range h.streams {
		if c, ok := members[id]; ok {
			return c
		}
	}
	return nil
}
