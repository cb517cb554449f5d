package api

import (
	"log"
	"net/http"

	"github.com/avelling/codescope/internal/realtime"
	wire "github.com/avelling/codescope/pkg/realtime"
)

// metricsWebSocket serves one metrics-stream connection. A newly joined
// observer always gets a full snapshot before any periodic update,
// however long the emitter has been ticking for everyone else.
func (h *Handler) metricsWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	client := realtime.NewClient(generateID(), realtime.StreamMetrics, conn)

	// Both handshake messages go onto the queue before the client joins the
	// hub; a broadcast tick can therefore never slip a metrics_update ahead
	// of the snapshot.
	client.Queue(wire.ConnectionEstablished{
		Type:          wire.MessageTypeConnectionEstablished,
		ServerVersion: ServerVersion,
		Capabilities:  capabilities,
		Timestamp:     unixNow(),
	})
	client.Queue(h.telemetry.Snapshot())

	if err := h.hub.Add(client); err != nil {
		_ = conn.Close()
		return
	}
	defer func() {
		h.hub.Remove(client.ID())
		log.Printf("metrics connection %s closed", client.ID())
	}()

	go client.WriteLoop()

	// The metrics stream is outbound-only; the read loop just waits for
	// the peer to go away.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
