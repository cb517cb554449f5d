package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/avelling/codescope/internal/realtime"
	"github.com/avelling/codescope/internal/service"
	wire "github.com/avelling/codescope/pkg/realtime"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// analysisWebSocket owns one analysis-stream connection: it registers the
// client, runs the read loop, and tears down the bound session when the
// peer goes away. Every inbound message gets either an effect or an error
// reply; none are dropped silently.
func (h *Handler) analysisWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	client := realtime.NewClient(generateID(), realtime.StreamAnalysis, conn)
	if err := h.hub.Add(client); err != nil {
		_ = conn.Close()
		return
	}
	defer func() {
		h.sessions.Detach(client.ID())
		h.hub.Remove(client.ID())
		log.Printf("analysis connection %s closed", client.ID())
	}()

	go client.WriteLoop()

	client.Queue(wire.ConnectionEstablished{
		Type:          wire.MessageTypeConnectionEstablished,
		ServerVersion: ServerVersion,
		Capabilities:  capabilities,
		Timestamp:     unixNow(),
	})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var cmd wire.ClientCommand
		if err := json.Unmarshal(raw, &cmd); err != nil {
			h.sendWSError(client, "malformed message")
			continue
		}

		switch cmd.Action {
		case wire.ActionStartAnalysis:
			if _, err := h.sessions.Start(client.ID(), cmd.Path); err != nil {
				if errors.Is(err, service.ErrAlreadyRunning) {
					h.sendWSError(client, "analysis already running")
				} else {
					h.sendWSError(client, err.Error())
				}
			}
		case wire.ActionCancelAnalysis:
			if err := h.sessions.Cancel(client.ID()); err != nil {
				h.sendWSError(client, "no active analysis session")
			}
		default:
			h.sendWSError(client, "unrecognized action: "+string(cmd.Action))
		}
	}
}

func (h *Handler) sendWSError(client *realtime.Client, message string) {
	if !client.Queue(wire.ErrorMessage{Type: wire.MessageTypeError, Message: message}) {
		h.hub.Remove(client.ID())
	}
}
