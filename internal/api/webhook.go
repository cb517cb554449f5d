package api

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	apiTypes "github.com/avelling/codescope/pkg/api"
)

// handleWebhook acknowledges CI/CD pushes. Signature verification belongs
// to a fronting proxy; this layer only validates the payload shape.
func (h *Handler) handleWebhook(w http.ResponseWriter, r *http.Request) {
	webhookID := chi.URLParam(r, "webhookID")

	var payload map[string]any
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid webhook payload", err.Error())
		return
	}

	repository, ok := payload["repository"].(map[string]any)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid webhook payload", "missing repository")
		return
	}

	log.Printf("webhook %s received for %v", webhookID, repository["full_name"])

	writeJSON(w, http.StatusOK, apiTypes.WebhookResponse{
		Received:  true,
		WebhookID: webhookID,
		Timestamp: unixNow(),
		PayloadSummary: map[string]any{
			"repository": repository["full_name"],
			"action":     payload["action"],
			"ref":        payload["ref"],
		},
	})
}
