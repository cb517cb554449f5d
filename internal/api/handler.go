// Package api routes REST and websocket requests to the analysis services.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/avelling/codescope/internal/config"
	"github.com/avelling/codescope/internal/engine"
	"github.com/avelling/codescope/internal/realtime"
	"github.com/avelling/codescope/internal/service"
	"github.com/avelling/codescope/internal/storage"
	apiTypes "github.com/avelling/codescope/pkg/api"
)

const ServerVersion = "1.0.0"

var capabilities = []string{"realtime_analysis", "live_metrics", "status_updates"}

// Handler wires the REST surface and both websocket streams to the hub,
// the session manager, and the engine.
type Handler struct {
	cfg       *config.Config
	hub       *realtime.Hub
	sessions  *service.SessionManager
	telemetry *service.TelemetryEmitter
	engine    engine.Engine
	reports   *storage.ReportStorage
}

func NewHandler(cfg *config.Config, hub *realtime.Hub, sessions *service.SessionManager, telemetry *service.TelemetryEmitter, eng engine.Engine, reports *storage.ReportStorage) *Handler {
	return &Handler{
		cfg:       cfg,
		hub:       hub,
		sessions:  sessions,
		telemetry: telemetry,
		engine:    eng,
		reports:   reports,
	}
}

// Mount registers all routes on the provided router.
func (h *Handler) Mount(r chi.Router) {
	r.Get("/", h.dashboard)
	r.Get("/health", h.health)
	r.Post("/api/v1/analyze", h.analyzeCodebase)
	r.Post("/api/v1/analyze-files", h.analyzeFiles)
	r.Post("/api/v1/ide-analyze", h.ideAnalyze)
	r.Get("/api/v1/metrics", h.serverMetrics)
	r.Get("/api/v1/supported-languages", h.supportedLanguages)
	r.Post("/api/v1/webhook/{webhookID}", h.handleWebhook)
	r.Get("/api/v1/connections", h.connectionStats)
	r.Get("/api/v1/reports", h.listReports)
	r.Get("/api/v1/reports/{id}", h.getReport)
	r.Get("/ws/analysis", h.analysisWebSocket)
	r.Get("/ws/metrics", h.metricsWebSocket)
}

func generateID() string {
	return uuid.NewString()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message, details string) {
	writeJSON(w, status, apiTypes.ErrorResponse{Error: message, Details: details})
}

func unixNow() int64 {
	return time.Now().Unix()
}
