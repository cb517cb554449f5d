package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/avelling/codescope/internal/domain"
	"github.com/avelling/codescope/internal/engine"
	"github.com/avelling/codescope/internal/realtime"
	"github.com/avelling/codescope/internal/storage"
	apiTypes "github.com/avelling/codescope/pkg/api"
)

// analyzeCodebase runs the full phase pipeline synchronously for one
// target and persists the report. Failures come back as success=false
// rather than an HTTP error, matching the streaming semantics where an
// engine failure is a terminal result, not a protocol problem.
func (h *Handler) analyzeCodebase(w http.ResponseWriter, r *http.Request) {
	var req apiTypes.AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if req.CodebasePath == "" {
		writeError(w, http.StatusBadRequest, "codebase_path is required", "")
		return
	}

	start := time.Now()
	results := make([]engine.PhaseResult, 0, domain.PhaseCount())
	for _, phase := range domain.Phases() {
		result, err := h.engine.RunPhase(r.Context(), phase, req.CodebasePath)
		if err != nil {
			writeJSON(w, http.StatusOK, apiTypes.AnalysisResult{
				Success:        false,
				Error:          err.Error(),
				ProcessingTime: time.Since(start).Seconds(),
			})
			return
		}
		results = append(results, result)
	}

	summary := h.engine.Summarize(results, time.Since(start))

	analysis := make(map[string]any, len(results))
	for _, result := range results {
		analysis[result.Phase] = result.Payload
	}

	report := &storage.Report{
		ID:             generateID(),
		Target:         req.CodebasePath,
		Success:        true,
		Summary:        summary,
		Phases:         results,
		ProcessingTime: summary.ProcessingTime,
		CreatedAt:      time.Now().UTC(),
	}
	if err := h.reports.Save(report); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to persist report", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, apiTypes.AnalysisResult{
		Success:        true,
		ReportID:       report.ID,
		AnalysisResult: analysis,
		ProcessingTime: summary.ProcessingTime,
	})
}

func (h *Handler) serverMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, apiTypes.MetricsResponse{
		ServerMetrics: h.telemetry.Snapshot().Data,
		SystemHealth:  "healthy",
	})
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	components := map[string]bool{
		"engine":         h.engine != nil,
		"hub":            h.hub != nil,
		"session_runner": h.sessions != nil,
		"report_storage": h.reports != nil,
		"telemetry":      h.telemetry != nil,
	}

	resp := apiTypes.HealthResponse{
		Status:     "healthy",
		Timestamp:  unixNow(),
		Version:    ServerVersion,
		Components: components,
	}
	for _, ok := range components {
		if !ok {
			resp.Status = "degraded"
			resp.Warnings = []string{"some components not available"}
			break
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) supportedLanguages(w http.ResponseWriter, r *http.Request) {
	languages := engine.SupportedLanguages()
	out := make([]apiTypes.LanguageInfo, 0, len(languages))
	for _, lang := range languages {
		out = append(out, apiTypes.LanguageInfo{Language: lang.Name, Extensions: lang.Extensions})
	}
	writeJSON(w, http.StatusOK, apiTypes.SupportedLanguagesResponse{
		SupportedLanguages: out,
		Total:              len(out),
	})
}

func (h *Handler) connectionStats(w http.ResponseWriter, r *http.Request) {
	analysis := h.hub.Count(realtime.StreamAnalysis)
	metrics := h.hub.Count(realtime.StreamMetrics)
	writeJSON(w, http.StatusOK, apiTypes.ConnectionStatsResponse{
		ActiveConnections: analysis + metrics,
		AnalysisStream:    analysis,
		MetricsStream:     metrics,
		ServerStatus:      "operational",
		WSEndpoints: map[string]string{
			"/ws/analysis": "Real-time analysis streaming",
			"/ws/metrics":  "Live system metrics",
		},
		Timestamp: unixNow(),
	})
}

func (h *Handler) listReports(w http.ResponseWriter, r *http.Request) {
	reports, err := h.reports.List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list reports", err.Error())
		return
	}

	out := make([]apiTypes.ReportSummary, 0, len(reports))
	for _, report := range reports {
		out = append(out, apiTypes.ReportSummary{
			ID:             report.ID,
			Target:         report.Target,
			Success:        report.Success,
			ProcessingTime: report.ProcessingTime,
			CreatedAt:      report.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, apiTypes.ReportListResponse{Reports: out, Total: len(out)})
}

func (h *Handler) getReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	report, err := h.reports.Load(id)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrReportNotFound):
			writeError(w, http.StatusNotFound, "report not found", "")
		case errors.Is(err, storage.ErrInvalidReportID):
			writeError(w, http.StatusBadRequest, "invalid report id", "")
		default:
			writeError(w, http.StatusInternalServerError, "failed to load report", err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, report)
}
