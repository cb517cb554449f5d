package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/avelling/codescope/internal/engine"
	apiTypes "github.com/avelling/codescope/pkg/api"
)

// ideAnalyze serves editor integrations: context-aware analysis of a
// single in-buffer file, optionally focused on the cursor line.
func (h *Handler) ideAnalyze(w http.ResponseWriter, r *http.Request) {
	var req apiTypes.IDEAnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if req.FilePath == "" {
		writeError(w, http.StatusBadRequest, "file_path is required", "")
		return
	}

	warnings := engine.ScanContent(req.FilePath, []byte(req.Content))
	if warnings == nil {
		warnings = []string{}
	}
	lines := strings.Split(req.Content, "\n")

	resp := apiTypes.IDEAnalyzeResponse{
		File:     req.FilePath,
		Language: engine.DetectLanguage(req.FilePath),
		Lines:    len(lines),
		Warnings: warnings,
	}

	if cursor := req.CursorInfo; cursor != nil && cursor.Line >= 1 && cursor.Line <= len(lines) {
		resp.CursorContext = lines[cursor.Line-1]
		suffix := fmt.Sprintf(":%d", cursor.Line)
		for _, warning := range warnings {
			if strings.HasSuffix(warning, suffix) {
				resp.CursorWarnings = append(resp.CursorWarnings, warning)
			}
		}
	}

	writeJSON(w, http.StatusOK, resp)
}
