package api

import (
	"io"
	"net/http"
	"strings"

	"github.com/avelling/codescope/internal/engine"
	apiTypes "github.com/avelling/codescope/pkg/api"
)

// analyzeFiles runs a lightweight per-file analysis over a multipart
// upload: language detection, size metrics, and the security rules.
func (h *Handler) analyzeFiles(w http.ResponseWriter, r *http.Request) {
	maxBytes := h.cfg.Analysis.MaxUploadBytes
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart upload", err.Error())
		return
	}

	analysisType := r.FormValue("analysis_type")
	if analysisType == "" {
		analysisType = "comprehensive"
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		writeError(w, http.StatusBadRequest, "no files uploaded", "")
		return
	}

	results := make([]apiTypes.FileResult, 0, len(files))
	for _, header := range files {
		if header.Filename == "" {
			continue
		}
		file, err := header.Open()
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to read upload", err.Error())
			return
		}
		content, err := io.ReadAll(file)
		_ = file.Close()
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to read upload", err.Error())
			return
		}

		warnings := engine.ScanContent(header.Filename, content)
		if warnings == nil {
			warnings = []string{}
		}
		results = append(results, apiTypes.FileResult{
			File:           header.Filename,
			Language:       engine.DetectLanguage(header.Filename),
			Lines:          len(strings.Split(string(content), "\n")),
			Characters:     len(content),
			AnalysisStatus: "completed",
			Warnings:       warnings,
		})
	}

	writeJSON(w, http.StatusOK, apiTypes.FileAnalysisResponse{
		Success:       true,
		TotalFiles:    len(files),
		AnalyzedFiles: len(results),
		Results:       results,
		AnalysisType:  analysisType,
	})
}
