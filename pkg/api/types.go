// Package api defines the request and response types of the REST surface.
package api

import "time"

type AnalyzeRequest struct {
	CodebasePath    string         `json:"codebase_path"`
	AnalysisOptions map[string]any `json:"analysis_options,omitempty"`
}

type AnalysisResult struct {
	Success        bool           `json:"success"`
	ReportID       string         `json:"report_id,omitempty"`
	AnalysisResult map[string]any `json:"analysis_result,omitempty"`
	Error          string         `json:"error,omitempty"`
	ProcessingTime float64        `json:"processing_time"`
}

type FileResult struct {
	File           string   `json:"file"`
	Language       string   `json:"language"`
	Lines          int      `json:"lines"`
	Characters     int      `json:"characters"`
	AnalysisStatus string   `json:"analysis_status"`
	Warnings       []string `json:"warnings"`
}

type FileAnalysisResponse struct {
	Success       bool         `json:"success"`
	TotalFiles    int          `json:"total_files"`
	AnalyzedFiles int          `json:"analyzed_files"`
	Results       []FileResult `json:"results"`
	AnalysisType  string       `json:"analysis_type"`
}

type CursorInfo struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

type IDEAnalyzeRequest struct {
	FilePath   string      `json:"file_path"`
	Content    string      `json:"content"`
	CursorInfo *CursorInfo `json:"cursor_info,omitempty"`
}

type IDEAnalyzeResponse struct {
	File           string   `json:"file"`
	Language       string   `json:"language"`
	Lines          int      `json:"lines"`
	Warnings       []string `json:"warnings"`
	CursorContext  string   `json:"cursor_context,omitempty"`
	CursorWarnings []string `json:"cursor_warnings,omitempty"`
}

type MetricsResponse struct {
	ServerMetrics map[string]any `json:"server_metrics"`
	SystemHealth  string         `json:"system_health"`
}

type HealthResponse struct {
	Status     string          `json:"status"`
	Timestamp  int64           `json:"timestamp"`
	Version    string          `json:"version"`
	Components map[string]bool `json:"components"`
	Warnings   []string        `json:"warnings,omitempty"`
}

type LanguageInfo struct {
	Language   string   `json:"language"`
	Extensions []string `json:"extensions"`
}

type SupportedLanguagesResponse struct {
	SupportedLanguages []LanguageInfo `json:"supported_languages"`
	Total              int            `json:"total"`
}

type WebhookResponse struct {
	Received       bool           `json:"received"`
	WebhookID      string         `json:"webhook_id"`
	Timestamp      int64          `json:"timestamp"`
	PayloadSummary map[string]any `json:"payload_summary"`
}

type ConnectionStatsResponse struct {
	ActiveConnections int               `json:"active_connections"`
	AnalysisStream    int               `json:"analysis_stream"`
	MetricsStream     int               `json:"metrics_stream"`
	ServerStatus      string            `json:"server_status"`
	WSEndpoints       map[string]string `json:"ws_endpoints"`
	Timestamp         int64             `json:"timestamp"`
}

type ReportSummary struct {
	ID             string    `json:"id"`
	Target         string    `json:"target"`
	Success        bool      `json:"success"`
	ProcessingTime float64   `json:"processing_time"`
	CreatedAt      time.Time `json:"created_at"`
}

type ReportListResponse struct {
	Reports []ReportSummary `json:"reports"`
	Total   int             `json:"total"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
