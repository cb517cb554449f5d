// Package engine supplies the phase work behind an analysis session. The
// runner calls RunPhase once per catalog phase and never lets the engine
// touch session state.
package engine

import (
	"context"
	"time"

	"github.com/avelling/codescope/internal/domain"
)

// PhaseResult is the outcome of a single phase over one target.
type PhaseResult struct {
	Phase   string         `json:"phase"`
	Payload map[string]any `json:"payload,omitempty"`
}

// Summary is the aggregate reported when every phase has run.
type Summary struct {
	FilesAnalyzed        int     `json:"files_analyzed"`
	VulnerabilitiesFound int     `json:"vulnerabilities_found"`
	PerformanceIssues    int     `json:"performance_issues"`
	QualityScore         int     `json:"quality_score"`
	ProcessingTime       float64 `json:"processing_time"`
}

// Engine runs one phase at a time. Calls are synchronous from the runner's
// perspective; any bounded-duration contract is the engine's own
// responsibility. Implementations must not mutate session state.
type Engine interface {
	RunPhase(ctx context.Context, phase domain.Phase, target string) (PhaseResult, error)
	Summarize(results []PhaseResult, elapsed time.Duration) Summary
}
