package domain

// Phase is one ordinal stage of the analysis pipeline. The catalog below
// is fixed in order; engines decide what each phase actually does.
type Phase struct {
	ID          string
	Description string
}

var phases = []Phase{
	{ID: "security_scan", Description: "Scanning for security vulnerabilities"},
	{ID: "performance_analysis", Description: "Analyzing performance bottlenecks"},
	{ID: "code_quality", Description: "Assessing code maintainability"},
	{ID: "dependency_check", Description: "Validating external dependencies"},
	{ID: "final_report", Description: "Generating comprehensive report"},
}

// Phases returns the pipeline catalog in execution order.
func Phases() []Phase {
	out := make([]Phase, len(phases))
	copy(out, phases)
	return out
}

func PhaseCount() int {
	return len(phases)
}
