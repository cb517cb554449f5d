// Package realtime defines the wire protocol shared by the websocket
// streams and their clients.
package realtime

// Action is a client request on the analysis stream.
type Action string

const (
	ActionStartAnalysis  Action = "start_analysis"
	ActionCancelAnalysis Action = "cancel_analysis"
)

// ClientCommand is the only inbound message shape on the analysis stream.
// Path optionally overrides the server's configured analysis root.
type ClientCommand struct {
	Action Action `json:"action"`
	Path   string `json:"path,omitempty"`
}

type MessageType string

const (
	MessageTypeConnectionEstablished MessageType = "connection_established"
	MessageTypeAnalysisStarted       MessageType = "analysis_started"
	MessageTypePhaseUpdate           MessageType = "phase_update"
	MessageTypeAnalysisCompleted     MessageType = "analysis_completed"
	MessageTypeAnalysisFailed        MessageType = "analysis_failed"
	MessageTypeAnalysisCancelled     MessageType = "analysis_cancelled"
	MessageTypeError                 MessageType = "error"
	MessageTypeMetricsSnapshot       MessageType = "metrics_snapshot"
	MessageTypeMetricsUpdate         MessageType = "metrics_update"
)

// ConnectionEstablished is sent once per connection, on both streams,
// immediately after the upgrade succeeds.
type ConnectionEstablished struct {
	Type          MessageType `json:"type"`
	ServerVersion string      `json:"server_version"`
	Capabilities  []string    `json:"capabilities"`
	Timestamp     int64       `json:"timestamp"`
}

type AnalysisStarted struct {
	Type              MessageType `json:"type"`
	SessionID         string      `json:"session_id"`
	EstimatedDuration int         `json:"estimated_duration"`
	Timestamp         int64       `json:"timestamp"`
}

// PhaseUpdate reports one completed phase. Progress is an exact
// percentage: 100*(i+1)/n for phase i of n.
type PhaseUpdate struct {
	Type        MessageType `json:"type"`
	Phase       string      `json:"phase"`
	Description string      `json:"description"`
	Progress    float64     `json:"progress"`
	Timestamp   int64       `json:"timestamp"`
}

type AnalysisCompleted struct {
	Type      MessageType `json:"type"`
	Summary   any         `json:"summary"`
	Timestamp int64       `json:"timestamp"`
}

type AnalysisFailed struct {
	Type      MessageType `json:"type"`
	Phase     string      `json:"phase"`
	Error     string      `json:"error"`
	Timestamp int64       `json:"timestamp"`
}

type AnalysisCancelled struct {
	Type      MessageType `json:"type"`
	Reason    string      `json:"reason"`
	Timestamp int64       `json:"timestamp"`
}

type ErrorMessage struct {
	Type    MessageType `json:"type"`
	Message string      `json:"message"`
}

// MetricsSnapshot carries the full telemetry state. It is always the first
// metrics payload a newly joined metrics connection receives.
type MetricsSnapshot struct {
	Type      MessageType    `json:"type"`
	Data      map[string]any `json:"data"`
	Timestamp int64          `json:"timestamp"`
}

// MetricsUpdate carries only the fields that changed since the previous
// tick. Consumers must not treat it as self-contained.
type MetricsUpdate struct {
	Type      MessageType    `json:"type"`
	Updates   map[string]any `json:"updates"`
	Timestamp int64          `json:"timestamp"`
}
