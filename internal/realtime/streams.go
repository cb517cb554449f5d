package realtime

// Stream is one of the two independent logical channels a connection can
// belong to.
type Stream string

const (
	StreamAnalysis Stream = "analysis"
	StreamMetrics  Stream = "metrics"
)

func IsSupportedStream(stream Stream) bool {
	switch stream {
	case StreamAnalysis, StreamMetrics:
		return true
	default:
		return false
	}
}
