package service

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/avelling/codescope/internal/realtime"
	wire "github.com/avelling/codescope/pkg/realtime"
)

const DefaultTelemetryInterval = 5 * time.Second

// TelemetryEmitter periodically computes a metrics snapshot and broadcasts
// the changed fields to every metrics-stream connection. It holds no state
// beyond the tick schedule and the previous tick's values; slow-consumer
// isolation is the hub's job.
type TelemetryEmitter struct {
	hub       *realtime.Hub
	sessions  *SessionManager
	interval  time.Duration
	startedAt time.Time
}

func NewTelemetryEmitter(hub *realtime.Hub, sessions *SessionManager, interval time.Duration) *TelemetryEmitter {
	if interval <= 0 {
		interval = DefaultTelemetryInterval
	}
	return &TelemetryEmitter{
		hub:       hub,
		sessions:  sessions,
		interval:  interval,
		startedAt: time.Now(),
	}
}

// Run ticks until the context is cancelled. Ticks with zero metrics
// connections skip the broadcast but keep the schedule.
func (e *TelemetryEmitter) Run(ctx context.Context) {
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	prev := e.snapshotData()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			curr := e.snapshotData()
			if e.hub.Count(realtime.StreamMetrics) == 0 {
				prev = curr
				continue
			}
			updates := diffSnapshots(prev, curr)
			prev = curr
			if len(updates) == 0 {
				continue
			}
			e.hub.Broadcast(realtime.StreamMetrics, wire.MetricsUpdate{
				Type:      wire.MessageTypeMetricsUpdate,
				Updates:   updates,
				Timestamp: time.Now().Unix(),
			})
		}
	}
}

// Snapshot builds the full, self-contained snapshot sent to every newly
// joined metrics connection before any update.
func (e *TelemetryEmitter) Snapshot() wire.MetricsSnapshot {
	return wire.MetricsSnapshot{
		Type:      wire.MessageTypeMetricsSnapshot,
		Data:      e.snapshotData(),
		Timestamp: time.Now().Unix(),
	}
}

func (e *TelemetryEmitter) snapshotData() map[string]any {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	return map[string]any{
		"system_health":      "healthy",
		"active_connections": e.hub.Count(realtime.StreamAnalysis) + e.hub.Count(realtime.StreamMetrics),
		"analysis_sessions":  e.sessions.ActiveSessions(),
		"sessions_completed": e.sessions.SessionsCompleted(),
		"memory_usage":       fmt.Sprintf("%dMB", mem.HeapAlloc/(1<<20)),
		"goroutines":         runtime.NumGoroutine(),
		"throughput":         e.throughput(),
		"uptime_seconds":     int64(time.Since(e.startedAt).Seconds()),
	}
}

func (e *TelemetryEmitter) throughput() string {
	minutes := time.Since(e.startedAt).Minutes()
	if minutes < 1 {
		minutes = 1
	}
	return fmt.Sprintf("%d files/min", int64(float64(e.sessions.FilesAnalyzed())/minutes))
}

// diffSnapshots keeps only the fields whose values changed since the
// previous tick.
func diffSnapshots(prev, curr map[string]any) map[string]any {
	updates := make(map[string]any)
	for key, value := range curr {
		if old, ok := prev[key]; !ok || old != value {
			updates[key] = value
		}
	}
	return updates
}
