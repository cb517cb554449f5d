// Package service drives analysis sessions and telemetry on top of the
// realtime hub.
package service

import (
	"context"
	"errors"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/avelling/codescope/internal/domain"
	"github.com/avelling/codescope/internal/engine"
	"github.com/avelling/codescope/internal/realtime"
	wire "github.com/avelling/codescope/pkg/realtime"
)

var (
	ErrAlreadyRunning = errors.New("analysis already running on this connection")
	ErrNoSession      = errors.New("no active analysis session")
)

// estimatedDuration is the figure reported in analysis_started; the real
// duration is whatever the engine takes.
const estimatedDuration = 10

const (
	cancelReasonUser       = "user_requested"
	cancelReasonDisconnect = "connection closed"
)

// SessionManager owns the mapping from connection id to its single
// in-flight session and runs one goroutine per started session. Sessions
// are never aliased by the transport; all access goes through the manager.
type SessionManager struct {
	hub           *realtime.Hub
	engine        engine.Engine
	phases        []domain.Phase
	defaultTarget string

	mu       sync.Mutex
	sessions map[string]*domain.Session

	started   atomic.Int64
	completed atomic.Int64
	cancelled atomic.Int64
	aborted   atomic.Int64
	failed    atomic.Int64
	files     atomic.Int64

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewSessionManager(hub *realtime.Hub, eng engine.Engine, defaultTarget string) *SessionManager {
	ctx, cancel := context.WithCancel(context.Background())
	return &SessionManager{
		hub:           hub,
		engine:        eng,
		phases:        domain.Phases(),
		defaultTarget: defaultTarget,
		sessions:      make(map[string]*domain.Session),
		ctx:           ctx,
		cancel:        cancel,
	}
}

// Start creates a Running session bound to the connection and launches its
// runner. A connection that already owns a Running session gets
// ErrAlreadyRunning and the original session is untouched.
func (m *SessionManager) Start(connectionID, target string) (*domain.Session, error) {
	if target == "" {
		target = m.defaultTarget
	}

	m.mu.Lock()
	if existing, ok := m.sessions[connectionID]; ok && existing.State() == domain.SessionStateRunning {
		m.mu.Unlock()
		return nil, ErrAlreadyRunning
	}

	sess := domain.NewSession(uuid.NewString(), connectionID, target)
	if err := sess.Start(); err != nil {
		m.mu.Unlock()
		return nil, err
	}
	m.sessions[connectionID] = sess
	m.mu.Unlock()

	m.started.Add(1)

	// The started event is enqueued before the runner goroutine exists,
	// so it always precedes the first phase_update.
	m.hub.Send(connectionID, wire.AnalysisStarted{
		Type:              wire.MessageTypeAnalysisStarted,
		SessionID:         sess.ID,
		EstimatedDuration: estimatedDuration,
		Timestamp:         time.Now().Unix(),
	})

	m.wg.Add(1)
	go m.run(sess)
	return sess, nil
}

// Cancel requests cooperative cancellation of the connection's session.
// It returns ErrNoSession when the connection owns none; cancelling a
// session that is already terminal is a quiet no-op.
func (m *SessionManager) Cancel(connectionID string) error {
	m.mu.Lock()
	sess, ok := m.sessions[connectionID]
	m.mu.Unlock()
	if !ok {
		return ErrNoSession
	}
	sess.Cancel(cancelReasonUser)
	return nil
}

// Detach aborts and forgets any session bound to a closing connection.
func (m *SessionManager) Detach(connectionID string) {
	m.mu.Lock()
	sess, ok := m.sessions[connectionID]
	if ok {
		delete(m.sessions, connectionID)
	}
	m.mu.Unlock()
	if ok {
		sess.Cancel(cancelReasonDisconnect)
	}
}

// ActiveSessions counts sessions currently in Running state.
func (m *SessionManager) ActiveSessions() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, s := range m.sessions {
		if s.State() == domain.SessionStateRunning {
			n++
		}
	}
	return n
}

func (m *SessionManager) SessionsStarted() int64   { return m.started.Load() }
func (m *SessionManager) SessionsCompleted() int64 { return m.completed.Load() }
func (m *SessionManager) SessionsCancelled() int64 { return m.cancelled.Load() }
func (m *SessionManager) SessionsAborted() int64   { return m.aborted.Load() }
func (m *SessionManager) SessionsFailed() int64    { return m.failed.Load() }
func (m *SessionManager) FilesAnalyzed() int64     { return m.files.Load() }

// Shutdown stops accepting work and waits for in-flight runners.
func (m *SessionManager) Shutdown() {
	m.cancel()
	m.wg.Wait()
}

// run executes the phase pipeline for one session. Cancellation is
// cooperative: it is observed between phases, never inside one.
func (m *SessionManager) run(sess *domain.Session) {
	defer m.wg.Done()
	defer m.release(sess)

	total := len(m.phases)
	results := make([]engine.PhaseResult, 0, total)

	for i, phase := range m.phases {
		if sess.Cancelled() {
			m.acknowledgeCancel(sess)
			return
		}

		result, err := m.engine.RunPhase(m.ctx, phase, sess.Target)
		if err != nil {
			m.finishFailed(sess, phase, err)
			return
		}
		results = append(results, result)

		if _, advErr := sess.Advance(total); advErr != nil {
			// A cancel landed while the phase ran; the phase finished
			// naturally but its update is not emitted.
			if sess.Cancelled() {
				m.acknowledgeCancel(sess)
			}
			return
		}

		update := wire.PhaseUpdate{
			Type:        wire.MessageTypePhaseUpdate,
			Phase:       phase.ID,
			Description: phase.Description,
			Progress:    float64(i+1) / float64(total) * 100,
			Timestamp:   time.Now().Unix(),
		}
		if !m.hub.Send(sess.ConnectionID, update) {
			// Transport failure: the session state is already committed;
			// just stop emitting.
			log.Printf("session %s: transport gone, aborting runner", sess.ID)
			return
		}
	}

	summary := m.engine.Summarize(results, time.Since(sess.StartedAt))
	m.completed.Add(1)
	m.files.Add(int64(summary.FilesAnalyzed))
	m.hub.Send(sess.ConnectionID, wire.AnalysisCompleted{
		Type:      wire.MessageTypeAnalysisCompleted,
		Summary:   summary,
		Timestamp: time.Now().Unix(),
	})
}

// acknowledgeCancel emits the single cancellation event carrying the
// reason the session recorded. Disconnect-driven aborts are counted apart
// from user cancels so telemetry does not conflate them.
func (m *SessionManager) acknowledgeCancel(sess *domain.Session) {
	reason := sess.CancelReason()
	if reason == "" {
		reason = cancelReasonUser
	}
	if reason == cancelReasonDisconnect {
		m.aborted.Add(1)
	} else {
		m.cancelled.Add(1)
	}
	m.hub.Send(sess.ConnectionID, wire.AnalysisCancelled{
		Type:      wire.MessageTypeAnalysisCancelled,
		Reason:    reason,
		Timestamp: time.Now().Unix(),
	})
}

func (m *SessionManager) finishFailed(sess *domain.Session, phase domain.Phase, cause error) {
	if err := sess.Fail(cause.Error()); err != nil {
		// Lost the race against a cancel; acknowledge that instead.
		if sess.Cancelled() {
			m.acknowledgeCancel(sess)
		}
		return
	}
	m.failed.Add(1)
	m.hub.Send(sess.ConnectionID, wire.AnalysisFailed{
		Type:      wire.MessageTypeAnalysisFailed,
		Phase:     phase.ID,
		Error:     cause.Error(),
		Timestamp: time.Now().Unix(),
	})
}

// release drops the terminal session, unless the connection has already
// started a newer one.
func (m *SessionManager) release(sess *domain.Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if current, ok := m.sessions[sess.ConnectionID]; ok && current == sess {
		delete(m.sessions, sess.ConnectionID)
	}
}
