package domain

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

type SessionState int

const (
	SessionStateIdle SessionState = iota
	SessionStateRunning
	SessionStateCompleted
	SessionStateFailed
	SessionStateCancelled
)

func (s SessionState) String() string {
	switch s {
	case SessionStateIdle:
		return "idle"
	case SessionStateRunning:
		return "running"
	case SessionStateCompleted:
		return "completed"
	case SessionStateFailed:
		return "failed"
	case SessionStateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Terminal reports whether the state has no outgoing transitions.
func (s SessionState) Terminal() bool {
	switch s {
	case SessionStateCompleted, SessionStateFailed, SessionStateCancelled:
		return true
	default:
		return false
	}
}

var ErrInvalidTransition = errors.New("invalid state transition")

func NewInvalidTransitionError(from, to SessionState) error {
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
}

var validTransitions = map[SessionState][]SessionState{
	SessionStateIdle:    {SessionStateRunning},
	SessionStateRunning: {SessionStateCompleted, SessionStateFailed, SessionStateCancelled},
}

func CanTransition(from, to SessionState) bool {
	allowed, ok := validTransitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

type StateTransition struct {
	From      SessionState
	To        SessionState
	Reason    string
	Timestamp time.Time
}

// Session is one run of the phase pipeline, bound to exactly one
// connection. All state changes go through its methods; callers never
// mutate fields directly.
type Session struct {
	ID           string
	ConnectionID string
	Target       string
	StartedAt    time.Time

	mu           sync.Mutex
	state        SessionState
	phaseIndex   int
	cancelReason string
	transitions  []StateTransition
}

func NewSession(id, connectionID, target string) *Session {
	return &Session{
		ID:           id,
		ConnectionID: connectionID,
		Target:       target,
		StartedAt:    time.Now(),
		state:        SessionStateIdle,
	}
}

func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) PhaseIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phaseIndex
}

func (s *Session) Transitions() []StateTransition {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]StateTransition, len(s.transitions))
	copy(out, s.transitions)
	return out
}

func (s *Session) transitionLocked(to SessionState, reason string) error {
	if !CanTransition(s.state, to) {
		return NewInvalidTransitionError(s.state, to)
	}
	s.transitions = append(s.transitions, StateTransition{
		From:      s.state,
		To:        to,
		Reason:    reason,
		Timestamp: time.Now(),
	})
	s.state = to
	return nil
}

// Start moves the session from Idle to Running.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transitionLocked(SessionStateRunning, "analysis started")
}

// Cancel transitions a Running session to Cancelled and reports whether
// the transition happened. Cancelling a session that is already terminal
// is a no-op, not an error. The runner observes the new state at the next
// phase boundary; a phase that has already begun finishes naturally.
func (s *Session) Cancel(reason string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != SessionStateRunning {
		return false
	}
	_ = s.transitionLocked(SessionStateCancelled, reason)
	s.cancelReason = reason
	return true
}

func (s *Session) Cancelled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == SessionStateCancelled
}

// CancelReason returns the reason recorded by the cancel that won, or ""
// if the session was never cancelled.
func (s *Session) CancelReason() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancelReason
}

// Advance moves the phase index forward after a successful phase. When the
// last of total phases completes, the session transitions to Completed.
// Advance fails if the session is no longer Running, which happens when a
// cancel raced in after the phase started.
func (s *Session) Advance(total int) (done bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != SessionStateRunning {
		return false, NewInvalidTransitionError(s.state, SessionStateCompleted)
	}
	s.phaseIndex++
	if s.phaseIndex >= total {
		return true, s.transitionLocked(SessionStateCompleted, "all phases completed")
	}
	return false, nil
}

// Fail marks the session Failed after an unrecoverable engine error. No
// further phases run.
func (s *Session) Fail(reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transitionLocked(SessionStateFailed, reason)
}
