package domain

import (
	"errors"
	"testing"
)

func TestNewSession(t *testing.T) {
	s := NewSession("sess-1", "conn-1", "/src/project")

	if s.ID != "sess-1" {
		t.Errorf("expected ID 'sess-1', got %q", s.ID)
	}
	if s.ConnectionID != "conn-1" {
		t.Errorf("expected ConnectionID 'conn-1', got %q", s.ConnectionID)
	}
	if s.State() != SessionStateIdle {
		t.Errorf("expected state Idle, got %v", s.State())
	}
	if s.StartedAt.IsZero() {
		t.Error("expected StartedAt to be set")
	}
	if s.PhaseIndex() != 0 {
		t.Errorf("expected phase index 0, got %d", s.PhaseIndex())
	}
}

func TestSessionStateString(t *testing.T) {
	tests := []struct {
		state    SessionState
		expected string
	}{
		{SessionStateIdle, "idle"},
		{SessionStateRunning, "running"},
		{SessionStateCompleted, "completed"},
		{SessionStateFailed, "failed"},
		{SessionStateCancelled, "cancelled"},
		{SessionState(999), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.state.String(); got != tt.expected {
			t.Errorf("SessionState(%d).String() = %q, want %q", tt.state, got, tt.expected)
		}
	}
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from     SessionState
		to       SessionState
		expected bool
	}{
		{SessionStateIdle, SessionStateRunning, true},
		{SessionStateIdle, SessionStateCompleted, false},
		{SessionStateIdle, SessionStateCancelled, false},
		{SessionStateRunning, SessionStateCompleted, true},
		{SessionStateRunning, SessionStateFailed, true},
		{SessionStateRunning, SessionStateCancelled, true},
		{SessionStateRunning, SessionStateIdle, false},
		{SessionStateCompleted, SessionStateRunning, false},
		{SessionStateFailed, SessionStateRunning, false},
		{SessionStateCancelled, SessionStateRunning, false},
		{SessionStateCancelled, SessionStateCancelled, false},
	}

	for _, tt := range tests {
		got := CanTransition(tt.from, tt.to)
		if got != tt.expected {
			t.Errorf("CanTransition(%v, %v) = %v, want %v", tt.from, tt.to, got, tt.expected)
		}
	}
}

func TestTerminalStates(t *testing.T) {
	for _, state := range []SessionState{SessionStateCompleted, SessionStateFailed, SessionStateCancelled} {
		if !state.Terminal() {
			t.Errorf("expected %v to be terminal", state)
		}
	}
	for _, state := range []SessionState{SessionStateIdle, SessionStateRunning} {
		if state.Terminal() {
			t.Errorf("expected %v not to be terminal", state)
		}
	}
}

func TestSessionAdvanceToCompletion(t *testing.T) {
	s := NewSession("sess-1", "conn-1", "")
	if err := s.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}

	total := 3
	for i := 0; i < total-1; i++ {
		done, err := s.Advance(total)
		if err != nil {
			t.Fatalf("advance %d: %v", i, err)
		}
		if done {
			t.Fatalf("advance %d: done too early", i)
		}
	}

	done, err := s.Advance(total)
	if err != nil {
		t.Fatalf("final advance: %v", err)
	}
	if !done {
		t.Fatal("expected final advance to report done")
	}
	if s.State() != SessionStateCompleted {
		t.Errorf("expected Completed, got %v", s.State())
	}
}

func TestSessionCancelIdempotent(t *testing.T) {
	s := NewSession("sess-1", "conn-1", "")
	if err := s.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}

	if !s.Cancel("user_requested") {
		t.Fatal("expected first cancel to transition")
	}
	if s.State() != SessionStateCancelled {
		t.Fatalf("expected Cancelled, got %v", s.State())
	}
	if got := s.CancelReason(); got != "user_requested" {
		t.Errorf("cancel reason = %q, want user_requested", got)
	}

	// Second cancel is a no-op, not an error; the winning reason sticks.
	if s.Cancel("connection closed") {
		t.Error("expected repeated cancel to be a no-op")
	}
	if got := s.CancelReason(); got != "user_requested" {
		t.Errorf("cancel reason after no-op = %q, want user_requested", got)
	}
	if got := len(s.Transitions()); got != 2 {
		t.Errorf("expected 2 transitions (start, cancel), got %d", got)
	}
}

func TestSessionCancelOnTerminalStates(t *testing.T) {
	s := NewSession("sess-1", "conn-1", "")
	if err := s.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := s.Fail("engine exploded"); err != nil {
		t.Fatalf("fail: %v", err)
	}

	if s.Cancel("user_requested") {
		t.Error("expected cancel on Failed session to be a no-op")
	}
	if s.State() != SessionStateFailed {
		t.Errorf("expected state to stay Failed, got %v", s.State())
	}
}

func TestSessionAdvanceAfterCancelFails(t *testing.T) {
	s := NewSession("sess-1", "conn-1", "")
	if err := s.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	s.Cancel("user_requested")

	_, err := s.Advance(5)
	if err == nil {
		t.Fatal("expected advance after cancel to fail")
	}
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition, got %v", err)
	}
	if s.State() != SessionStateCancelled {
		t.Errorf("cancelled state must win the race, got %v", s.State())
	}
}

func TestSessionFailFromIdleRejected(t *testing.T) {
	s := NewSession("sess-1", "conn-1", "")
	if err := s.Fail("boom"); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestPhaseCatalogOrder(t *testing.T) {
	want := []string{"security_scan", "performance_analysis", "code_quality", "dependency_check", "final_report"}
	got := Phases()
	if len(got) != len(want) {
		t.Fatalf("expected %d phases, got %d", len(want), len(got))
	}
	for i, p := range got {
		if p.ID != want[i] {
			t.Errorf("phase %d = %q, want %q", i, p.ID, want[i])
		}
		if p.Description == "" {
			t.Errorf("phase %q has no description", p.ID)
		}
	}
	if PhaseCount() != len(want) {
		t.Errorf("PhaseCount() = %d, want %d", PhaseCount(), len(want))
	}
}
