package redis

import (
	"errors"
	"testing"
	"time"
)

var errWrite = errors.New("write failed")

func trip(cb *CircuitBreaker, failures int) {
	for i := 0; i < failures; i++ {
		cb.Execute(func() error { return errWrite })
	}
}

func TestCircuitBreaker_StartsClosed(t *testing.T) {
	cb := NewCircuitBreaker(3, 100*time.Millisecond)
	if cb.CurrentState() != StateClosed {
		t.Errorf("expected Closed, got %v", cb.CurrentState())
	}
}

func TestCircuitBreaker_DefaultsOnZeroConfig(t *testing.T) {
	cb := NewCircuitBreaker(0, 0)
	if cb.maxFailures != defaultMaxFailures {
		t.Errorf("expected maxFailures %d, got %d", defaultMaxFailures, cb.maxFailures)
	}
	if cb.resetTimeout != defaultResetTimeout {
		t.Errorf("expected resetTimeout %v, got %v", defaultResetTimeout, cb.resetTimeout)
	}
}

func TestCircuitBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	cb := NewCircuitBreaker(3, 100*time.Millisecond)

	trip(cb, 2)
	if cb.CurrentState() != StateClosed {
		t.Fatalf("opened one failure early: %v", cb.CurrentState())
	}
	trip(cb, 1)
	if cb.CurrentState() != StateOpen {
		t.Fatalf("expected Open after 3 failures, got %v", cb.CurrentState())
	}

	// While open, calls are rejected without running fn
	ran := false
	err := cb.Execute(func() error { ran = true; return nil })
	if err != ErrCircuitOpen {
		t.Errorf("expected ErrCircuitOpen, got %v", err)
	}
	if ran {
		t.Error("fn ran while breaker was open")
	}
}

func TestCircuitBreaker_ProbeClosesAfterTimeout(t *testing.T) {
	cb := NewCircuitBreaker(2, 50*time.Millisecond)
	trip(cb, 2)
	if cb.CurrentState() != StateOpen {
		t.Fatal("expected Open")
	}

	time.Sleep(60 * time.Millisecond)

	if err := cb.Execute(func() error { return nil }); err != nil {
		t.Fatalf("probe: %v", err)
	}
	if cb.CurrentState() != StateClosed {
		t.Errorf("expected Closed after successful probe, got %v", cb.CurrentState())
	}
}

func TestCircuitBreaker_FailedProbeReopens(t *testing.T) {
	cb := NewCircuitBreaker(2, 50*time.Millisecond)
	trip(cb, 2)

	time.Sleep(60 * time.Millisecond)
	cb.Execute(func() error { return errWrite })

	if cb.CurrentState() != StateOpen {
		t.Errorf("expected Open after failed probe, got %v", cb.CurrentState())
	}
}

func TestCircuitBreaker_SuccessResetsFailureCount(t *testing.T) {
	cb := NewCircuitBreaker(3, 100*time.Millisecond)

	trip(cb, 2)
	cb.Execute(func() error { return nil })
	trip(cb, 2)

	if cb.CurrentState() != StateClosed {
		t.Errorf("expected Closed (counter resets on success), got %v", cb.CurrentState())
	}
}

func TestCircuitBreaker_OnStateChangeSequence(t *testing.T) {
	var transitions []State
	cb := NewCircuitBreaker(1, 50*time.Millisecond)
	cb.OnStateChange = func(from, to State) {
		transitions = append(transitions, to)
	}

	trip(cb, 1)
	if len(transitions) != 1 || transitions[0] != StateOpen {
		t.Fatalf("expected [Open], got %v", transitions)
	}

	time.Sleep(60 * time.Millisecond)
	cb.Execute(func() error { return nil })

	want := []State{StateOpen, StateHalfOpen, StateClosed}
	if len(transitions) != len(want) {
		t.Fatalf("expected %v, got %v", want, transitions)
	}
	for i := range want {
		if transitions[i] != want[i] {
			t.Errorf("transition %d: expected %v, got %v", i, want[i], transitions[i])
		}
	}
}
