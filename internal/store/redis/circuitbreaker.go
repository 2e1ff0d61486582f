package redis

import (
	"errors"
	"sync"
	"time"
)

// ErrCircuitOpen is returned while the breaker is rejecting writes.
var ErrCircuitOpen = errors.New("redis circuit open")

// State of the write-path circuit breaker. The numeric values are stable
// because they feed the taengine_redis_circuit_breaker_state gauge.
type State int

const (
	StateClosed   State = 0 // writes go to Redis
	StateOpen     State = 1 // writes rejected, callers buffer locally
	StateHalfOpen State = 2 // single probe write allowed
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

const (
	defaultMaxFailures  = 5
	defaultResetTimeout = 10 * time.Second
)

// CircuitBreaker guards the Redis write path. After maxFailures consecutive
// write errors it opens and rejects calls, letting BufferedWriter keep
// candles and confirmed indicator results in its local buffer instead of
// blocking the compute loop on a dead connection. Once resetTimeout passes,
// the next call runs as a probe: success closes the breaker and triggers a
// buffer flush, failure reopens it.
type CircuitBreaker struct {
	mu                  sync.Mutex
	state               State
	consecutiveFailures int
	maxFailures         int
	resetTimeout        time.Duration
	openedAt            time.Time

	OnStateChange func(from, to State)
}

// NewCircuitBreaker builds a breaker. Non-positive arguments fall back to
// the defaults (5 failures, 10s reset).
func NewCircuitBreaker(maxFailures int, resetTimeout time.Duration) *CircuitBreaker {
	if maxFailures <= 0 {
		maxFailures = defaultMaxFailures
	}
	if resetTimeout <= 0 {
		resetTimeout = defaultResetTimeout
	}
	return &CircuitBreaker{
		maxFailures:  maxFailures,
		resetTimeout: resetTimeout,
		state:        StateClosed,
	}
}

// Execute runs fn unless the breaker is open. Open-state calls return
// ErrCircuitOpen without touching Redis.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	if !cb.allow() {
		return ErrCircuitOpen
	}
	err := fn()
	cb.record(err)
	return err
}

// allow decides whether a call may proceed, moving open→half-open once the
// reset timeout has elapsed.
func (cb *CircuitBreaker) allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state != StateOpen {
		return true
	}
	if time.Since(cb.openedAt) > cb.resetTimeout {
		cb.transition(StateHalfOpen)
		return true
	}
	return false
}

// record applies the call outcome to the failure counter and state machine.
func (cb *CircuitBreaker) record(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if err != nil {
		cb.consecutiveFailures++
		if cb.state == StateHalfOpen || cb.consecutiveFailures >= cb.maxFailures {
			cb.transition(StateOpen)
		}
		return
	}

	if cb.state == StateHalfOpen {
		cb.transition(StateClosed)
	}
	cb.consecutiveFailures = 0
}

// CurrentState returns the breaker state.
func (cb *CircuitBreaker) CurrentState() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

func (cb *CircuitBreaker) transition(to State) {
	from := cb.state
	cb.state = to
	switch to {
	case StateClosed:
		cb.consecutiveFailures = 0
	case StateOpen:
		cb.openedAt = time.Now()
	}
	if cb.OnStateChange != nil {
		cb.OnStateChange(from, to)
	}
}
