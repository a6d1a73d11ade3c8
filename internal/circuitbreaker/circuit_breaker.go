// Package circuitbreaker provides a small circuit breaker for unreliable
// upstream endpoints.
package circuitbreaker

import (
	"sync"
	"time"

	"github.com/silens-indexer/internal/logging"
)

// State is the breaker's position
type State string

const (
	// StateClosed means calls flow to the endpoint
	StateClosed State = "closed"
	// StateOpen means calls are short-circuited away from the endpoint
	StateOpen State = "open"
	// StateHalfOpen means a single probe call is testing recovery
	StateHalfOpen State = "half_open"
)

// Breaker trips after a run of consecutive failures and stays open for a
// cooldown period. After the cooldown a single probe is let through; its
// outcome closes or reopens the breaker. Callers ask Allow before the call
// and Record after it.
type Breaker struct {
	name        string
	maxFailures int
	cooldown    time.Duration

	mu               sync.Mutex
	state            State
	consecutiveFails int
	lastStateChange  time.Time
	log              *logging.Logger
}

// New creates a closed breaker. maxFailures is the run of consecutive
// failures that trips it; cooldown is how long it stays open before probing.
func New(name string, maxFailures int, cooldown time.Duration) *Breaker {
	return &Breaker{
		name:            name,
		maxFailures:     maxFailures,
		cooldown:        cooldown,
		state:           StateClosed,
		lastStateChange: time.Now(),
		log:             logging.WithComponent("circuit-breaker").WithField("breaker", name),
	}
}

// Allow reports whether a call may be attempted right now. When the cooldown
// of an open breaker has elapsed, the breaker moves to half-open and the call
// becomes the probe.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateOpen:
		if time.Since(b.lastStateChange) < b.cooldown {
			return false
		}
		b.setState(StateHalfOpen)
		b.log.Info("Circuit breaker probing endpoint")
		return true
	default:
		return true
	}
}

// Record feeds a call outcome back into the breaker
func (b *Breaker) Record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err == nil {
		if b.state == StateHalfOpen {
			b.setState(StateClosed)
			b.log.Info("Circuit breaker closed after successful probe")
		}
		b.consecutiveFails = 0
		return
	}

	b.consecutiveFails++
	switch b.state {
	case StateHalfOpen:
		b.setState(StateOpen)
		b.log.Warn("Circuit breaker reopened after failed probe")
	case StateClosed:
		if b.consecutiveFails >= b.maxFailures {
			b.setState(StateOpen)
			b.log.WithField("consecutiveFails", b.consecutiveFails).
				Warn("Circuit breaker opened")
		}
	}
}

// State returns the breaker's current position
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *Breaker) setState(s State) {
	b.state = s
	b.lastStateChange = time.Now()
}
