package utils

import (
	"errors"
	"sync"
	"time"
)

// CircuitBreaker guards an outbound dependency (SMS delivery) so a flapping
// provider does not slow every booking request down.
type CircuitBreaker struct {
	name         string
	maxRequests  uint32
	interval     time.Duration
	timeout      time.Duration
	failureRatio float64

	mutex  sync.Mutex
	state  BreakerState
	counts breakerCounts
	expiry time.Time
}

type BreakerState int

const (
	BreakerClosed BreakerState = iota
	BreakerHalfOpen
	BreakerOpen
)

type breakerCounts struct {
	requests             uint32
	totalSuccesses       uint32
	totalFailures        uint32
	consecutiveFailures  uint32
	consecutiveSuccesses uint32
}

var ErrBreakerOpen = errors.New("circuit breaker is open")

func NewCircuitBreaker(name string) *CircuitBreaker {
	return &CircuitBreaker{
		name:         name,
		maxRequests:  10,
		interval:     60 * time.Second,
		timeout:      60 * time.Second,
		failureRatio: 0.6,
		state:        BreakerClosed,
	}
}

// Execute runs req unless the breaker is open.
func (cb *CircuitBreaker) Execute(req func() error) error {
	if err := cb.beforeRequest(); err != nil {
		return err
	}

	err := req()
	cb.afterRequest(err == nil)
	return err
}

func (cb *CircuitBreaker) State() BreakerState {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()
	return cb.currentState(time.Now())
}

func (cb *CircuitBreaker) beforeRequest() error {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	state := cb.currentState(time.Now())
	if state == BreakerOpen {
		return ErrBreakerOpen
	}
	if state == BreakerHalfOpen && cb.counts.requests >= cb.maxRequests {
		return ErrBreakerOpen
	}

	cb.counts.requests++
	return nil
}

func (cb *CircuitBreaker) afterRequest(success bool) {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	now := time.Now()
	state := cb.currentState(now)

	if success {
		cb.counts.totalSuccesses++
		cb.counts.consecutiveSuccesses++
		cb.counts.consecutiveFailures = 0
		if state == BreakerHalfOpen && cb.counts.consecutiveSuccesses >= cb.maxRequests {
			cb.state = BreakerClosed
			cb.resetCounts(now)
		}
		return
	}

	cb.counts.totalFailures++
	cb.counts.consecutiveFailures++
	cb.counts.consecutiveSuccesses = 0

	if state == BreakerHalfOpen || cb.readyToTrip() {
		cb.state = BreakerOpen
		cb.expiry = now.Add(cb.timeout)
		cb.counts = breakerCounts{}
	}
}

func (cb *CircuitBreaker) readyToTrip() bool {
	return cb.counts.requests >= cb.maxRequests &&
		float64(cb.counts.totalFailures)/float64(cb.counts.requests) >= cb.failureRatio
}

func (cb *CircuitBreaker) currentState(now time.Time) BreakerState {
	switch cb.state {
	case BreakerClosed:
		if !cb.expiry.IsZero() && cb.expiry.Before(now) {
			cb.resetCounts(now)
		}
	case BreakerOpen:
		if cb.expiry.Before(now) {
			cb.state = BreakerHalfOpen
			cb.counts = breakerCounts{}
			cb.expiry = time.Time{}
		}
	}
	return cb.state
}

func (cb *CircuitBreaker) resetCounts(now time.Time) {
	cb.counts = breakerCounts{}
	if cb.state == BreakerClosed {
		cb.expiry = now.Add(cb.interval)
	} else {
		cb.expiry = time.Time{}
	}
}
