package httpclient

import (
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/microfix/dashboard/internal/infrastructure/logger"
)

type State int

const (
	StateClosed State = iota + 1
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	}
	return "unknown"
}

var ErrCircuitOpen = errors.New("circuit breaker is open")

type CircuitBreaker struct {
	mu          sync.Mutex
	state       State
	failures    int
	maxFailures int
	openSince   time.Time
	openTimeout time.Duration
	now         func() time.Time
	log         *zap.Logger
}

func NewCircuitBreaker(maxFailures int, openTimeout time.Duration) *CircuitBreaker {
	if maxFailures <= 0 {
		maxFailures = 1
	}
	return &CircuitBreaker{
		state:       StateClosed,
		maxFailures: maxFailures,
		openTimeout: openTimeout,
		now:         time.Now,
		log:         logger.Named("circuit_breaker"),
	}
}

func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

func (cb *CircuitBreaker) CheckBeforeRequest() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		return nil

	case StateOpen:
		if cb.now().Sub(cb.openSince) > cb.openTimeout {
			cb.log.Warn("open -> half-open")
			cb.state = StateHalfOpen
			return nil
		}
		return ErrCircuitOpen

	case StateHalfOpen:
		return ErrCircuitOpen
	}
	return nil
}

func (cb *CircuitBreaker) OnSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateHalfOpen:
		cb.log.Info("half-open -> closed")
		cb.state = StateClosed
		cb.failures = 0

	case StateClosed:
		cb.failures = 0
	}
}

func (cb *CircuitBreaker) OnFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateHalfOpen:
		cb.log.Error("half-open -> open (probe failed)")
		cb.state = StateOpen
		cb.openSince = cb.now()

	case StateClosed:
		cb.failures++
		cb.log.Warn("failure recorded", zap.Int("count", cb.failures))

		if cb.failures >= cb.maxFailures {
			cb.log.Error("closed -> open (threshold reached)")
			cb.state = StateOpen
			cb.openSince = cb.now()
		}
	}
}
