// Package circuitbreaker guards outbound dependency calls so a dead
// downstream fails fast instead of tying up request handlers.
package circuitbreaker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/mishwarapp/mishwar/internal/pkg/logger"
)

// ErrOpen is returned when the breaker is rejecting calls.
var ErrOpen = errors.New("circuit breaker is open")

// State represents the breaker state.
type State int

const (
	StateClosed State = iota
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
	default:
		return "unknown"
	}
}

// Config holds circuit breaker parameters.
type Config struct {
	Name             string
	FailureThreshold uint32        // consecutive failures that open the breaker
	SuccessThreshold uint32        // consecutive half-open successes that close it
	OpenTimeout      time.Duration // how long to reject before probing again
}

// DefaultConfig suits a remote payment or cache dependency.
func DefaultConfig(name string) Config {
	return Config{
		Name:             name,
		FailureThreshold: 5,
		SuccessThreshold: 2,
		OpenTimeout:      30 * time.Second,
	}
}

// Breaker tracks consecutive failures of one dependency.
type Breaker struct {
	mu        sync.Mutex
	config    Config
	state     State
	failures  uint32
	successes uint32
	openedAt  time.Time
}

// New creates a breaker in the closed state.
func New(config Config) *Breaker {
	if config.FailureThreshold == 0 {
		config.FailureThreshold = 5
	}
	if config.SuccessThreshold == 0 {
		config.SuccessThreshold = 1
	}
	if config.OpenTimeout <= 0 {
		config.OpenTimeout = 30 * time.Second
	}
	return &Breaker{config: config, state: StateClosed}
}

// Execute runs fn unless the breaker is open. The outcome feeds the
// failure counters.
func (b *Breaker) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	if !b.allow() {
		return ErrOpen
	}

	err := fn(ctx)
	b.record(err)
	return err
}

// State returns the current breaker state.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stateLocked()
}

func (b *Breaker) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stateLocked() != StateOpen
}

// stateLocked promotes open to half-open once the timeout has passed.
func (b *Breaker) stateLocked() State {
	if b.state == StateOpen && time.Since(b.openedAt) >= b.config.OpenTimeout {
		b.transition(StateHalfOpen)
	}
	return b.state
}

func (b *Breaker) record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err != nil {
		b.successes = 0
		b.failures++
		if b.state == StateHalfOpen || b.failures >= b.config.FailureThreshold {
			b.transition(StateOpen)
			b.openedAt = time.Now()
		}
		return
	}

	b.failures = 0
	if b.state == StateHalfOpen {
		b.successes++
		if b.successes >= b.config.SuccessThreshold {
			b.transition(StateClosed)
		}
	}
}

func (b *Breaker) transition(to State) {
	if b.state == to {
		return
	}
	logger.Info("Circuit breaker state change",
		logger.String("name", b.config.Name),
		logger.String("from", b.state.String()),
		logger.String("to", to.String()))
	b.state = to
	b.successes = 0
	if to == StateClosed {
		b.failures = 0
	}
}
