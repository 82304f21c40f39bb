// Package breaker is a circuit breaker for outgoing calls.
//
// A Closed breaker lets calls through and counts consecutive failures. At
// FailureThreshold it opens and rejects calls for OpenTimeout, then turns
// HalfOpen and admits up to HalfOpenMaxSuccess trials. That many successes
// close it again; any failure reopens it.
package breaker

import (
	"errors"
	"sync"
	"time"
)

// ErrOpen is returned by Do while the breaker rejects calls.
var ErrOpen = errors.New("breaker: circuit open")

type State int

const (
	Closed State = iota
	Open
	HalfOpen
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case HalfOpen:
		return "half-open"
	}
	return "unknown"
}

// Config holds the breaker thresholds. Zero fields take the defaults 5
// failures, 10s and 1 trial call.
type Config struct {
	FailureThreshold   int
	OpenTimeout        time.Duration
	HalfOpenMaxSuccess int
	// OnStateChange, when set, is called after every transition while the
	// breaker lock is held; it must not call back into the breaker.
	OnStateChange func(from, to State)
}

// Breaker is safe for concurrent use.
type Breaker struct {
	mu  sync.Mutex
	cfg Config

	state     State
	failures  int
	successes int
	trials    int
	openedAt  time.Time
	now       func() time.Time
}

// New returns a closed breaker.
func New(cfg Config) *Breaker {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 10 * time.Second
	}
	if cfg.HalfOpenMaxSuccess <= 0 {
		cfg.HalfOpenMaxSuccess = 1
	}
	return &Breaker{cfg: cfg, now: time.Now}
}

// State returns the current state, turning Open into HalfOpen once the open
// timeout has passed.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.expire()
	return b.state
}

// Allow reports whether a call may proceed. In HalfOpen every allowed call
// takes a trial slot that OnSuccess or OnFailure releases.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.expire()

	switch b.state {
	case Closed:
		return true
	case HalfOpen:
		if b.successes+b.trials >= b.cfg.HalfOpenMaxSuccess {
			return false
		}
		b.trials++
		return true
	}
	return false
}

// OnSuccess records a successful call.
func (b *Breaker) OnSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case Closed:
		b.failures = 0
	case HalfOpen:
		b.release()
		b.successes++
		if b.successes >= b.cfg.HalfOpenMaxSuccess {
			b.set(Closed)
		}
	}
}

// OnFailure records a failed call.
func (b *Breaker) OnFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case Closed:
		b.failures++
		if b.failures >= b.cfg.FailureThreshold {
			b.set(Open)
		}
	case HalfOpen:
		b.release()
		b.set(Open)
	}
}

// Do runs fn when the breaker allows it and records the outcome. Errors for
// which isFailure returns false, such as a rejected argument, count as
// successes. A nil isFailure treats every error as a failure.
func (b *Breaker) Do(fn func() error, isFailure func(error) bool) error {
	if !b.Allow() {
		return ErrOpen
	}
	err := fn()
	if err != nil && (isFailure == nil || isFailure(err)) {
		b.OnFailure()
	} else {
		b.OnSuccess()
	}
	return err
}

func (b *Breaker) release() {
	if b.trials > 0 {
		b.trials--
	}
}

func (b *Breaker) expire() {
	if b.state == Open && b.now().Sub(b.openedAt) >= b.cfg.OpenTimeout {
		b.set(HalfOpen)
	}
}

// set moves to state to and resets the counters. Callers hold b.mu.
func (b *Breaker) set(to State) {
	from := b.state
	b.state = to
	b.failures, b.successes, b.trials = 0, 0, 0
	if to == Open {
		b.openedAt = b.now()
	}
	if b.cfg.OnStateChange != nil && from != to {
		b.cfg.OnStateChange(from, to)
	}
}
