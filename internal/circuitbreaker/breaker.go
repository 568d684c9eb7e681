// Package circuitbreaker guards calls to a failing dependency.
//
// A Breaker wraps one asynchronous action registered with Initialize and runs it
// through a closed/open/half-open state machine on every Fire:
//
//   - closed: calls pass through; failures are counted in a window that is
//     reset at a fixed interval
//   - open: calls fail fast with ErrOpen, the action is not invoked
//   - half-open: after the reset timeout a trial call is let through; success
//     closes the circuit, failure opens it again
//
// Usage:
//
//	cb := circuitbreaker.New[int64, *Item](settings, logger)
//	_ = cb.Initialize(fetchItem)
//	cb.SetFallback(func(ctx context.Context, id int64, cause error) (*Item, error) {
//	    return nil, fmt.Errorf("items unavailable: %w", cause)
//	})
//	item, err := cb.Fire(ctx, 42)
package circuitbreaker

import (
	"context"
	"errors"
)

var (
	// ErrOpen is returned when the circuit rejects a call without invoking the action.
	ErrOpen = errors.New("circuit breaker is open")
	// ErrTimeout is returned when the action does not finish within the configured timeout.
	ErrTimeout = errors.New("circuit breaker: action timed out")
	// ErrNotInitialized is returned by Fire before an action has been registered.
	ErrNotInitialized = errors.New("circuit breaker: action not initialized")
	// ErrAlreadyInitialized is returned by a second call to Initialize.
	ErrAlreadyInitialized = errors.New("circuit breaker: action already initialized")
)

// State represents the circuit breaker state.
type State int

const (
	StateClosed   State = iota // Normal operation; calls pass through.
	StateOpen                  // Failing; calls are rejected immediately.
	StateHalfOpen              // Probing; trial calls test recovery.
)

// String returns a human-readable state name.
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

// Action is the protected operation.
type Action[I, O any] func(ctx context.Context, in I) (O, error)

// Fallback produces the result of a call that was rejected or failed. cause is
// ErrOpen, ErrTimeout or the error returned by the action.
type Fallback[I, O any] func(ctx context.Context, in I, cause error) (O, error)

// Breaker is the capability consumed by callers of a protected dependency.
type Breaker[I, O any] interface {
	// Initialize registers the protected action. It must be called exactly once
	// before the first Fire.
	Initialize(action Action[I, O]) error

	// SetFallback registers the behavior used when the circuit is open or the
	// action fails.
	SetFallback(fn Fallback[I, O])

	// Fire invokes the action subject to the breaker state machine.
	Fire(ctx context.Context, in I) (O, error)

	// State returns the current circuit state.
	State() State
}
