package circuitbreaker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"favorites-catalog/internal/metrics"
	"github.com/sony/gobreaker"
)

// Settings configures a GoBreaker.
type Settings struct {
	// Name labels logs and metrics.
	Name string
	// Timeout bounds a single action invocation. Zero disables the bound.
	Timeout time.Duration
	// ErrorThresholdPercentage is the failure percentage within the current
	// window at which the circuit opens.
	ErrorThresholdPercentage float64
	// ResetTimeout is the open to half-open delay.
	ResetTimeout time.Duration
	// RollingWindow is the period after which closed-state counts are reset.
	// Counts are cleared every RollingWindow rather than sliding. Zero keeps
	// counting until the next state change.
	RollingWindow time.Duration
	// VolumeThreshold is the minimum number of calls in the window before the
	// circuit may open.
	VolumeThreshold uint32
	// HalfOpenMaxRequests is the number of trial calls admitted while half-open.
	HalfOpenMaxRequests uint32
}

// GoBreaker is a Breaker backed by sony/gobreaker. Its counters and state are
// safe for concurrent use.
type GoBreaker[I, O any] struct {
	cb      *gobreaker.CircuitBreaker
	name    string
	timeout time.Duration
	logger  *log.Logger

	mu       sync.RWMutex
	action   Action[I, O]
	fallback Fallback[I, O]
}

// New builds a GoBreaker from settings. A nil logger discards output.
func New[I, O any](s Settings, logger *log.Logger) *GoBreaker[I, O] {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	b := &GoBreaker[I, O]{
		name:    s.Name,
		timeout: s.Timeout,
		logger:  logger,
	}
	maxRequests := s.HalfOpenMaxRequests
	if maxRequests == 0 {
		maxRequests = 1
	}
	b.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:          s.Name,
		MaxRequests:   maxRequests,
		Interval:      s.RollingWindow,
		Timeout:       s.ResetTimeout,
		ReadyToTrip:   tripOnFailureRate(s.ErrorThresholdPercentage, s.VolumeThreshold),
		OnStateChange: b.onStateChange,
		IsSuccessful:  isSuccessful,
	})
	metrics.CircuitBreakerState.WithLabelValues(s.Name).Set(float64(StateClosed))
	return b
}

func (b *GoBreaker[I, O]) Initialize(action Action[I, O]) error {
	if action == nil {
		return errors.New("circuit breaker: nil action")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.action != nil {
		return ErrAlreadyInitialized
	}
	b.action = action
	return nil
}

func (b *GoBreaker[I, O]) SetFallback(fn Fallback[I, O]) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fallback = fn
}

func (b *GoBreaker[I, O]) Fire(ctx context.Context, in I) (O, error) {
	var zero O

	b.mu.RLock()
	action, fallback := b.action, b.fallback
	b.mu.RUnlock()
	if action == nil {
		return zero, ErrNotInitialized
	}

	// A call cancelled before admission never reaches the counters.
	if err := ctx.Err(); err != nil {
		if fallback != nil {
			return fallback(ctx, in, err)
		}
		return zero, err
	}

	probing := b.cb.State() != gobreaker.StateClosed
	res, err := b.cb.Execute(func() (interface{}, error) {
		out, err := b.call(ctx, action, in)
		if probing && errors.Is(err, context.Canceled) {
			return out, &cancelledTrial{err: err}
		}
		return out, err
	})
	if err != nil {
		var trial *cancelledTrial
		if errors.As(err, &trial) {
			err = trial.err
		}
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			err = fmt.Errorf("%s: %w", b.name, ErrOpen)
		}
		if fallback != nil {
			return fallback(ctx, in, err)
		}
		return zero, err
	}
	out, _ := res.(O)
	return out, nil
}

func (b *GoBreaker[I, O]) State() State {
	return fromGobreaker(b.cb.State())
}

type result[O any] struct {
	out O
	err error
}

// call runs action under the configured timeout. On expiry the action keeps
// running in its goroutine and its result is dropped.
func (b *GoBreaker[I, O]) call(ctx context.Context, action Action[I, O], in I) (interface{}, error) {
	if b.timeout <= 0 {
		out, err := action(ctx, in)
		return out, err
	}

	callCtx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	done := make(chan result[O], 1)
	go func() {
		out, err := action(callCtx, in)
		done <- result[O]{out: out, err: err}
	}()

	select {
	case r := <-done:
		if r.err == nil || callCtx.Err() == nil {
			return r.out, r.err
		}
	case <-callCtx.Done():
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return nil, ErrTimeout
}

// onStateChange runs under gobreaker's lock; it must not call back into cb.
func (b *GoBreaker[I, O]) onStateChange(name string, from, to gobreaker.State) {
	f, t := fromGobreaker(from), fromGobreaker(to)
	metrics.CircuitBreakerStateChanges.WithLabelValues(name, f.String(), t.String()).Inc()
	metrics.CircuitBreakerState.WithLabelValues(name).Set(float64(t))
	b.logger.Printf("circuit breaker: state change name=%s from=%s to=%s", name, f, t)
}

func tripOnFailureRate(thresholdPct float64, volume uint32) func(gobreaker.Counts) bool {
	return func(c gobreaker.Counts) bool {
		if c.Requests == 0 || c.Requests < volume {
			return false
		}
		return float64(c.TotalFailures)*100 >= thresholdPct*float64(c.Requests)
	}
}

// cancelledTrial marks a half-open trial abandoned by its caller. The
// dependency never answered, so the trial must not close the circuit.
type cancelledTrial struct{ err error }

func (e *cancelledTrial) Error() string { return e.err.Error() }
func (e *cancelledTrial) Unwrap() error { return e.err }

// Caller cancellation says nothing about the dependency's health while closed.
// gobreaker has no way to leave a finished call uncounted, so a cancelled
// half-open trial is reported as a failure and the circuit reopens.
func isSuccessful(err error) bool {
	var trial *cancelledTrial
	if errors.As(err, &trial) {
		return false
	}
	return err == nil || errors.Is(err, context.Canceled)
}

func fromGobreaker(s gobreaker.State) State {
	switch s {
	case gobreaker.StateOpen:
		return StateOpen
	case gobreaker.StateHalfOpen:
		return StateHalfOpen
	default:
		return StateClosed
	}
}

var _ Breaker[int, int] = (*GoBreaker[int, int])(nil)
