// Package resilience combines retries with exponential backoff and a circuit breaker
// for calls to external dependencies.
package resilience

import (
	"context"
	"errors"
	"log/slog"

	"github.com/abgdnv/catalog/pkg/config"
	"github.com/cenkalti/backoff/v5"
	"github.com/sony/gobreaker/v2"
)

// TransientError marks a failure that may succeed on a later attempt.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string { return e.Err.Error() }

func (e *TransientError) Unwrap() error { return e.Err }

// Transient wraps err as retryable. A nil err stays nil.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &TransientError{Err: err}
}

// IsTransient reports whether err, or any error it wraps, was marked with Transient.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}

// Executor runs operations through a circuit breaker and retries transient failures.
// Only transient failures count against the breaker.
type Executor[T any] struct {
	cb    *gobreaker.CircuitBreaker[T]
	retry config.RetryConfig
}

// NewExecutor creates an Executor named name using the retry and breaker settings in cfg.
func NewExecutor[T any](name string, cfg config.ResilienceConfig, logger *slog.Logger) *Executor[T] {
	breakerCfg := cfg.CircuitBreaker
	st := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     breakerCfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			total := counts.TotalSuccesses + counts.TotalFailures
			return counts.ConsecutiveFailures >= breakerCfg.ConsecutiveFailures ||
				(total > breakerCfg.ConsecutiveFailures &&
					float64(counts.TotalFailures)/float64(total)*100 > float64(breakerCfg.ErrorRatePercent))
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !IsTransient(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	}
	return &Executor[T]{
		cb:    gobreaker.NewCircuitBreaker[T](st),
		retry: cfg.Retry,
	}
}

// Execute calls op until it succeeds, returns a non-transient error, the breaker rejects the call,
// the retry budget is spent or ctx is done. The returned error is the last one op produced,
// unwrapped from TransientError.
func (e *Executor[T]) Execute(ctx context.Context, op func(ctx context.Context) (T, error)) (T, error) {
	operation := func() (T, error) {
		res, err := e.cb.Execute(func() (T, error) {
			return op(ctx)
		})
		if err == nil {
			return res, nil
		}
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return res, backoff.Permanent(err)
		}
		if !IsTransient(err) {
			return res, backoff.Permanent(err)
		}
		return res, err
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = e.retry.InitialBackoff
	res, err := backoff.Retry(ctx, operation, backoff.WithBackOff(bo), backoff.WithMaxTries(e.retry.MaxAttempts))
	var te *TransientError
	if errors.As(err, &te) {
		return res, te.Err
	}
	return res, err
}

// State returns the current breaker state.
func (e *Executor[T]) State() gobreaker.State {
	return e.cb.State()
}
