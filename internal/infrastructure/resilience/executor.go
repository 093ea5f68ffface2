package resilience

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"
)

// Verdict tells the executor how to treat one failed attempt.
type Verdict struct {
	Retryable     bool
	RecordFailure bool
}

// Classifier inspects an attempt error and returns its Verdict. A nil
// classifier treats every error as final and counted against the breaker.
type Classifier func(err error) Verdict

// Executor wraps calls to one downstream dependency with bounded retries
// and a shared circuit breaker. Construct one Executor per dependency and
// reuse it for every call.
type Executor struct {
	name       string
	policy     Policy
	classifier Classifier
	breaker    *gobreaker.CircuitBreaker[any]
	logger     *slog.Logger
}

func NewExecutor(name string, policy Policy, classifier Classifier, logger *slog.Logger) *Executor {
	if classifier == nil {
		classifier = func(error) Verdict { return Verdict{RecordFailure: true} }
	}
	if logger == nil {
		logger = slog.Default()
	}

	e := &Executor{
		name:       name,
		policy:     policy.normalize(),
		classifier: classifier,
		logger:     logger,
	}
	if e.policy.BreakerEnabled {
		e.breaker = gobreaker.NewCircuitBreaker[any](e.breakerSettings())
	}
	return e
}

func (e *Executor) Execute(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return fmt.Errorf("resilience %s: nil callback", e.name)
	}
	if e.breaker == nil {
		return e.runWithRetry(ctx, fn)
	}
	_, err := e.breaker.Execute(func() (any, error) {
		return nil, e.runWithRetry(ctx, fn)
	})
	return err
}

func (e *Executor) runWithRetry(ctx context.Context, fn func(context.Context) error) error {
	backoff := e.policy.InitialBackoff

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := fn(ctx)
		if err == nil {
			return nil
		}
		if !e.classifier(err).Retryable || attempt == e.policy.MaxAttempts {
			return err
		}

		e.logger.Warn("retry_attempt",
			"dependency", e.name,
			"attempt", attempt,
			"max_attempts", e.policy.MaxAttempts,
			"backoff", backoff.String(),
			"error", err,
		)

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return err
		case <-timer.C:
		}

		backoff = time.Duration(float64(backoff) * e.policy.Multiplier)
		if backoff > e.policy.MaxBackoff {
			backoff = e.policy.MaxBackoff
		}
	}
}

func (e *Executor) breakerSettings() gobreaker.Settings {
	return gobreaker.Settings{
		Name:        e.name,
		MaxRequests: e.policy.BreakerHalfOpenMax,
		Timeout:     e.policy.BreakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < e.policy.BreakerMinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return ratio >= e.policy.BreakerFailureRatio
		},
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			return !e.classifier(err).RecordFailure
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			e.logger.Warn("circuit_breaker_state_change",
				"dependency", name, "from", from.String(), "to", to.String())
		},
	}
}

// IsCircuitOpen reports whether err came from a breaker rejecting the call
// rather than from the call itself.
func IsCircuitOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}
