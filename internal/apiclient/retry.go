package apiclient

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// RetryPolicy controls the backoff behavior for a call site
type RetryPolicy struct {
	MaxRetries        int
	BaseDelay         time.Duration
	MaxDelay          time.Duration
	BackoffMultiplier float64
}

// DefaultRetryPolicy returns the policy used when a caller does not supply one
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:        3,
		BaseDelay:         1 * time.Second,
		MaxDelay:          30 * time.Second,
		BackoffMultiplier: 2.0,
	}
}

// maxJitter is the upper bound of the random addition applied to every delay
// so simultaneous widgets do not retry in lockstep.
const maxJitter = 1 * time.Second

// Executor retries retryable failures with capped exponential backoff.
// sleep and jitter are injectable for tests; the zero value is not usable,
// construct with NewExecutor.
type Executor struct {
	policy RetryPolicy
	sleep  func(ctx context.Context, d time.Duration) error
	jitter func() time.Duration
}

// NewExecutor creates an executor for the given policy, filling in defaults
// for unset policy fields.
func NewExecutor(policy RetryPolicy) *Executor {
	def := DefaultRetryPolicy()
	if policy.MaxRetries < 0 {
		policy.MaxRetries = def.MaxRetries
	}
	if policy.BaseDelay <= 0 {
		policy.BaseDelay = def.BaseDelay
	}
	if policy.MaxDelay <= 0 {
		policy.MaxDelay = def.MaxDelay
	}
	if policy.BackoffMultiplier <= 0 {
		policy.BackoffMultiplier = def.BackoffMultiplier
	}

	return &Executor{
		policy: policy,
		sleep:  sleepContext,
		jitter: func() time.Duration {
			return time.Duration(rand.Int63n(int64(maxJitter)))
		},
	}
}

// Policy returns the effective policy of the executor
func (e *Executor) Policy() RetryPolicy {
	return e.policy
}

// Do invokes call until it succeeds, fails in a non-retryable way, or the
// retry budget is spent. call runs at most MaxRetries+1 times. The returned
// error is always a classified *APIError; raw transport errors never escape.
func (e *Executor) Do(ctx context.Context, call func(ctx context.Context) (*Response, error)) (*Response, error) {
	var lastErr *APIError

	for attempt := 0; attempt <= e.policy.MaxRetries; attempt++ {
		resp, err := call(ctx)
		if err == nil {
			return resp, nil
		}

		lastErr = Classify(err)
		if !lastErr.CanRetry || attempt == e.policy.MaxRetries {
			return nil, lastErr
		}

		delay := e.delayForAttempt(attempt, lastErr) + e.jitter()
		if err := e.sleep(ctx, delay); err != nil {
			return nil, Classify(err)
		}
	}

	return nil, lastErr
}

// delayForAttempt computes the pre-jitter backoff delay for the given zero-
// based attempt: min(maxDelay, baseDelay*multiplier^attempt), raised to the
// provider's Retry-After for rate limits.
func (e *Executor) delayForAttempt(attempt int, apiErr *APIError) time.Duration {
	backoff := float64(e.policy.BaseDelay) * math.Pow(e.policy.BackoffMultiplier, float64(attempt))
	delay := time.Duration(math.Min(float64(e.policy.MaxDelay), backoff))

	if apiErr != nil && apiErr.Kind == KindRateLimit && apiErr.RetryAfterSeconds > 0 {
		if wait := time.Duration(apiErr.RetryAfterSeconds) * time.Second; wait > delay {
			delay = wait
		}
	}

	return delay
}

// sleepContext waits for d unless the context is cancelled first
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
