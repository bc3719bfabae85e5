package weather

import (
	"context"
	"time"
)

const (
	// DefaultMaxAttempts bounds the attempts of one fetch cycle.
	DefaultMaxAttempts = 5
	// DefaultRetryDelay is the fixed pause between attempts.
	DefaultRetryDelay = 10 * time.Second
)

// CycleState is the terminal state of a fetch cycle.
type CycleState string

const (
	CycleSucceeded CycleState = "succeeded"
	CycleExhausted CycleState = "exhausted"
	CycleCancelled CycleState = "cancelled"
	CycleRejected  CycleState = "rejected"
)

// RetryPolicy controls the fixed-delay retry loop. There is no backoff:
// every pause lasts exactly Delay.
type RetryPolicy struct {
	MaxAttempts int           `validate:"gte=1"`
	Delay       time.Duration `validate:"gte=0"`
}

// DefaultRetryPolicy returns 5 attempts spaced 10 seconds apart.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: DefaultMaxAttempts, Delay: DefaultRetryDelay}
}

// CycleResult describes how a fetch cycle ended.
type CycleResult struct {
	ID       string
	State    CycleState
	Snapshot Snapshot
	Attempts int
	Failures []error
	cause    error
}

// Err returns nil for a successful cycle, the last fetch failure for an
// exhausted one and the context error for a cancelled one.
func (r CycleResult) Err() error {
	switch r.State {
	case CycleSucceeded:
		return nil
	case CycleCancelled:
		if r.cause != nil {
			return r.cause
		}
		return context.Canceled
	default:
		if len(r.Failures) > 0 {
			return r.Failures[len(r.Failures)-1]
		}
		return r.cause
	}
}

// AttemptFunc performs a single fetch attempt.
type AttemptFunc func(ctx context.Context) (Snapshot, error)

// FailureFunc is told about every failed attempt before the retry pause.
type FailureFunc func(attempt, maxAttempts int, err error)

// Retrier runs an attempt until it succeeds, the attempts are used up, or the
// context is cancelled.
type Retrier struct {
	policy RetryPolicy
	sleep  func(ctx context.Context, d time.Duration) error
}

// NewRetrier creates a Retrier. MaxAttempts below 1 is treated as 1.
func NewRetrier(policy RetryPolicy) *Retrier {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}
	if policy.Delay < 0 {
		policy.Delay = 0
	}
	return &Retrier{policy: policy, sleep: sleepContext}
}

// Policy returns the effective policy.
func (r *Retrier) Policy() RetryPolicy {
	return r.policy
}

// Run drives the Attempting(n) -> Success | Attempting(n+1) | Exhausted loop.
func (r *Retrier) Run(ctx context.Context, attempt AttemptFunc, onFailure FailureFunc) CycleResult {
	var res CycleResult

	for n := 1; ; n++ {
		if err := ctx.Err(); err != nil {
			res.State = CycleCancelled
			res.cause = err
			return res
		}

		res.Attempts = n
		snapshot, err := attempt(ctx)
		if err == nil {
			res.State = CycleSucceeded
			res.Snapshot = snapshot
			return res
		}

		res.Failures = append(res.Failures, err)
		if onFailure != nil {
			onFailure(n, r.policy.MaxAttempts, err)
		}

		if n >= r.policy.MaxAttempts {
			res.State = CycleExhausted
			return res
		}

		if err := r.sleep(ctx, r.policy.Delay); err != nil {
			res.State = CycleCancelled
			res.cause = err
			return res
		}
	}
}

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
