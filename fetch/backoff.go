package fetch

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"
)

// Adapted from the teacher's internal/backoff exponential-retry
// policy, narrowed to the one policy the fetcher needs (HTTP/S3/SFTP
// transient failures) and wired directly into withRetry below instead of
// being exposed as a general-purpose policy interface.

var errRetriesExhausted = errors.New("fetch: retries exhausted")

type retryPolicy struct {
	initial    time.Duration
	factor     float64
	max        time.Duration
	maxRetries int
}

func defaultRetryPolicy() retryPolicy {
	return retryPolicy{initial: 200 * time.Millisecond, factor: 2.0, max: 10 * time.Second, maxRetries: 5}
}

func (p retryPolicy) nextInterval(retryCount int) (time.Duration, error) {
	if p.maxRetries > 0 && retryCount >= p.maxRetries {
		return 0, errRetriesExhausted
	}
	interval := float64(p.initial) * math.Pow(p.factor, float64(retryCount))
	if interval > float64(p.max) {
		interval = float64(p.max)
	}
	return time.Duration(interval), nil
}

type retrier struct {
	policy     retryPolicy
	retryCount int
	mu         sync.Mutex
}

func newRetrier(policy retryPolicy) *retrier {
	return &retrier{policy: policy}
}

func (r *retrier) next(ctx context.Context) error {
	r.mu.Lock()
	interval, err := r.policy.nextInterval(r.retryCount)
	if err != nil {
		r.mu.Unlock()
		return err
	}
	r.retryCount++
	r.mu.Unlock()

	timer := time.NewTimer(interval)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// withRetry runs op until it succeeds, op returns a non-retryable
// error, or the policy's retries are exhausted.
func withRetry(ctx context.Context, policy retryPolicy, op func() error) error {
	r := newRetrier(policy)
	for {
		err := op()
		if err == nil {
			return nil
		}
		if !isRetryable(err) {
			return err
		}
		if waitErr := r.next(ctx); waitErr != nil {
			return err
		}
	}
}

// isRetryable treats context cancellation/deadline as terminal and
// everything else (network hiccup, 5xx, transient sftp/S3 error) as
// worth another attempt — the fetcher narrows this further per
// transport where a status code is available (see http.go).
func isRetryable(err error) bool {
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}
