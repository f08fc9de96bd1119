package source

import (
	"context"
	"time"

	"github.com/sethvargo/go-retry"
	"golang.org/x/time/rate"
)

// throttle paces and retries API calls shared by one remote source. Every
// loader of that source goes through the same limiter.
type throttle struct {
	limiter   *rate.Limiter
	retries   uint64
	backoff   time.Duration
	retryable func(error) bool
}

func newThrottle(perSecond int, retryable func(error) bool) *throttle {
	limit := rate.Inf
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
	}
	return &throttle{
		limiter:   rate.NewLimiter(limit, max(perSecond, 1)),
		retries:   3,
		backoff:   500 * time.Millisecond,
		retryable: retryable,
	}
}

// do runs call, waiting on the limiter before each attempt and retrying
// transient failures with exponential backoff.
func (t *throttle) do(ctx context.Context, call func(ctx context.Context) error) error {
	return retry.Do(ctx, retry.WithMaxRetries(t.retries, retry.NewExponential(t.backoff)), func(ctx context.Context) error {
		if err := t.limiter.Wait(ctx); err != nil {
			return err
		}
		err := call(ctx)
		if err != nil && t.retryable(err) {
			return retry.RetryableError(err)
		}
		return err
	})
}
