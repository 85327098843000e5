package embedding

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/akolanti/docmind/internal/domain/ragerrors"
)

// calculateBackoff returns exponential backoff with jitter: the base delay
// doubles each attempt, is capped, and carries random jitter up to 25%.
func calculateBackoff(baseDelay, cap time.Duration, attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}
	if attempt > 30 {
		attempt = 30
	}
	backoff := baseDelay * time.Duration(1<<uint(attempt))
	if backoff > cap {
		backoff = cap
	}
	jitter := time.Duration(rand.Int64N(int64(backoff)/2)) - backoff/4
	return backoff + jitter
}

// doWithRetry runs fn up to maxAttempts times, sleeping with exponential
// backoff between attempts. Only errors ragerrors.IsRetryable approves are
// retried; anything else fails immediately.
func doWithRetry(ctx context.Context, maxAttempts int, baseDelay, cap time.Duration, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ragerrors.Wrap(ragerrors.KindEmbedding, "retry cancelled", ctx.Err())
			case <-time.After(calculateBackoff(baseDelay, cap, attempt)):
			}
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if !ragerrors.IsRetryable(lastErr) {
			return lastErr
		}
	}
	return lastErr
}
