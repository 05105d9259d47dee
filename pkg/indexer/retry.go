package indexer

import (
	"context"
	"log/slog"
	"time"
)

// EmbedFunc is the signature for a single embedding call.
type EmbedFunc func(ctx context.Context, text string) ([]float32, error)

// DefaultRetryDelays returns the backoff delays for embedding retries: 1s, 2s, 4s.
func DefaultRetryDelays() []time.Duration {
	return BackoffDelays(3)
}

// BackoffDelays returns n delays doubling from one second.
func BackoffDelays(n int) []time.Duration {
	delays := make([]time.Duration, 0, n)
	d := time.Second
	for i := 0; i < n; i++ {
		delays = append(delays, d)
		d *= 2
	}
	return delays
}

// EmbedWithRetry calls embed once, then once more after each delay while it
// keeps failing. It gives up early if ctx is done.
func EmbedWithRetry(ctx context.Context, text string, embed EmbedFunc, logger *slog.Logger, delays []time.Duration) ([]float32, error) {
	maxAttempts := len(delays) + 1

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		vec, err := embed(ctx, text)
		if err == nil {
			return vec, nil
		}
		lastErr = err

		if attempt >= maxAttempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if logger != nil {
			logger.Debug("retrying embedding", "attempt", attempt+2, "delay", delays[attempt], "error", err)
		}

		timer := time.NewTimer(delays[attempt])
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	return nil, lastErr
}
