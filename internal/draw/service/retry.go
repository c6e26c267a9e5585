package service

import (
	"context"
	"errors"
	"time"

	dErrors "luckydraw/pkg/domainerrors"
	"luckydraw/pkg/platform/sentinel"
)

// retryBaseDelay is the backoff unit between storage retries. Kept short:
// every engine operation is a fast synchronous transaction.
const retryBaseDelay = 25 * time.Millisecond

// withRetry runs op up to attempts times, retrying only transient storage
// failures. Deterministic outcomes, coded domain errors and store facts like
// not-found or conflict, surface immediately; retrying them would just
// repeat the answer.
func withRetry[T any](ctx context.Context, attempts int, op func() (T, error)) (T, error) {
	var zero T
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return zero, ctx.Err()
			case <-time.After(retryBaseDelay << (i - 1)):
			}
		}
		var out T
		out, err = op()
		if err == nil {
			return out, nil
		}
		if !isRetryable(err) {
			return zero, err
		}
	}
	return zero, err
}

func isRetryable(err error) bool {
	var coded *dErrors.Error
	if errors.As(err, &coded) {
		return false
	}
	if errors.Is(err, sentinel.ErrNotFound) ||
		errors.Is(err, sentinel.ErrConflict) ||
		errors.Is(err, sentinel.ErrInvalidState) {
		return false
	}
	return true
}
