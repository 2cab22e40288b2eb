package service

import (
	"context"
	"errors"
	"time"

	"library-circulation/internal/domain"
	"library-circulation/internal/logger"
)

// retryOnConflict reruns fn while it fails with Conflict, up to
// cfg.MaxConflictRetries extra attempts with a linearly growing pause. Any
// other error, or the last Conflict, is returned as is.
func retryOnConflict[T any](ctx context.Context, cfg CirculationConfig, op string, fn func() (T, error)) (T, error) {
	for attempt := 0; ; attempt++ {
		result, err := fn()
		if err == nil || !errors.Is(err, domain.ErrConflict) || attempt >= cfg.MaxConflictRetries {
			return result, err
		}

		wait := time.Duration(attempt+1) * cfg.RetryBackoff
		logger.WarnContext(ctx, "Conflict, retrying", "op", op, "attempt", attempt+1, "wait", wait, "error", err)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return result, domain.StoreFailure(op, ctx.Err())
		case <-timer.C:
		}
	}
}
