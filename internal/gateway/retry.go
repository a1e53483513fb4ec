package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"taskboard/internal/model"
)

// Retrying wraps a Gateway and retries ChangeOrder with exponential backoff.
// Other calls pass straight through; only ChangeOrder is idempotent enough
// to repeat blindly.
type Retrying struct {
	Gateway
	attempts int
	delay    time.Duration
}

func NewRetrying(gw Gateway, attempts int, delay time.Duration) *Retrying {
	if attempts < 1 {
		attempts = 1
	}
	return &Retrying{Gateway: gw, attempts: attempts, delay: delay}
}

func (r *Retrying) ChangeOrder(ctx context.Context, tasks []model.Task) ([]model.Task, error) {
	var lastErr error
	for attempt := 0; attempt < r.attempts; attempt++ {
		if attempt > 0 {
			// 1x, 2x, 4x the base delay
			delay := r.delay << (attempt - 1)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		result, err := r.Gateway.ChangeOrder(ctx, tasks)
		if err == nil {
			return result, nil
		}
		lastErr = err
		if !Retryable(err) || ctx.Err() != nil {
			return nil, err
		}
		log.WithError(err).WithFields(log.Fields{
			"attempt": attempt + 1,
			"tasks":   len(tasks),
		}).Warn("change-order failed")
	}

	return nil, fmt.Errorf("change-order failed after %d attempts: %w", r.attempts, lastErr)
}

// Retryable reports whether err is a transport or server side failure.
// Validation, not-found and conflict answers are final.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Temporary()
	}
	return !errors.Is(err, ErrNotFound) && !errors.Is(err, ErrConflict) && !errors.Is(err, ErrInvalid)
}
