package middleware

import (
	"context"
	"log/slog"
	"time"
)

// WithLogging logs every operation with its duration and outcome.
func WithLogging(logger *slog.Logger) Middleware {
	return Intercept(func(ctx context.Context, op string, call func(context.Context) error) error {
		start := time.Now()
		err := call(ctx)
		if err != nil {
			logger.Warn("backend request failed", "op", op, "duration", time.Since(start), "err", err)
			return err
		}
		logger.Debug("backend request", "op", op, "duration", time.Since(start))
		return nil
	})
}

// Observer records backend requests.
type Observer interface {
	ObserveBackendRequest(op string, d time.Duration, err error)
}

// WithMetrics reports every operation to obs.
func WithMetrics(obs Observer) Middleware {
	return Intercept(func(ctx context.Context, op string, call func(context.Context) error) error {
		start := time.Now()
		err := call(ctx)
		obs.ObserveBackendRequest(op, time.Since(start), err)
		return err
	})
}
