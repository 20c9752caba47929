package middleware

import (
	"context"
	"time"
)

// WithTimeout bounds every operation (each attempt, when placed inside WithRetry).
// A zero duration disables the bound.
func WithTimeout(d time.Duration) Middleware {
	return Intercept(func(ctx context.Context, op string, call func(context.Context) error) error {
		if d <= 0 {
			return call(ctx)
		}
		ctx, cancel := context.WithTimeout(ctx, d)
		defer cancel()
		return call(ctx)
	})
}
