package middleware

import (
	"context"
	"errors"
	"time"

	"github.com/aretw0/broilr/pkg/domain"
	"github.com/cenkalti/backoff/v5"
)

// RetryConfig controls WithRetry.
type RetryConfig struct {
	// Attempts is the total number of tries, including the first. Values below 1 mean 1.
	Attempts uint
	// NewBackOff builds the delay policy for one operation. Defaults to exponential.
	NewBackOff func() backoff.BackOff
	// Retryable decides whether an error is worth another try. Defaults to Retryable.
	Retryable func(error) bool
}

// idempotent operations may be repeated without side effects on the service.
// generate_recipe is excluded: the service pushes the result onto the user's
// profile, so a repeat after a lost response stores a duplicate.
var idempotent = map[string]bool{
	OpListRecipes: true,
	OpFollowups:   true,
	OpAskStep:     true,
	OpLogin:       true,
}

// WithRetry repeats failed idempotent operations.
// Generations, saves, deletes and signups are never repeated.
func WithRetry(cfg RetryConfig) Middleware {
	if cfg.Attempts < 1 {
		cfg.Attempts = 1
	}
	if cfg.NewBackOff == nil {
		cfg.NewBackOff = func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 200 * time.Millisecond
			b.MaxInterval = 2 * time.Second
			return b
		}
	}
	if cfg.Retryable == nil {
		cfg.Retryable = Retryable
	}

	return Intercept(func(ctx context.Context, op string, call func(context.Context) error) error {
		if cfg.Attempts == 1 || !idempotent[op] {
			return call(ctx)
		}
		_, err := backoff.Retry(ctx, func() (struct{}, error) {
			err := call(ctx)
			if err != nil && !cfg.Retryable(err) {
				return struct{}{}, backoff.Permanent(err)
			}
			return struct{}{}, err
		}, backoff.WithBackOff(cfg.NewBackOff()), backoff.WithMaxTries(cfg.Attempts))
		return err
	})
}

// Retryable reports whether err is a transient backend failure.
// Errors exposing a Retryable() bool method decide for themselves.
func Retryable(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, context.Canceled),
		errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, domain.ErrUserExists),
		errors.Is(err, domain.ErrNoMatch),
		errors.Is(err, domain.ErrEmptyResult),
		errors.Is(err, domain.ErrNotLoggedIn):
		return false
	}
	var r interface{ Retryable() bool }
	if errors.As(err, &r) {
		return r.Retryable()
	}
	return errors.Is(err, domain.ErrBackend) || errors.Is(err, context.DeadlineExceeded)
}
