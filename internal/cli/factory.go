package cli

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aretw0/broilr"
	"github.com/aretw0/broilr/internal/config"
	"github.com/aretw0/broilr/internal/logging"
	"github.com/aretw0/broilr/internal/metrics"
	"github.com/aretw0/broilr/pkg/adapters/file"
	"github.com/aretw0/broilr/pkg/adapters/memory"
	"github.com/aretw0/broilr/pkg/adapters/redis"
	"github.com/aretw0/broilr/pkg/adapters/rest"
	"github.com/aretw0/broilr/pkg/backend/middleware"
	"github.com/aretw0/broilr/pkg/domain"
	"github.com/aretw0/broilr/pkg/ports"
)

// Runtime bundles the collaborators every command needs.
type Runtime struct {
	Config   *config.Config
	Logger   *slog.Logger
	Backend  ports.RecipeBackend
	Identity ports.IdentityStore
	Metrics  *metrics.Metrics

	closers []func() error
}

// NewRuntime wires the configured backend, identity store and logger.
// Metrics are created only when withMetrics is set.
func NewRuntime(cfg *config.Config, debug, withMetrics bool) (*Runtime, error) {
	logger, err := createLogger(cfg, debug)
	if err != nil {
		return nil, err
	}
	rt := &Runtime{Config: cfg, Logger: logger}
	if withMetrics && cfg.Server.Metrics {
		rt.Metrics = metrics.New()
	}

	rt.Backend = rt.newBackend()

	identity, closer, err := newIdentityStore(cfg)
	if err != nil {
		return nil, err
	}
	rt.Identity = identity
	if closer != nil {
		rt.closers = append(rt.closers, closer)
	}
	return rt, nil
}

// Close releases connections held by the runtime.
func (rt *Runtime) Close() error {
	var first error
	for _, c := range rt.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Hooks returns the lifecycle hooks for new conversations.
func (rt *Runtime) Hooks() domain.LifecycleHooks {
	hooks := createDebugHooks(rt.Logger)
	if rt.Metrics != nil {
		hooks = hooks.Merge(rt.Metrics.Hooks())
	}
	return hooks
}

// NewConversation starts a conversation wired to the runtime backend.
func (rt *Runtime) NewConversation(ctx context.Context, username string) (*broilr.Conversation, error) {
	return broilr.New(rt.Backend, username,
		broilr.WithLogger(rt.Logger),
		broilr.WithLifecycleHooks(rt.Hooks()),
	)
}

func (rt *Runtime) newBackend() ports.RecipeBackend {
	cfg := rt.Config
	var base ports.RecipeBackend
	if cfg.Backend.Offline {
		rt.Logger.Debug("using in-memory recipe backend")
		base = memory.NewBackend()
	} else {
		base = rest.New(cfg.Backend.URL,
			rest.WithLogger(rt.Logger),
			rest.WithUserAgent("broilr/"+strings.TrimSpace(broilr.Version)),
		)
	}

	mws := []middleware.Middleware{middleware.WithLogging(rt.Logger)}
	if rt.Metrics != nil {
		mws = append(mws, middleware.WithMetrics(rt.Metrics))
	}
	mws = append(mws, middleware.WithRetry(middleware.RetryConfig{Attempts: cfg.Backend.Retries}))
	if cfg.Backend.Timeout > 0 {
		mws = append(mws, middleware.WithTimeout(cfg.Backend.Timeout))
	}
	return middleware.Chain(base, mws...)
}

func newIdentityStore(cfg *config.Config) (ports.IdentityStore, func() error, error) {
	switch cfg.Identity.Store {
	case config.StoreMemory:
		return memory.NewIdentityStore(), nil, nil
	case config.StoreRedis:
		opts := []redis.Option{}
		if cfg.Redis.Prefix != "" {
			opts = append(opts, redis.WithPrefix(cfg.Redis.Prefix))
		}
		if cfg.Identity.Path != "" {
			opts = append(opts, redis.WithProfile(cfg.Identity.Path))
		}
		if cfg.Redis.TTL > 0 {
			opts = append(opts, redis.WithTTL(cfg.Redis.TTL))
		}
		store := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, opts...)
		return store, store.Close, nil
	case config.StoreFile, "":
		path := cfg.Identity.Path
		if path == "" {
			path = file.DefaultPath()
		}
		return file.NewIdentityStore(path), nil, nil
	}
	return nil, nil, fmt.Errorf("unknown identity store %q", cfg.Identity.Store)
}

// createLogger configures the application logger.
// --debug forces debug level on stderr regardless of the configured level.
func createLogger(cfg *config.Config, debug bool) (*slog.Logger, error) {
	level := logging.ParseLevel(cfg.Log.Level)
	if debug {
		level = slog.LevelDebug
	}
	return logging.NewWithFormat(cfg.Log.Format, level)
}

func createDebugHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStageEnter: func(ctx context.Context, e *domain.StageEvent) {
			logger.Debug("Enter Stage", "stage", e.To, "from", e.From)
		},
		OnStageLeave: func(ctx context.Context, e *domain.StageEvent) {
			logger.Debug("Leave Stage", "stage", e.From)
		},
		OnBackendCall: func(ctx context.Context, e *domain.BackendEvent) {
			logger.Debug("Backend Call", "op", e.Operation, "stage", e.Stage)
		},
		OnBackendReturn: func(ctx context.Context, e *domain.BackendEvent) {
			if e.IsError {
				logger.Debug("Backend Return (Error)", "op", e.Operation, "duration", e.Duration)
			} else {
				logger.Debug("Backend Return (Success)", "op", e.Operation, "duration", e.Duration)
			}
		},
	}
}
