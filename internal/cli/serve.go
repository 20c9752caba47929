package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	httpAdapter "github.com/aretw0/broilr/pkg/adapters/http"
	"github.com/aretw0/broilr/pkg/session"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

// Serve runs the HTTP server until ctx is done, then shuts it down gracefully.
func Serve(ctx context.Context, rt *Runtime) error {
	cfg := rt.Config

	sessions := session.NewManager(rt.NewConversation,
		session.WithIdleTTL(cfg.Server.IdleTTL),
		session.WithLogger(rt.Logger),
	)

	opts := []httpAdapter.Option{
		httpAdapter.WithLogger(rt.Logger),
		httpAdapter.WithMaxInputSize(cfg.Input.MaxSize),
		httpAdapter.WithVoiceRestartDelay(cfg.Speech.RestartDelay),
	}
	if rt.Metrics != nil {
		rt.Metrics.TrackConversations(sessions.Len)
		opts = append(opts,
			httpAdapter.WithMetricsHandler(rt.Metrics.Handler()),
			httpAdapter.WithVoiceObserver(rt.Metrics.ObserveSpeech),
		)
	}
	server, err := httpAdapter.NewServer(sessions, opts...)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rt.Logger.Info("Starting Broilr server", "addr", srv.Addr, "offline", cfg.Backend.Offline)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if cfg.Server.IdleTTL <= 0 {
			return nil
		}
		return sessions.Run(ctx, cfg.Server.IdleTTL/2)
	})
	g.Go(func() error {
		<-ctx.Done()
		rt.Logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			_ = srv.Close()
			return fmt.Errorf("graceful shutdown did not complete in %v: %w", shutdownTimeout, err)
		}
		return nil
	})

	return handleExecutionError(g.Wait())
}
