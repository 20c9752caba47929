package runtime

import (
	"context"
	"fmt"
	"time"

	"github.com/aretw0/broilr/pkg/domain"
)

func (e *Engine) emitStageEnter(ctx context.Context, from, to domain.Stage) {
	if e.hooks.OnStageEnter != nil {
		e.hooks.OnStageEnter(ctx, &domain.StageEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventStageEnter},
			From:      from,
			To:        to,
		})
	}
}

func (e *Engine) emitStageLeave(ctx context.Context, from, to domain.Stage) {
	if e.hooks.OnStageLeave != nil {
		e.hooks.OnStageLeave(ctx, &domain.StageEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventStageLeave},
			From:      from,
			To:        to,
		})
	}
}

// call runs one backend operation, reporting it to the hooks.
// Any failure is returned wrapped with domain.ErrBackend.
func (e *Engine) call(ctx context.Context, stage domain.Stage, op string, fn func(context.Context) error) error {
	if e.hooks.OnBackendCall != nil {
		e.hooks.OnBackendCall(ctx, &domain.BackendEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventBackendCall},
			Stage:     stage,
			Operation: op,
		})
	}

	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)

	if e.hooks.OnBackendReturn != nil {
		e.hooks.OnBackendReturn(ctx, &domain.BackendEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventBackendReturn},
			Stage:     stage,
			Operation: op,
			Duration:  elapsed,
			IsError:   err != nil,
		})
	}

	if err != nil {
		e.logger.Error("backend call failed", "op", op, "stage", stage, "duration", elapsed, "err", err)
		return fmt.Errorf("%w: %s: %w", domain.ErrBackend, op, err)
	}
	e.logger.Debug("backend call", "op", op, "stage", stage, "duration", elapsed)
	return nil
}
