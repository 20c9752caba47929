package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventStageEnter    EventType = "stage_enter"
	EventStageLeave    EventType = "stage_leave"
	EventBackendCall   EventType = "backend_call"
	EventBackendReturn EventType = "backend_return"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// StageEvent represents entering or leaving a stage.
type StageEvent struct {
	EventBase
	From Stage `json:"from"`
	To   Stage `json:"to"`
}

// BackendEvent represents one call to the recipe backend.
type BackendEvent struct {
	EventBase
	Stage     Stage         `json:"stage"`
	Operation string        `json:"operation"`
	Duration  time.Duration `json:"duration,omitempty"`
	IsError   bool          `json:"is_error,omitempty"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnStageEnter    func(context.Context, *StageEvent)
	OnStageLeave    func(context.Context, *StageEvent)
	OnBackendCall   func(context.Context, *BackendEvent)
	OnBackendReturn func(context.Context, *BackendEvent)
}

// Merge returns hooks that call h first and then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnStageEnter:    chain(h.OnStageEnter, other.OnStageEnter),
		OnStageLeave:    chain(h.OnStageLeave, other.OnStageLeave),
		OnBackendCall:   chain(h.OnBackendCall, other.OnBackendCall),
		OnBackendReturn: chain(h.OnBackendReturn, other.OnBackendReturn),
	}
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
