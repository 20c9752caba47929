package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/broilr/internal/logging"
	"github.com/aretw0/broilr/pkg/domain"
	"github.com/aretw0/broilr/pkg/ports"
	"github.com/aretw0/broilr/pkg/utterance"
)

// Result is the outcome of one transition.
type Result struct {
	// Session is the state after the transition. On failure it is the input session.
	Session *domain.Session
	// Replies are the assistant utterances to append to the transcript, in order.
	Replies []string
}

type handlerFunc func(ctx context.Context, s *domain.Session, u utterance.Utterance) ([]string, error)

// Engine is the conversation state machine.
// It is stateless between calls: the caller owns the Session and commits the returned one.
type Engine struct {
	backend  ports.RecipeBackend
	username string
	logger   *slog.Logger
	hooks    domain.LifecycleHooks
	handlers map[domain.Stage]handlerFunc
}

// Option configures the Engine.
type Option func(*Engine)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithLifecycleHooks registers observability callbacks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = e.hooks.Merge(hooks)
	}
}

// NewEngine creates an engine acting on behalf of username.
func NewEngine(backend ports.RecipeBackend, username string, opts ...Option) *Engine {
	e := &Engine{
		backend:  backend,
		username: username,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.handlers = map[domain.Stage]handlerFunc{
		domain.StageChoice:       e.handleChoice,
		domain.StageLoadOrDelete: e.handleLoadOrDelete,
		domain.StageDelete:       e.handleDelete,
		domain.StageDish:         e.handleDish,
		domain.StageFollowups:    e.handleFollowups,
		domain.StageStartCooking: e.handleStartCooking,
		domain.StageCooking:      e.handleCooking,
		domain.StageAskSave:      e.handleAskSave,
		domain.StageDone:         e.handleDone,
	}
	return e
}

// Username returns the identity the engine acts for.
func (e *Engine) Username() string {
	return e.username
}

// Step interprets one utterance against the session.
// The input session is never mutated. A backend failure yields the generic
// failure reply together with the unchanged session and an error wrapping
// domain.ErrBackend.
func (e *Engine) Step(ctx context.Context, sess *domain.Session, u utterance.Utterance) (Result, error) {
	if sess == nil {
		return Result{}, fmt.Errorf("%w: nil session", domain.ErrInvalidSession)
	}
	if err := sess.Validate(); err != nil {
		return Result{Session: sess}, err
	}
	if u.Empty() {
		return Result{Session: sess}, nil
	}

	handler, ok := e.handlers[sess.Stage]
	if !ok {
		return Result{Session: sess}, fmt.Errorf("%w: no handler for stage %q", domain.ErrInvalidSession, sess.Stage)
	}

	next := sess.Clone()
	replies, err := handler(ctx, next, u)
	if err != nil {
		if errors.Is(err, domain.ErrBackend) {
			return Result{Session: sess, Replies: []string{MsgBackendFailure}}, err
		}
		return Result{Session: sess}, err
	}

	if next.Stage != sess.Stage {
		e.logger.Debug("stage transition", "from", sess.Stage, "to", next.Stage)
		e.emitStageLeave(ctx, sess.Stage, next.Stage)
		e.emitStageEnter(ctx, sess.Stage, next.Stage)
	}
	return Result{Session: next, Replies: replies}, nil
}
