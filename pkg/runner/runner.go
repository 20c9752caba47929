package runner

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"

	"github.com/aretw0/broilr"
	"github.com/aretw0/broilr/internal/logging"
	"github.com/aretw0/broilr/pkg/domain"
	"github.com/aretw0/broilr/pkg/utterance"
)

// DefaultExitCommands end the loop without being submitted.
var DefaultExitCommands = []string{"exit", "quit"}

// Runner drives a conversation through an IOHandler.
type Runner struct {
	Handler      IOHandler
	Logger       *slog.Logger
	ExitCommands []string

	// SkipTranscript suppresses printing the existing transcript on start.
	SkipTranscript bool
}

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.Logger = logger
	}
}

// WithInputHandler configures a custom IOHandler.
func WithInputHandler(handler IOHandler) Option {
	return func(r *Runner) {
		r.Handler = handler
	}
}

// WithExitCommands replaces the words that end the loop.
func WithExitCommands(words ...string) Option {
	return func(r *Runner) {
		r.ExitCommands = words
	}
}

// WithSkipTranscript stops the runner from replaying the transcript on start.
func WithSkipTranscript(skip bool) Option {
	return func(r *Runner) {
		r.SkipTranscript = skip
	}
}

// NewRunner creates a runner reading from stdin and writing to stdout
// unless a handler is supplied.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		Logger:       logging.NewNop(),
		ExitCommands: DefaultExitCommands,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.Handler == nil {
		r.Handler = NewTextHandler(nil, nil)
	}
	return r
}

// Run loops until the input is exhausted, an exit command is read, the
// user interrupts while being prompted, or ctx is cancelled.
// Backend failures are reported through the conversation's failure reply
// and do not end the loop.
func (r *Runner) Run(ctx context.Context, conv *broilr.Conversation) error {
	if conv == nil {
		return errors.New("runner: conversation is required")
	}

	sm := NewSignalManager(ctx)
	defer sm.Stop()

	if !r.SkipTranscript {
		if err := r.Handler.Output(ctx, conv.Transcript(), conv.Stage()); err != nil {
			return err
		}
	}

	for {
		input, err := r.Handler.Input(sm.Context())
		if err != nil {
			if errors.Is(err, io.EOF) {
				sm.CheckRace()
			}
			if sm.Interrupted() {
				r.Logger.Debug("interrupted while waiting for input")
				_ = r.Handler.SystemOutput(ctx, "Interrupted. Bye!")
				return nil
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			if errors.Is(err, ErrInputTooLarge) || errors.Is(err, ErrInvalidUTF8) {
				_ = r.Handler.SystemOutput(ctx, err.Error())
				continue
			}
			return err
		}

		if r.isExit(input) {
			return nil
		}

		replies, err := conv.Submit(sm.Context(), input)
		if err != nil {
			if !errors.Is(err, domain.ErrBackend) {
				return err
			}
			r.Logger.Warn("backend call failed", "stage", conv.Stage(), "error", err)
		}
		if err := r.Handler.Output(ctx, replies, conv.Stage()); err != nil {
			return err
		}

		if sm.Interrupted() {
			_ = r.Handler.SystemOutput(ctx, "Interrupted.")
			sm.Reset()
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

func (r *Runner) isExit(input string) bool {
	return slices.Contains(r.ExitCommands, utterance.Normalize(input))
}
