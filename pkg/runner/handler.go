package runner

import (
	"context"

	"github.com/aretw0/broilr/pkg/domain"
)

// IOHandler defines the strategy for interacting with the user.
// This allows switching between Text (CLI/TUI) and JSON (Structured) modes.
type IOHandler interface {
	// Output presents assistant messages produced while in the given stage.
	Output(ctx context.Context, msgs []domain.Message, stage domain.Stage) error

	// Input reads the next utterance from the user.
	// It returns io.EOF when the input stream is exhausted.
	Input(ctx context.Context) (string, error)

	// SystemOutput presents a meta-message (status, interruption notices).
	// This is distinct from conversation content.
	SystemOutput(ctx context.Context, msg string) error
}

// ContentRenderer transforms assistant text before it is printed
// (e.g. Markdown rendering in a terminal).
type ContentRenderer func(string) (string, error)
