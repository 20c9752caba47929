package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/aretw0/broilr/internal/presentation/tui"
	"github.com/aretw0/broilr/pkg/runner"
	"github.com/aretw0/broilr/pkg/speech"
)

// ChatOptions configures the chat command.
type ChatOptions struct {
	JSON  bool
	Plain bool
	Quiet bool
	Debug bool
	Voice bool

	Stdin  io.Reader
	Stdout io.Writer
}

// RunChat starts an interactive conversation for the stored user.
func RunChat(ctx context.Context, rt *Runtime, opts ChatOptions) error {
	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}

	username, err := rt.Identity.Load(ctx)
	if err != nil {
		return fmt.Errorf("%w: run 'broilr login' first", err)
	}

	conv, err := rt.NewConversation(ctx, username)
	if err != nil {
		return err
	}

	rich := !opts.JSON && !opts.Plain && isTerminal(opts.Stdout)
	if rich && !opts.Quiet {
		tui.PrintBanner(opts.Stdout)
	}

	var handler runner.IOHandler
	if opts.JSON {
		jh := runner.NewJSONHandler(opts.Stdin, opts.Stdout)
		jh.MaxInputSize = rt.Config.Input.MaxSize
		handler = jh
	} else {
		textOpts := []runner.TextHandlerOption{runner.WithMaxInputSize(rt.Config.Input.MaxSize)}
		if rich {
			if render, err := tui.NewRenderer(tui.Width(os.Stdout, 80)); err == nil {
				textOpts = append(textOpts, runner.WithTextHandlerRenderer(render))
			} else {
				rt.Logger.Warn("markdown renderer unavailable", "err", err)
			}
		}
		handler = runner.NewTextHandler(opts.Stdin, opts.Stdout, textOpts...)
	}

	if opts.Voice {
		// The terminal has no recognizer; voice is served over the websocket channel.
		if err := handler.SystemOutput(ctx, speech.ErrUnsupported.Error()+"; continuing with typed input"); err != nil {
			return err
		}
	}

	sigCtx := NewSignalContext(ctx)
	defer sigCtx.Cancel()

	r := runner.NewRunner(
		runner.WithInputHandler(handler),
		runner.WithLogger(rt.Logger),
	)
	runErr := r.Run(sigCtx, conv)
	if sigCtx.Err() != nil && runErr == nil {
		runErr = sigCtx.Err()
	}

	logCompletion(opts.Stdout, conv.Stage(), runErr, opts.JSON || opts.Quiet, sigCtx.Signal())
	return handleExecutionError(runErr)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && tui.IsTerminal(f)
}
