package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/aretw0/broilr/pkg/domain"
)

// SignalContext is cancelled by SIGINT or SIGTERM and remembers which signal
// did it, unlike signal.NotifyContext.
type SignalContext struct {
	context.Context
	Cancel context.CancelFunc

	mu     sync.Mutex
	caught os.Signal
}

// NewSignalContext derives a SignalContext from parent.
func NewSignalContext(parent context.Context) *SignalContext {
	ctx, cancel := context.WithCancel(parent)
	sc := &SignalContext{Context: ctx, Cancel: cancel}

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	go func() {
		defer signal.Stop(signals)
		select {
		case sig := <-signals:
			sc.mu.Lock()
			sc.caught = sig
			sc.mu.Unlock()
			cancel()
		case <-ctx.Done():
		}
	}()
	return sc
}

// Signal returns the signal that cancelled the context, or nil.
func (sc *SignalContext) Signal() os.Signal {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.caught
}

// printSystemMessage prints a standardized system message.
func printSystemMessage(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, ">>> %s\n", fmt.Sprintf(format, args...))
}

func isInterrupted(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, io.EOF)
}

// Process exit codes.
const (
	ExitOK          = 0
	ExitFailure     = 1
	ExitNotLoggedIn = 3
	ExitBackend     = 4
)

// handleExecutionError turns interruptions into a clean exit.
func handleExecutionError(err error) error {
	if err == nil || isInterrupted(err) {
		return nil
	}
	return err
}

// ExitCodeFor returns the process exit code for an error returned by a command.
func ExitCodeFor(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, domain.ErrNotLoggedIn), errors.Is(err, domain.ErrInvalidCredentials):
		return ExitNotLoggedIn
	case errors.Is(err, domain.ErrBackend):
		return ExitBackend
	}
	return ExitFailure
}

func logCompletion(w io.Writer, stage domain.Stage, err error, quiet bool, sig os.Signal) {
	if quiet {
		return
	}
	switch {
	case err == nil && sig == nil:
		printSystemMessage(w, "Finished at '%s'.", stage)
	case sig == os.Interrupt:
		fmt.Fprintf(w, "[CTRL+C]\n")
		printSystemMessage(w, "Interrupted at '%s'.", stage)
	case sig != nil:
		fmt.Fprintln(w)
		printSystemMessage(w, "Terminated at '%s'.", stage)
	case isInterrupted(err):
		fmt.Fprintln(w)
		printSystemMessage(w, "Interrupted at '%s'.", stage)
	}
}
