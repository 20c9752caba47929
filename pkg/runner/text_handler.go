package runner

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/broilr/pkg/domain"
)

// DefaultPrompt is printed before each read.
const DefaultPrompt = "> "

// readRetryDelay throttles a reader that keeps failing.
const readRetryDelay = 50 * time.Millisecond

// TextHandler talks to a person on a terminal: assistant messages are
// printed one per line and each line typed is one utterance.
type TextHandler struct {
	Reader       *bufio.Reader
	Writer       io.Writer
	Renderer     ContentRenderer
	Prompt       string
	MaxInputSize int

	lines    chan readLine
	linesOne sync.Once
}

type readLine struct {
	text string
	err  error
}

// TextHandlerOption configures a TextHandler.
type TextHandlerOption func(*TextHandler)

// WithTextHandlerRenderer formats assistant messages before printing, e.g. as markdown.
func WithTextHandlerRenderer(renderer ContentRenderer) TextHandlerOption {
	return func(h *TextHandler) {
		h.Renderer = renderer
	}
}

// WithTextHandlerPrompt replaces the "> " prompt.
func WithTextHandlerPrompt(prompt string) TextHandlerOption {
	return func(h *TextHandler) {
		h.Prompt = prompt
	}
}

// WithMaxInputSize overrides the sanitizer size limit.
func WithMaxInputSize(n int) TextHandlerOption {
	return func(h *TextHandler) {
		h.MaxInputSize = n
	}
}

// NewTextHandler reads from r and writes to w, defaulting to stdin and stdout.
func NewTextHandler(r io.Reader, w io.Writer, opts ...TextHandlerOption) *TextHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	h := &TextHandler{
		Reader: bufio.NewReader(r),
		Writer: w,
		Prompt: DefaultPrompt,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// readLines feeds h.lines from the reader until EOF. A blocked read cannot be
// interrupted, so it runs apart from Input, which selects on the context.
func (h *TextHandler) readLines() {
	defer close(h.lines)
	for {
		text, err := h.Reader.ReadString('\n')
		if text != "" {
			h.lines <- readLine{text: text}
		}
		switch {
		case err == nil:
		case errors.Is(err, io.EOF):
			return
		default:
			h.lines <- readLine{err: err}
			time.Sleep(readRetryDelay)
		}
	}
}

// Output prints the assistant messages of a turn. User echoes are skipped
// since the person just typed them.
func (h *TextHandler) Output(ctx context.Context, msgs []domain.Message, stage domain.Stage) error {
	for _, msg := range msgs {
		if msg.Role != domain.RoleAssistant {
			continue
		}
		if _, err := fmt.Fprintln(h.Writer, h.render(msg.Text)); err != nil {
			return err
		}
	}
	return nil
}

func (h *TextHandler) render(text string) string {
	if h.Renderer == nil {
		return text
	}
	out, err := h.Renderer(text)
	if err != nil {
		return text
	}
	return strings.TrimSpace(out)
}

// Input prompts for one utterance. Lines the sanitizer rejects are reported
// and the prompt repeats.
func (h *TextHandler) Input(ctx context.Context) (string, error) {
	h.linesOne.Do(func() {
		h.lines = make(chan readLine)
		go h.readLines()
	})

	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		fmt.Fprint(h.Writer, h.Prompt)

		var line readLine
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case l, ok := <-h.lines:
			if !ok {
				return "", io.EOF
			}
			line = l
		}
		if line.err != nil {
			return "", line.err
		}

		clean, err := SanitizeInputLimit(strings.TrimSpace(line.text), h.MaxInputSize)
		if err == nil {
			return clean, nil
		}
		fmt.Fprintf(h.Writer, "Error: %v. Please try again.\n", err)
	}
}

// SystemOutput prints an out-of-band notice, set apart from the conversation.
func (h *TextHandler) SystemOutput(ctx context.Context, msg string) error {
	_, err := fmt.Fprintf(h.Writer, "\n[System] %s\n", msg)
	return err
}
