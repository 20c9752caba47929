package runner

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/aretw0/broilr/pkg/domain"
)

// Frame is one line of JSONHandler output.
type Frame struct {
	Type     string           `json:"type"`
	Stage    domain.Stage     `json:"stage,omitempty"`
	Messages []domain.Message `json:"messages,omitempty"`
	Text     string           `json:"text,omitempty"`
}

// Frame types.
const (
	FrameReply  = "reply"
	FrameSystem = "system"
)

// Request is the structured form of a JSONHandler input line.
type Request struct {
	Text string `json:"text"`
}

// JSONHandler implements the IOHandler interface for structured JSON-Lines communication.
type JSONHandler struct {
	Reader       *bufio.Reader
	Writer       io.Writer
	Encoder      *json.Encoder
	MaxInputSize int
}

// NewJSONHandler creates a handler for JSON IO.
func NewJSONHandler(r io.Reader, w io.Writer) *JSONHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	return &JSONHandler{
		Reader:  bufio.NewReader(r),
		Writer:  w,
		Encoder: json.NewEncoder(w),
	}
}

func (h *JSONHandler) Output(ctx context.Context, msgs []domain.Message, stage domain.Stage) error {
	if len(msgs) == 0 {
		return nil
	}
	return h.Encoder.Encode(Frame{Type: FrameReply, Stage: stage, Messages: msgs})
}

// Input accepts a JSON string ("hello"), an object ({"text": "hello"}) or
// plain text on each line. Blank lines are skipped.
func (h *JSONHandler) Input(ctx context.Context) (string, error) {
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		line, err := h.Reader.ReadString('\n')
		line = strings.TrimSpace(line)
		if line == "" {
			if err != nil {
				return "", err
			}
			continue
		}
		return SanitizeInputLimit(decodeLine(line), h.MaxInputSize)
	}
}

func decodeLine(line string) string {
	var s string
	if err := json.Unmarshal([]byte(line), &s); err == nil {
		return s
	}
	var req Request
	if strings.HasPrefix(line, "{") {
		if err := json.Unmarshal([]byte(line), &req); err == nil {
			return req.Text
		}
	}
	return line
}

func (h *JSONHandler) SystemOutput(ctx context.Context, msg string) error {
	return h.Encoder.Encode(Frame{Type: FrameSystem, Text: msg})
}
