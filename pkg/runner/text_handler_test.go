package runner

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/broilr/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextHandler_Output(t *testing.T) {
	out := &bytes.Buffer{}
	handler := NewTextHandler(strings.NewReader(""), out, WithTextHandlerRenderer(func(s string) (string, error) {
		return "Rendered: " + s, nil
	}))

	msgs := []domain.Message{
		{Role: domain.RoleUser, Text: "pasta"},
		{Role: domain.RoleAssistant, Text: "How many servings?"},
	}
	require.NoError(t, handler.Output(context.Background(), msgs, domain.StageFollowups))

	assert.Equal(t, "Rendered: How many servings?\n", out.String())
}

func TestTextHandler_Input(t *testing.T) {
	out := &bytes.Buffer{}
	handler := NewTextHandler(strings.NewReader("  next step  \n"), out)

	val, err := handler.Input(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "next step", val)
	assert.Equal(t, "> ", out.String())

	_, err = handler.Input(context.Background())
	assert.ErrorIs(t, err, io.EOF)
}

func TestTextHandler_InputRetriesOversized(t *testing.T) {
	out := &bytes.Buffer{}
	handler := NewTextHandler(strings.NewReader("this is far too long\nok\n"), out,
		WithMaxInputSize(5),
		WithTextHandlerPrompt("? "),
	)

	val, err := handler.Input(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", val)
	assert.Contains(t, out.String(), "Please try again.")
	assert.True(t, strings.HasPrefix(out.String(), "? "))
}

func TestTextHandler_InputCancelled(t *testing.T) {
	r, w := io.Pipe()
	defer w.Close()
	handler := NewTextHandler(r, &bytes.Buffer{})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := handler.Input(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestTextHandler_SystemOutput(t *testing.T) {
	out := &bytes.Buffer{}
	handler := NewTextHandler(strings.NewReader(""), out)
	require.NoError(t, handler.SystemOutput(context.Background(), "Interrupted."))
	assert.Equal(t, "\n[System] Interrupted.\n", out.String())
}
