package tui

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf)
	assert.Contains(t, buf.String(), `|____/|_|  \___/|_|_|_|`)
}

func TestNewRenderer(t *testing.T) {
	render, err := NewRenderer(60)
	require.NoError(t, err)

	out, err := render("1. Tomato Soup\n2. Banana Bread")
	require.NoError(t, err)
	assert.Contains(t, out, "Tomato Soup")
	assert.Contains(t, out, "Banana Bread")
}
