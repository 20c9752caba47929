package tui

import (
	"github.com/charmbracelet/glamour"
)

// NewRenderer returns a function that renders assistant messages as markdown
// with glamour. Messages are mostly numbered lists and short lines, so the
// word wrap follows the given width (0 keeps glamour's default).
func NewRenderer(width int) (func(string) (string, error), error) {
	opts := []glamour.TermRendererOption{
		glamour.WithAutoStyle(),
		glamour.WithEmoji(),
	}
	if width > 0 {
		opts = append(opts, glamour.WithWordWrap(width))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return nil, err
	}
	return r.Render, nil
}
