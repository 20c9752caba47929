package tui

import (
	"fmt"
	"io"
	"os"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

var bannerLines = []struct {
	text  string
	color string
}{
	{`  ____            _ _      `, "#fde68a"},
	{` | __ ) _ __ ___ (_) |_ __ `, "#fcd34d"},
	{` |  _ \| '__/ _ \| | | '__|`, "#fbbf24"},
	{` | |_) | | | (_) | | | |   `, "#f59e0b"},
	{` |____/|_|  \___/|_|_|_|   `, "#ea580c"},
}

// PrintBanner writes the Broilr banner in warm kitchen colours.
func PrintBanner(w io.Writer) {
	p := termenv.NewOutput(w).ColorProfile()
	fmt.Fprintln(w)
	for _, l := range bannerLines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}

// IsTerminal reports whether f is attached to an interactive terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// Width returns the terminal width of f, or fallback when unknown.
func Width(f *os.File, fallback int) int {
	if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 {
		return w
	}
	return fallback
}
