// Package utterance normalizes user input and matches it against phrase sets.
package utterance

import (
	"strconv"
	"strings"
	"unicode"
)

// Utterance carries the raw user text alongside its normalized form.
// Classification uses Text; anything recorded verbatim (dish, answers, questions) uses Raw.
type Utterance struct {
	Raw  string
	Text string
}

// New builds an Utterance from raw input.
func New(raw string) Utterance {
	raw = strings.TrimSpace(raw)
	return Utterance{Raw: raw, Text: Normalize(raw)}
}

// Empty reports whether nothing usable was said.
func (u Utterance) Empty() bool {
	return u.Text == "" && u.Raw == ""
}

// Normalize lowercases text, strips every rune that is not a word character
// or whitespace, and trims.
func Normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

var numberWords = map[string]int{
	"one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
}

// ParseOrdinal maps "one".."ten" to 1..10, otherwise parses text as a decimal integer.
func ParseOrdinal(text string) (int, bool) {
	cleaned := strings.ToLower(strings.TrimSpace(text))
	if n, ok := numberWords[cleaned]; ok {
		return n, true
	}
	n, err := strconv.Atoi(cleaned)
	if err != nil {
		return 0, false
	}
	return n, true
}
