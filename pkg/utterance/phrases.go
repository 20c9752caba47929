package utterance

import "strings"

// PhraseSet is a fixed list of normalized phrases matched by substring.
type PhraseSet []string

// Match reports whether any phrase occurs in the normalized text.
// Phrases of two letters or fewer must match whole words so that "no" does not
// fire on "know" and "ok" does not fire on "book".
func (p PhraseSet) Match(text string) bool {
	for _, phrase := range p {
		if contains(text, phrase) {
			return true
		}
	}
	return false
}

func contains(text, phrase string) bool {
	if len(phrase) > 2 {
		return strings.Contains(text, phrase)
	}
	for _, w := range strings.Fields(text) {
		if w == phrase {
			return true
		}
	}
	return false
}

// Built-in phrase sets used by the conversation.
var (
	Affirmative = PhraseSet{
		"yes", "yeah", "yep", "sure", "of course", "okay", "ok", "alright",
		"lets go", "let us begin", "im ready", "ready", "go ahead", "start",
		"lets start", "lets begin", "lets do this",
	}
	Negative = PhraseSet{
		"no", "not now", "later", "maybe later", "not yet", "stop", "cancel",
	}
	Next = PhraseSet{
		"next", "go on", "continue", "move ahead", "okay", "done", "lets go",
		"proceed", "go ahead",
	}
	Repeat = PhraseSet{
		"repeat", "say again", "once more", "can you repeat", "again", "please repeat",
	}
	SaveAffirmative = PhraseSet{
		"yes", "start", "go ahead", "okay", "lets begin", "ready",
	}
	Load    = PhraseSet{"load", "saved"}
	Delete  = PhraseSet{"delete"}
	NewDish = PhraseSet{"new", "cook"}
	Back    = PhraseSet{"menu", "back"}
)

// Equals reports whether the whole normalized text is one of the phrases.
func (p PhraseSet) Equals(text string) bool {
	for _, phrase := range p {
		if text == phrase {
			return true
		}
	}
	return false
}
