package domain

// Role identifies the author of a transcript entry.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one chat bubble.
type Message struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// Transcript is the append-only conversation log.
type Transcript []Message

// Assistant builds assistant messages from reply texts.
func Assistant(texts ...string) []Message {
	msgs := make([]Message, 0, len(texts))
	for _, t := range texts {
		msgs = append(msgs, Message{Role: RoleAssistant, Text: t})
	}
	return msgs
}

// Last returns the most recent message, if any.
func (t Transcript) Last() (Message, bool) {
	if len(t) == 0 {
		return Message{}, false
	}
	return t[len(t)-1], true
}

// ChatTurn is one entry of the step Q&A history exchanged with the backend.
type ChatTurn struct {
	Role  string   `json:"role"`
	Parts []string `json:"parts"`
}
