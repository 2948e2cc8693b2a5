package chat

import "fmt"

const (
	ChatRoleUser   = "user"
	ChatRoleAgent  = "assistant" // DM reply
	ChatRoleSystem = "system"    // DM persona / system instructions
)

// ChatMessage represents a single message in an LLM conversation.
// The shape follows the chat-completions API convention.
type ChatMessage struct {
	Role    string `json:"role"` // "user", "assistant", "system"
	Content string `json:"content"`
}

// ChatResponse is the generated reply returned by an LLM provider.
type ChatResponse struct {
	Message string `json:"message,omitempty"`
}

// FormatSpeaker prefixes a chat line with its speaker name, unless the
// line already carries a speaker prefix.
func FormatSpeaker(message, speaker string) string {
	if hasSpeakerPrefix(message) {
		return message
	}
	return fmt.Sprintf("%s: %s", speaker, message)
}

// hasSpeakerPrefix reports whether the message starts with a "Name:"
// prefix. A colon only counts as a speaker prefix when it appears
// before any sentence punctuation, within the first few words.
func hasSpeakerPrefix(message string) bool {
	const window = 24
	limit := len(message)
	if limit > window {
		limit = window
	}
	for i := 0; i < limit; i++ {
		switch message[i] {
		case ':':
			return i > 0
		case '.', '!', '?':
			return false
		}
	}
	return false
}
