// Package prompts constructs the chat messages sent to the narration
// provider for each player action.
package prompts

import (
	"fmt"
	"strings"

	"github.com/jwebster45206/adventure-relay/pkg/chat"
)

// NarrativeContextChars bounds how much trailing narrative state is
// embedded in each prompt.
const NarrativeContextChars = 1000

// Builder constructs chat messages for DM narration using a fluent
// interface. It separates prompt building from room state management.
type Builder struct {
	narrative     string
	playerContext string
	action        string
	contextChars  int
}

// New creates a prompt builder with default settings.
func New() *Builder {
	return &Builder{
		contextChars: NarrativeContextChars,
	}
}

// WithNarrative sets the room's narrative state. Only the trailing
// contextChars characters are embedded.
func (b *Builder) WithNarrative(narrative string) *Builder {
	b.narrative = narrative
	return b
}

// WithPlayerContext sets the acting player's context line.
func (b *Builder) WithPlayerContext(playerContext string) *Builder {
	b.playerContext = playerContext
	return b
}

// WithAction sets the raw player action text.
func (b *Builder) WithAction(action string) *Builder {
	b.action = action
	return b
}

// WithContextChars overrides the narrative context window size.
func (b *Builder) WithContextChars(n int) *Builder {
	b.contextChars = n
	return b
}

// Build returns the final message array for LLM consumption.
func (b *Builder) Build() ([]chat.ChatMessage, error) {
	if b.action == "" {
		return nil, fmt.Errorf("action is required")
	}

	narrative := b.narrative
	if b.contextChars > 0 && len(narrative) > b.contextChars {
		// Trim in characters, not bytes, so the window never opens
		// mid-rune.
		if runes := []rune(narrative); len(runes) > b.contextChars {
			narrative = string(runes[len(runes)-b.contextChars:])
		}
	}

	sb := strings.Builder{}
	fmt.Fprintf(&sb, "Current story state: %s\n", narrative)
	fmt.Fprintf(&sb, "Context: %s\n", b.playerContext)
	fmt.Fprintf(&sb, "Player action: %s\n", b.action)
	sb.WriteString(userInstruction)

	return []chat.ChatMessage{
		{Role: chat.ChatRoleSystem, Content: SystemPrompt},
		{Role: chat.ChatRoleUser, Content: sb.String()},
	}, nil
}
