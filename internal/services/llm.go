package services

import (
	"context"

	"github.com/jwebster45206/adventure-relay/pkg/chat"
)

// LLMService defines the interface for the narration provider.
type LLMService interface {
	// InitModel validates provider configuration on startup.
	InitModel(ctx context.Context, modelName string) error

	// Chat generates a DM response for the given messages.
	Chat(ctx context.Context, messages []chat.ChatMessage) (*chat.ChatResponse, error)
}
