package game

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jwebster45206/adventure-relay/internal/services"
	"github.com/jwebster45206/adventure-relay/pkg/dice"
	"github.com/jwebster45206/adventure-relay/pkg/prompts"
)

// Narrator brokers player actions to the narration provider and folds
// the replies into room narrative state. Calls targeting the same room
// serialize behind the room's narration lock; distinct rooms never
// contend.
type Narrator struct {
	llm      services.LLMService
	registry *Registry
	logger   *slog.Logger
	timeout  time.Duration
	now      func() time.Time
}

// NewNarrator creates a narration gateway over the given provider and
// registry.
func NewNarrator(llm services.LLMService, registry *Registry, logger *slog.Logger) *Narrator {
	return &Narrator{
		llm:      llm,
		registry: registry,
		logger:   logger,
		timeout:  services.RequestTimeout,
		now:      time.Now,
	}
}

// Narrate resolves a player action into DM narration and appends it to
// the room's narrative state. On provider failure nothing is appended
// and the error is returned for the caller to surface as a degraded DM
// message; there are no retries.
func (n *Narrator) Narrate(ctx context.Context, roomID, action, playerContext string) (string, error) {
	roomID = NormalizeRoomID(roomID)

	release, err := n.registry.AcquireNarration(ctx, roomID)
	if err != nil {
		return "", fmt.Errorf("failed to acquire narration lock: %w", err)
	}
	defer release()

	n.registry.GetOrCreate(roomID)
	state := n.registry.ReadNarrative(roomID, prompts.NarrativeContextChars)

	messages, err := prompts.New().
		WithNarrative(state).
		WithPlayerContext(playerContext).
		WithAction(action).
		Build()
	if err != nil {
		return "", fmt.Errorf("failed to build prompt: %w", err)
	}

	callCtx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	start := n.now()
	resp, err := n.llm.Chat(callCtx, messages)
	if err != nil {
		n.logger.Warn("Narration call failed",
			"room", roomID,
			"elapsed", time.Since(start),
			"error", err)
		return "", fmt.Errorf("narration failed: %w", err)
	}

	text := strings.TrimSpace(resp.Message)
	if WantsRollAnnotation(text) {
		text += fmt.Sprintf(" (DM rolls: %d on d20)", dice.D20())
	}

	n.registry.AppendNarrative(roomID, fmt.Sprintf("%s: %s", n.now().Format("15:04"), text))

	n.logger.Debug("Narration appended",
		"room", roomID,
		"chars", len(text),
		"elapsed", time.Since(start))

	return text, nil
}
