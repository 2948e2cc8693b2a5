package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jwebster45206/adventure-relay/pkg/chat"
)

const (
	openRouterBaseURL = "https://openrouter.ai/api/v1"
	msgNoResponse     = "(no response)"

	// Fixed sampling parameters for DM narration.
	DefaultTemperature = 0.8
	DefaultMaxTokens   = 500

	// RequestTimeout bounds each narration call. It also bounds the
	// worst-case hold time of a room's narration lock.
	RequestTimeout = 15 * time.Second
)

// OpenRouterService implements LLMService against the OpenRouter
// chat-completions API.
type OpenRouterService struct {
	apiKey     string
	modelName  string
	referer    string // optional HTTP-Referer for OpenRouter tracking
	httpClient *http.Client
	baseURL    string
}

// OpenRouterChatRequest represents the request structure for OpenRouter
// chat completions.
type OpenRouterChatRequest struct {
	Model       string             `json:"model"`
	Messages    []chat.ChatMessage `json:"messages"`
	Temperature float64            `json:"temperature,omitempty"`
	MaxTokens   int                `json:"max_tokens,omitempty"`
	Stream      bool               `json:"stream"`
}

// OpenRouterChatChoice represents a single choice in the response.
type OpenRouterChatChoice struct {
	Index   int `json:"index"`
	Message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"message"`
	FinishReason string `json:"finish_reason"`
}

// OpenRouterChatResponse represents the response structure for
// OpenRouter chat completions.
type OpenRouterChatResponse struct {
	ID      string                 `json:"id"`
	Model   string                 `json:"model"`
	Choices []OpenRouterChatChoice `json:"choices"`
	Error   *struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error,omitempty"`
}

// NewOpenRouterService creates a new OpenRouter service.
func NewOpenRouterService(apiKey, modelName, referer string) *OpenRouterService {
	return &OpenRouterService{
		apiKey:    apiKey,
		modelName: modelName,
		referer:   referer,
		httpClient: &http.Client{
			Timeout: RequestTimeout,
		},
		baseURL: openRouterBaseURL,
	}
}

// InitModel validates configuration. OpenRouter requires no explicit
// model initialization; an empty modelName checks the configured model.
func (o *OpenRouterService) InitModel(ctx context.Context, modelName string) error {
	if o.apiKey == "" {
		return fmt.Errorf("openrouter api key is required")
	}
	if modelName == "" {
		modelName = o.modelName
	}
	if modelName == "" {
		return fmt.Errorf("model name is required")
	}
	return nil
}

// Chat generates a DM response using OpenRouter.
func (o *OpenRouterService) Chat(ctx context.Context, messages []chat.ChatMessage) (*chat.ChatResponse, error) {
	orReq := OpenRouterChatRequest{
		Model:       o.modelName,
		Messages:    messages,
		Temperature: DefaultTemperature,
		MaxTokens:   DefaultMaxTokens,
		Stream:      false,
	}

	reqBody, err := json.Marshal(orReq)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/chat/completions", bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+o.apiKey)
	req.Header.Set("Content-Type", "application/json")
	if o.referer != "" {
		req.Header.Set("HTTP-Referer", o.referer)
		req.Header.Set("X-Title", "Adventure Relay")
	}

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var orResp OpenRouterChatResponse
	if err := json.Unmarshal(body, &orResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if orResp.Error != nil {
		return nil, fmt.Errorf("API error: %s", orResp.Error.Message)
	}

	if len(orResp.Choices) == 0 {
		return &chat.ChatResponse{Message: msgNoResponse}, nil
	}

	// Prefer the assistant message when several choices come back.
	choice := orResp.Choices[0]
	for _, c := range orResp.Choices {
		if c.Message.Role == chat.ChatRoleAgent {
			choice = c
			break
		}
	}

	return &chat.ChatResponse{
		Message: choice.Message.Content,
	}, nil
}
