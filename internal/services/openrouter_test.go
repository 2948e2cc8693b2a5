package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jwebster45206/adventure-relay/pkg/chat"
)

func TestNewOpenRouterService(t *testing.T) {
	service := NewOpenRouterService("test-api-key", "test-model", "http://localhost:3000")

	if service.apiKey != "test-api-key" {
		t.Errorf("Expected apiKey test-api-key, got %s", service.apiKey)
	}
	if service.modelName != "test-model" {
		t.Errorf("Expected modelName test-model, got %s", service.modelName)
	}
	if service.httpClient == nil {
		t.Error("Expected httpClient to be initialized")
	}
}

func TestOpenRouterService_InitModel(t *testing.T) {
	service := NewOpenRouterService("key", "model", "")
	if err := service.InitModel(context.Background(), "model"); err != nil {
		t.Errorf("InitModel failed: %v", err)
	}

	service = NewOpenRouterService("", "model", "")
	if err := service.InitModel(context.Background(), "model"); err == nil {
		t.Error("InitModel expected error with empty api key")
	}
}

func TestOpenRouterService_Chat(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization header = %q, want bearer token", got)
		}

		var req OpenRouterChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if req.Model != "test-model" {
			t.Errorf("model = %q, want test-model", req.Model)
		}
		if req.Temperature != DefaultTemperature {
			t.Errorf("temperature = %v, want %v", req.Temperature, DefaultTemperature)
		}
		if req.MaxTokens != DefaultMaxTokens {
			t.Errorf("max_tokens = %d, want %d", req.MaxTokens, DefaultMaxTokens)
		}

		resp := OpenRouterChatResponse{}
		resp.Choices = []OpenRouterChatChoice{{}}
		resp.Choices[0].Message.Role = chat.ChatRoleAgent
		resp.Choices[0].Message.Content = "The goblin snarls and lunges."
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			t.Fatalf("failed to encode response: %v", err)
		}
	}))
	defer server.Close()

	service := NewOpenRouterService("test-key", "test-model", "")
	service.baseURL = server.URL

	resp, err := service.Chat(context.Background(), []chat.ChatMessage{
		{Role: chat.ChatRoleUser, Content: "I attack the goblin"},
	})
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if resp.Message != "The goblin snarls and lunges." {
		t.Errorf("Message = %q", resp.Message)
	}
}

func TestOpenRouterService_Chat_PrefersAssistantChoice(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := OpenRouterChatResponse{}
		resp.Choices = make([]OpenRouterChatChoice, 2)
		resp.Choices[0].Message.Role = chat.ChatRoleSystem
		resp.Choices[0].Message.Content = "moderation notice"
		resp.Choices[1].Message.Role = chat.ChatRoleAgent
		resp.Choices[1].Message.Content = "The door creaks open."
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			t.Fatalf("failed to encode response: %v", err)
		}
	}))
	defer server.Close()

	service := NewOpenRouterService("test-key", "test-model", "")
	service.baseURL = server.URL

	resp, err := service.Chat(context.Background(), []chat.ChatMessage{
		{Role: chat.ChatRoleUser, Content: "I open the door"},
	})
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if resp.Message != "The door creaks open." {
		t.Errorf("Message = %q, want the assistant choice", resp.Message)
	}
}

func TestOpenRouterService_Chat_NonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limited"}}`))
	}))
	defer server.Close()

	service := NewOpenRouterService("test-key", "test-model", "")
	service.baseURL = server.URL

	_, err := service.Chat(context.Background(), []chat.ChatMessage{
		{Role: chat.ChatRoleUser, Content: "hello"},
	})
	if err == nil {
		t.Fatal("Chat expected error on 429 status")
	}
}

func TestOpenRouterService_Chat_Timeout(t *testing.T) {
	block := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer server.Close()
	defer close(block)

	service := NewOpenRouterService("test-key", "test-model", "")
	service.baseURL = server.URL

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := service.Chat(ctx, []chat.ChatMessage{
		{Role: chat.ChatRoleUser, Content: "hello"},
	})
	if err == nil {
		t.Fatal("Chat expected error on timeout")
	}
}

func TestOpenRouterService_Chat_EmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"gen-1","choices":[]}`))
	}))
	defer server.Close()

	service := NewOpenRouterService("test-key", "test-model", "")
	service.baseURL = server.URL

	resp, err := service.Chat(context.Background(), []chat.ChatMessage{
		{Role: chat.ChatRoleUser, Content: "hello"},
	})
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if resp.Message != msgNoResponse {
		t.Errorf("Message = %q, want %q", resp.Message, msgNoResponse)
	}
}
