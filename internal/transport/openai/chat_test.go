package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/twinrag/internal/domain"
)

// chatResponse mirrors the OpenAI API chat completion response.
type chatResponse struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Model   string `json:"model"`
	Choices []struct {
		Index   int `json:"index"`
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

func chatServerReturning(t *testing.T, content string, check func(body map[string]any)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if check != nil {
			var body map[string]any
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Fatalf("decode request: %v", err)
			}
			check(body)
		}

		resp := chatResponse{ID: "chatcmpl-1", Object: "chat.completion", Model: "test-model"}
		resp.Choices = append(resp.Choices, struct {
			Index   int `json:"index"`
			Message struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"message"`
			FinishReason string `json:"finish_reason"`
		}{
			Message: struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			}{Role: "assistant", Content: content},
			FinishReason: "stop",
		})
		resp.Usage.PromptTokens = 20
		resp.Usage.CompletionTokens = 15
		resp.Usage.TotalTokens = 35

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
}

func TestChatClient_Complete(t *testing.T) {
	server := chatServerReturning(t, "  I have five years of Go experience.  ", func(body map[string]any) {
		msgs, _ := body["messages"].([]any)
		if len(msgs) != 2 {
			t.Fatalf("expected system+user messages, got %d", len(msgs))
		}
		first, _ := msgs[0].(map[string]any)
		if first["role"] != "system" {
			t.Errorf("first message role: got %v", first["role"])
		}
		if body["temperature"].(float64) != 0.7 {
			t.Errorf("temperature: got %v", body["temperature"])
		}
		if body["max_tokens"].(float64) != 500 {
			t.Errorf("max_tokens: got %v", body["max_tokens"])
		}
	})
	defer server.Close()

	c := NewChatClient(&ChatConfig{
		APIKey:   "test-key",
		BaseURL:  server.URL,
		Model:    "test-model",
		Provider: "test",
		Logger:   zap.NewNop(),
	})

	reply, err := c.Complete(context.Background(), domain.ChatRequest{
		System:      "You are a digital twin.",
		User:        "Tell me about your experience.",
		Temperature: 0.7,
		MaxTokens:   500,
	})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if reply != "I have five years of Go experience." {
		t.Errorf("reply should be trimmed: got %q", reply)
	}
}

func TestChatClient_NoSystemMessage(t *testing.T) {
	server := chatServerReturning(t, "ok", func(body map[string]any) {
		msgs, _ := body["messages"].([]any)
		if len(msgs) != 1 {
			t.Fatalf("expected single user message, got %d", len(msgs))
		}
		only, _ := msgs[0].(map[string]any)
		if only["role"] != "user" {
			t.Errorf("message role: got %v", only["role"])
		}
	})
	defer server.Close()

	c := NewChatClient(&ChatConfig{
		APIKey:   "test-key",
		BaseURL:  server.URL,
		Model:    "test-model",
		Provider: "test",
		Logger:   zap.NewNop(),
	})

	if _, err := c.Complete(context.Background(), domain.ChatRequest{User: "hi"}); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
}

func TestChatClient_EmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(chatResponse{ID: "chatcmpl-1", Object: "chat.completion"})
	}))
	defer server.Close()

	c := NewChatClient(&ChatConfig{
		APIKey:   "test-key",
		BaseURL:  server.URL,
		Model:    "test-model",
		Provider: "test",
		Logger:   zap.NewNop(),
	})

	_, err := c.Complete(context.Background(), domain.ChatRequest{User: "hi"})
	if !errors.Is(err, domain.ErrChatProviderError) {
		t.Fatalf("expected ErrChatProviderError, got %v", err)
	}
}

func TestChatClient_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{
				"message": "model overloaded",
				"type":    "server_error",
			},
		})
	}))
	defer server.Close()

	c := NewChatClient(&ChatConfig{
		APIKey:   "test-key",
		BaseURL:  server.URL,
		Model:    "test-model",
		Provider: "test",
		Logger:   zap.NewNop(),
	})

	_, err := c.Complete(context.Background(), domain.ChatRequest{User: "hi"})
	if !errors.Is(err, domain.ErrChatProviderError) {
		t.Fatalf("expected ErrChatProviderError for 503, got %v", err)
	}
}
