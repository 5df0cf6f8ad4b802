package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"go.uber.org/zap"

	"github.com/edgardesk/edgardesk/internal/domain"
	"github.com/edgardesk/edgardesk/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.RegisterDomainMetrics()
	os.Exit(m.Run())
}

// chatResponse mirrors the OpenAI-compatible chat completion response.
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

func newChatServer(t *testing.T, content string, prompt, completion int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("unexpected auth header: %s", r.Header.Get("Authorization"))
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
		resp.Usage.PromptTokens = prompt
		resp.Usage.CompletionTokens = completion
		resp.Usage.TotalTokens = prompt + completion

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestAnalyzer(baseURL string) *Analyzer {
	return NewAnalyzer(&Config{
		APIKey:   "test-key",
		BaseURL:  baseURL,
		Model:    "test-model",
		Provider: "test",
		Logger:   zap.NewNop(),
	})
}

func TestComplete_HappyPath(t *testing.T) {
	srv := newChatServer(t, "Revenue grew 6% year over year.", 1200, 80)
	a := newTestAnalyzer(srv.URL)

	result, err := a.Complete(context.Background(), "You are a financial analyst.", "Item 7. MD&A ...")
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if result.Text != "Revenue grew 6% year over year." {
		t.Errorf("unexpected text: %s", result.Text)
	}
	if result.PromptTokens != 1200 || result.CompletionTokens != 80 || result.TotalTokens != 1280 {
		t.Errorf("unexpected usage: %+v", result)
	}
}

func TestComplete_EmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(chatResponse{ID: "chatcmpl-2", Object: "chat.completion"})
	}))
	defer srv.Close()

	a := newTestAnalyzer(srv.URL)

	_, err := a.Complete(context.Background(), "system", "user")
	if !errors.Is(err, domain.ErrAnalysisProviderError) {
		t.Fatalf("expected ErrAnalysisProviderError, got: %v", err)
	}
}

func TestComplete_RateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{
				"message": "rate limit exceeded",
				"type":    "rate_limit_error",
			},
		})
	}))
	defer srv.Close()

	a := newTestAnalyzer(srv.URL)

	_, err := a.Complete(context.Background(), "system", "user")
	if !errors.Is(err, domain.ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got: %v", err)
	}
}

func TestComplete_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"detail":"model overloaded"}`))
	}))
	defer srv.Close()

	a := newTestAnalyzer(srv.URL)

	_, err := a.Complete(context.Background(), "system", "user")
	if !errors.Is(err, domain.ErrAnalysisProviderError) {
		t.Fatalf("expected ErrAnalysisProviderError, got: %v", err)
	}
}
