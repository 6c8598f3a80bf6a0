package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/daylog/internal/core/domain"
	"github.com/custodia-labs/daylog/internal/core/ports/driven"
)

func TestNewLLMService_Defaults(t *testing.T) {
	svc := NewLLMService(LLMConfig{})
	assert.Equal(t, DefaultLLMModel, svc.ModelName())
	assert.Equal(t, DefaultBaseURL, svc.baseURL)
	assert.Equal(t, DefaultLLMTimeout, svc.client.Timeout)
}

func TestLLMService_Complete_JSONFormat(t *testing.T) {
	var got chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"message":{"role":"assistant","content":"{\"a\":1}"},"done":true,"done_reason":"stop","prompt_eval_count":30,"eval_count":7}`))
	}))
	defer server.Close()

	svc := NewLLMService(LLMConfig{BaseURL: server.URL, Model: "llama-test"})
	reply, err := svc.Complete(context.Background(), driven.Completion{
		System:      "coach",
		Prompt:      "hi",
		JSON:        true,
		Temperature: 0.1,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, reply.Text)
	assert.Equal(t, 30, reply.PromptTokens)
	assert.Equal(t, 7, reply.CompletionTokens)
	assert.False(t, reply.Truncated)

	assert.Equal(t, "json", got.Format)
	assert.False(t, got.Stream)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	require.NotNil(t, got.Options)
	assert.InDelta(t, 0.1, got.Options.Temperature, 1e-9)
}

func TestLLMService_Complete_PlainTruncated(t *testing.T) {
	var got chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"message":{"role":"assistant","content":"cut"},"done":true,"done_reason":"length"}`))
	}))
	defer server.Close()

	svc := NewLLMService(LLMConfig{BaseURL: server.URL})
	reply, err := svc.Complete(context.Background(), driven.Completion{Prompt: "prompt"})
	require.NoError(t, err)
	assert.True(t, reply.Truncated)
	assert.Empty(t, got.Format)
	assert.Nil(t, got.Options)
	require.Len(t, got.Messages, 1)
}

func TestLLMService_ModelNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"model \"nope\" not found, try pulling it first"}`))
	}))
	defer server.Close()

	svc := NewLLMService(LLMConfig{BaseURL: server.URL, Model: "nope"})
	_, err := svc.Complete(context.Background(), driven.Completion{Prompt: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "try pulling it first")
	assert.Error(t, svc.Ping(context.Background()))
}

func TestLLMService_Ping(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tags", r.URL.Path)
		_, _ = w.Write([]byte(`{"models":[{"name":"llama3.2:latest"},{"name":"qwen2.5:7b"}]}`))
	}))
	defer server.Close()

	assert.NoError(t, NewLLMService(LLMConfig{BaseURL: server.URL}).Ping(context.Background()))
	assert.NoError(t, NewLLMService(LLMConfig{BaseURL: server.URL, Model: "qwen2.5:7b"}).Ping(context.Background()))

	err := NewLLMService(LLMConfig{BaseURL: server.URL, Model: "mistral"}).Ping(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ollama pull mistral")
}

func TestLLMService_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	svc := NewLLMService(LLMConfig{BaseURL: url})
	_, err := svc.Complete(context.Background(), driven.Completion{Prompt: "x"})
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
	assert.ErrorIs(t, svc.Ping(context.Background()), domain.ErrLLMUnavailable)
}
