package ai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatCompletion_ParsesUsageAndCost(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer gsk_key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"model": "llama-3.3-70b-versatile",
			"choices": [{"message": {"content": "hello there"}}],
			"usage": {"prompt_tokens": 12, "completion_tokens": 34},
			"x_groq": {"usage": {"total_cost": 0.0042}}
		}`))
	}))
	defer srv.Close()

	client := NewGroqClientWithBaseURL(srv.URL)
	completion, err := client.ChatCompletion(context.Background(), "gsk_key", DefaultModel, []Message{
		{Role: "user", Content: "hi"},
	})
	require.NoError(t, err)

	assert.Equal(t, "hello there", completion.Content)
	assert.Equal(t, 12, completion.PromptTokens)
	assert.Equal(t, 34, completion.CompletionTokens)
	require.NotNil(t, completion.CostDollars)
	assert.InDelta(t, 0.0042, *completion.CostDollars, 1e-9)
}

func TestChatCompletion_PrefersTopLevelCost(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"choices": [{"message": {"content": "ok"}}],
			"usage": {"prompt_tokens": 1, "completion_tokens": 1, "cost": 0.01},
			"x_groq": {"usage": {"total_cost": 0.99}}
		}`))
	}))
	defer srv.Close()

	client := NewGroqClientWithBaseURL(srv.URL)
	completion, err := client.ChatCompletion(context.Background(), "k", DefaultModel, nil)
	require.NoError(t, err)
	require.NotNil(t, completion.CostDollars)
	assert.InDelta(t, 0.01, *completion.CostDollars, 1e-9)
}

func TestChatCompletion_MissingCostIsNil(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"choices": [{"message": {"content": "ok"}}],
			"usage": {"prompt_tokens": 5, "completion_tokens": 7}
		}`))
	}))
	defer srv.Close()

	client := NewGroqClientWithBaseURL(srv.URL)
	completion, err := client.ChatCompletion(context.Background(), "k", DefaultModel, nil)
	require.NoError(t, err)
	assert.Nil(t, completion.CostDollars)
}

func TestChatCompletion_UnauthorizedMapsToErrInvalidKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error": {"message": "Invalid API Key"}}`))
	}))
	defer srv.Close()

	client := NewGroqClientWithBaseURL(srv.URL)
	_, err := client.ChatCompletion(context.Background(), "bad", DefaultModel, nil)
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestModelAllowed(t *testing.T) {
	assert.True(t, ModelAllowed(DefaultModel))
	assert.True(t, ModelAllowed("llama-3.1-8b-instant"))
	assert.False(t, ModelAllowed("gpt-4o"))
	assert.False(t, ModelAllowed(""))
}
