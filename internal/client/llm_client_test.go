package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLlmClientGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/generate", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req LlmGenerateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 512, req.MaxTokens)
		assert.InDelta(t, 0.7, req.Temperature, 0.001)

		json.NewEncoder(w).Encode(LlmGenerateResponse{Text: req.Prompt + ` "Use neem oil."` + "\n"})
	}))
	defer srv.Close()

	c := NewLlmClient(srv.URL, 512, 0.7, zerolog.Nop())

	text, err := c.Generate(context.Background(), "advise the farmer")
	require.NoError(t, err)
	assert.Equal(t, "Use neem oil.", text, "echoed prompt and wrapping quotes are stripped")
}

func TestLlmClientGenerateBackendError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewLlmClient(srv.URL, 512, 0.7, zerolog.Nop())

	_, err := c.Generate(context.Background(), "advise the farmer")
	assert.ErrorContains(t, err, "503")
}

func TestLlmClientNotConfigured(t *testing.T) {
	c := NewLlmClient("", 512, 0.7, zerolog.Nop())

	assert.False(t, c.Available())
	_, err := c.Generate(context.Background(), "advise the farmer")
	assert.Error(t, err)
}

func TestLlmClientPrefixesScheme(t *testing.T) {
	assert.Equal(t, "http://llm-service:8080", NewLlmClient("llm-service:8080", 512, 0.7, zerolog.Nop()).baseURL)
	assert.Equal(t, "https://llm.example.com", NewLlmClient("https://llm.example.com", 512, 0.7, zerolog.Nop()).baseURL)
}
