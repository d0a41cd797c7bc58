package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

type LlmGenerateRequest struct {
	Prompt      string  `json:"prompt"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
}

type LlmGenerateResponse struct {
	Text string `json:"text"`
}

// LlmClient talks to the generative text backend. A zero-value base URL
// means the backend is not configured; callers check Available first.
type LlmClient struct {
	httpClient  *http.Client
	baseURL     string
	maxTokens   int
	temperature float64
	log         zerolog.Logger
}

func NewLlmClient(rawBaseURL string, maxTokens int, temperature float64, log zerolog.Logger) *LlmClient {
	finalBaseURL := rawBaseURL
	if rawBaseURL != "" && !strings.HasPrefix(rawBaseURL, "http://") && !strings.HasPrefix(rawBaseURL, "https://") {
		finalBaseURL = "http://" + rawBaseURL
	}

	return &LlmClient{
		httpClient:  &http.Client{},
		baseURL:     finalBaseURL,
		maxTokens:   maxTokens,
		temperature: temperature,
		log:         log.With().Str("client", "llm").Logger(),
	}
}

// Available reports whether a backend URL is configured.
func (c *LlmClient) Available() bool {
	return c.baseURL != ""
}

func (c *LlmClient) Generate(ctx context.Context, prompt string) (string, error) {
	if !c.Available() {
		return "", fmt.Errorf("llm backend not configured")
	}
	url := fmt.Sprintf("%s/generate", c.baseURL)

	payload := LlmGenerateRequest{Prompt: prompt, MaxTokens: c.maxTokens, Temperature: c.temperature}
	payloadBytes, _ := json.Marshal(payload)

	c.log.Debug().Str("url", url).Int("prompt_size", len(prompt)).Msg("Sending request to LLM backend")

	reqCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, "POST", url, bytes.NewBuffer(payloadBytes))
	if err != nil {
		return "", fmt.Errorf("failed to build llm request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error().Err(err).Msg("LLM request failed (likely a timeout)")
		return "", fmt.Errorf("llm request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		c.log.Error().Int("status_code", resp.StatusCode).Bytes("body", bodyBytes).Msg("LLM backend returned an error")
		return "", fmt.Errorf("llm backend returned status %d", resp.StatusCode)
	}

	var llmResp LlmGenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&llmResp); err != nil {
		return "", fmt.Errorf("failed to decode llm response: %w", err)
	}

	// Causal models echo the prompt; keep only the completion.
	text := llmResp.Text
	if strings.HasPrefix(text, prompt) {
		text = text[len(prompt):]
	}
	cleanedText := strings.Trim(text, "\" \n\r")

	c.log.Debug().Int("response_size", len(cleanedText)).Msg("LLM response received")
	return cleanedText, nil
}
