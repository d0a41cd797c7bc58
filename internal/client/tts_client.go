package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

type TtsSynthesizeRequest struct {
	Text  string `json:"text"`
	Voice string `json:"voice"`
}

// TtsClient synthesizes advisory text into audio. The IVR markup path
// normally lets the provider speak the text itself; synthesis is used when
// pre-rendered audio is preferred.
type TtsClient struct {
	httpClient *http.Client
	baseURL    string
	log        zerolog.Logger
}

func NewTtsClient(baseURL string, log zerolog.Logger) *TtsClient {
	return &TtsClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
		log:        log.With().Str("client", "tts").Logger(),
	}
}

func (c *TtsClient) Available() bool {
	return c.baseURL != ""
}

// Synthesize returns the audio bytes for text spoken with the given voice
// id (e.g. "hi-IN-MadhurNeural").
func (c *TtsClient) Synthesize(ctx context.Context, text, voiceID string) ([]byte, error) {
	if !c.Available() {
		return nil, fmt.Errorf("tts backend not configured")
	}

	payload := TtsSynthesizeRequest{Text: text, Voice: voiceID}
	payloadBytes, _ := json.Marshal(payload)

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL, bytes.NewBuffer(payloadBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create tts request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tts request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		c.log.Error().Int("status_code", resp.StatusCode).Bytes("body", bodyBytes).Msg("TTS service returned an error")
		return nil, fmt.Errorf("TTS service returned status %d", resp.StatusCode)
	}

	audioData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read tts audio: %w", err)
	}
	if len(audioData) == 0 {
		return nil, fmt.Errorf("TTS service returned empty audio")
	}

	c.log.Debug().Int("audio_size", len(audioData)).Str("voice", voiceID).Msg("Text synthesized successfully")
	return audioData, nil
}
