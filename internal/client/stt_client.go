package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

type SttTranscribeResponse struct {
	Text string `json:"text"`
}

// SttClient uploads call recordings to the speech recognizer. Live turns
// never pass through here: the telephony provider transcribes gathered
// speech itself and posts the result in the webhook form.
type SttClient struct {
	httpClient *http.Client
	baseURL    string
	log        zerolog.Logger
}

func NewSttClient(baseURL string, log zerolog.Logger) *SttClient {
	return &SttClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
		log:        log.With().Str("client", "stt").Logger(),
	}
}

func (c *SttClient) Available() bool {
	return c.baseURL != ""
}

// Transcribe sends WAV audio and the target locale (e.g. "hi-IN") to the
// recognizer and returns the transcript.
func (c *SttClient) Transcribe(ctx context.Context, audioData []byte, languageCode string) (string, error) {
	if !c.Available() {
		return "", fmt.Errorf("stt backend not configured")
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	if err := writer.WriteField("language", languageCode); err != nil {
		return "", fmt.Errorf("failed to write language field: %w", err)
	}
	part, err := writer.CreateFormFile("audio", "recording.wav")
	if err != nil {
		return "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, bytes.NewReader(audioData)); err != nil {
		return "", fmt.Errorf("failed to copy audio data to form: %w", err)
	}
	writer.Close()

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL, &body)
	if err != nil {
		return "", fmt.Errorf("failed to create stt request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("stt request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		c.log.Error().Int("status_code", resp.StatusCode).Bytes("body", bodyBytes).Msg("STT service returned an error")
		return "", fmt.Errorf("STT service returned status %d", resp.StatusCode)
	}

	var sttResp SttTranscribeResponse
	if err := json.NewDecoder(resp.Body).Decode(&sttResp); err != nil {
		return "", fmt.Errorf("failed to decode stt response: %w", err)
	}

	c.log.Info().Str("transcribed_text", sttResp.Text).Msg("Audio transcribed successfully")
	return sttResp.Text, nil
}

// TranscribePCM wraps raw 16-bit mono PCM into a WAV container before
// uploading. Recording downloads from the provider arrive headerless.
func (c *SttClient) TranscribePCM(ctx context.Context, pcm []byte, sampleRate int, languageCode string) (string, error) {
	wavData, err := EncodeWav(pcm, sampleRate)
	if err != nil {
		return "", fmt.Errorf("failed to encode wav: %w", err)
	}
	return c.Transcribe(ctx, wavData, languageCode)
}
