package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const twilioAPIBase = "https://api.twilio.com/2010-04-01"

// TwilioClient places outbound calls through the Twilio REST API. Inbound
// calls never touch this client; they arrive as webhooks.
type TwilioClient struct {
	httpClient *http.Client
	apiBase    string
	accountSID string
	authToken  string
	fromNumber string
	log        zerolog.Logger
}

func NewTwilioClient(accountSID, authToken, fromNumber string, log zerolog.Logger) *TwilioClient {
	return &TwilioClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		apiBase:    twilioAPIBase,
		accountSID: accountSID,
		authToken:  authToken,
		fromNumber: fromNumber,
		log:        log.With().Str("client", "twilio").Logger(),
	}
}

// Available reports whether REST credentials are configured.
func (c *TwilioClient) Available() bool {
	return c.accountSID != "" && c.authToken != ""
}

// PlaceCall dials to from our number and points the call at callbackURL
// (our /voice route). It returns the provider-assigned call SID.
func (c *TwilioClient) PlaceCall(ctx context.Context, to, from, callbackURL string) (string, error) {
	if !c.Available() {
		return "", fmt.Errorf("twilio client not configured")
	}
	if from == "" {
		from = c.fromNumber
	}

	form := url.Values{}
	form.Set("To", to)
	form.Set("From", from)
	form.Set("Url", callbackURL)
	form.Set("Method", "POST")

	endpoint := fmt.Sprintf("%s/Accounts/%s/Calls.json", c.apiBase, c.accountSID)
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create call request: %w", err)
	}
	req.SetBasicAuth(c.accountSID, c.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("call request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		c.log.Error().Int("status_code", resp.StatusCode).Bytes("body", bodyBytes).Msg("Twilio returned an error")
		return "", fmt.Errorf("twilio returned status %d", resp.StatusCode)
	}

	var callResp struct {
		Sid string `json:"sid"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&callResp); err != nil {
		return "", fmt.Errorf("failed to decode call response: %w", err)
	}

	c.log.Info().Str("call_sid", callResp.Sid).Str("to", to).Msg("Outbound call initiated")
	return callResp.Sid, nil
}
