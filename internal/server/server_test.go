package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kisanvaani/kisan-agent-service/internal/advisor"
	"github.com/kisanvaani/kisan-agent-service/internal/client"
	"github.com/kisanvaani/kisan-agent-service/internal/config"
	"github.com/kisanvaani/kisan-agent-service/internal/dialog"
	"github.com/kisanvaani/kisan-agent-service/internal/session"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := &config.Config{
		Env:                  "test",
		HTTPPort:             "8000",
		PublicBaseURL:        "https://example.test",
		SpeechTimeout:        "auto",
		ContextMergeStrategy: config.MergeStrategyReplace,
	}
	log := zerolog.Nop()

	ctrl := dialog.NewController(
		cfg,
		session.NewMemoryStore(),
		advisor.NewRuleGenerator(),
		dialog.NewTextProvider(nil, log),
		nil,
		nil,
		log,
	)

	return New(cfg, ctrl, Collaborators{
		LLM:       client.NewLlmClient("", 512, 0.7, log),
		STT:       client.NewSttClient("http://stt.test", log),
		TTS:       client.NewTtsClient("http://tts.test", log),
		Telephony: client.NewTwilioClient("", "", "", log),
	}, log)
}

func postForm(t *testing.T, s *Server, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	return w
}

func getPath(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	return w
}

func TestVoiceWebhook(t *testing.T) {
	s := newTestServer(t)

	w := postForm(t, s, "/voice", url.Values{
		"CallSid": {"CA123"},
		"From":    {"+919000000001"},
	})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "application/xml")
	assert.Contains(t, w.Body.String(), "नमस्ते!")
	assert.Contains(t, w.Body.String(), "https://example.test/process_context")
}

func TestVoiceWebhookMissingCallSid(t *testing.T) {
	s := newTestServer(t)

	w := postForm(t, s, "/voice", url.Values{"From": {"+919000000001"}})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProcessContextUnknownSession(t *testing.T) {
	s := newTestServer(t)

	w := postForm(t, s, "/process_context", url.Values{
		"CallSid":      {"CA404"},
		"SpeechResult": {"gehun ki kheti"},
	})

	require.Equal(t, http.StatusBadRequest, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Invalid call session", body["detail"])
}

func TestCallLifecycle(t *testing.T) {
	s := newTestServer(t)
	form := func(speech string) url.Values {
		return url.Values{"CallSid": {"CA123"}, "SpeechResult": {speech}}
	}

	w := postForm(t, s, "/voice", url.Values{"CallSid": {"CA123"}, "From": {"+919000000001"}})
	require.Equal(t, http.StatusOK, w.Code)

	w = postForm(t, s, "/process_context", form("Haryana mein gehun ki kheti, paani ki kami hai"))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "https://example.test/process_query")

	w = postForm(t, s, "/process_query", form("dawa kaun si daalun"))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "नीम का तेल")

	w = postForm(t, s, "/process_query", form("बंद कर दो"))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "<Hangup")

	// The session is gone, another turn is a client error.
	w = postForm(t, s, "/process_query", form("ek aur sawal"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTelephonyEventCleansUpSession(t *testing.T) {
	s := newTestServer(t)

	w := postForm(t, s, "/voice", url.Values{"CallSid": {"CA123"}, "From": {"+919000000001"}})
	require.Equal(t, http.StatusOK, w.Code)

	w = postForm(t, s, "/webhook/telephony-events", url.Values{
		"EventType": {"call-completed"},
		"CallSid":   {"CA123"},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])

	w = postForm(t, s, "/process_query", url.Values{
		"CallSid":      {"CA123"},
		"SpeechResult": {"dawa chahiye"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTelephonyEventIgnoresOtherEvents(t *testing.T) {
	s := newTestServer(t)

	w := postForm(t, s, "/webhook/telephony-events", url.Values{
		"EventType": {"call-ringing"},
		"CallSid":   {"CA123"},
	})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	w := getPath(t, s, "/health")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Status   string          `json:"status"`
		Services map[string]bool `json:"services"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body.Status)
	assert.False(t, body.Services["generator_backend"], "LLM URL is unset in this fixture")
	assert.True(t, body.Services["stt_service"])
	assert.True(t, body.Services["tts_service"])
	assert.False(t, body.Services["telephony_client"])
}

func TestStats(t *testing.T) {
	s := newTestServer(t)

	w := postForm(t, s, "/voice", url.Values{"CallSid": {"CA123"}, "From": {"+919000000001"}})
	require.Equal(t, http.StatusOK, w.Code)

	w = getPath(t, s, "/stats")
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]int
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 1, body["active_conversations"])
}
