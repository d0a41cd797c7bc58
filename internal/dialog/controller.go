// Package dialog drives the conversation state machine: greeting, context
// gathering, query answering, termination. Each webhook delivery advances
// one turn; the session store carries state between turns.
package dialog

import (
	"context"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/kisanvaani/kisan-agent-service/internal/advisor"
	"github.com/kisanvaani/kisan-agent-service/internal/config"
	"github.com/kisanvaani/kisan-agent-service/internal/ctxlogger"
	"github.com/kisanvaani/kisan-agent-service/internal/farming"
	"github.com/kisanvaani/kisan-agent-service/internal/language"
	"github.com/kisanvaani/kisan-agent-service/internal/queue"
	"github.com/kisanvaani/kisan-agent-service/internal/session"
	"github.com/kisanvaani/kisan-agent-service/internal/twiml"
)

// Callback routes the Gather verbs point at.
const (
	RouteProcessContext = "/process_context"
	RouteProcessQuery   = "/process_query"
)

// Utterances containing any of these tokens end the call. The set is
// language-mixed because callers switch mid-sentence.
var endPhrases = []string{"नहीं", "no", "बंद", "end", "खत्म"}

// IsEndPhrase reports whether the transcript asks to end the call.
func IsEndPhrase(text string) bool {
	lower := strings.ToLower(text)
	for _, p := range endPhrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// EventPublisher emits call lifecycle events. A nil publisher disables
// emission.
type EventPublisher interface {
	PublishJSON(ctx context.Context, routingKey string, body interface{}) error
}

// Controller orchestrates dialogue turns.
type Controller struct {
	cfg            *config.Config
	store          session.Store
	gen            advisor.Generator
	texts          *TextProvider
	publisher      EventPublisher
	activeSessions prometheus.Gauge
	log            zerolog.Logger
}

func NewController(
	cfg *config.Config,
	store session.Store,
	gen advisor.Generator,
	texts *TextProvider,
	pub EventPublisher,
	activeSessions prometheus.Gauge,
	log zerolog.Logger,
) *Controller {
	return &Controller{
		cfg:            cfg,
		store:          store,
		gen:            gen,
		texts:          texts,
		publisher:      pub,
		activeSessions: activeSessions,
		log:            log.With().Str("component", "dialog").Logger(),
	}
}

type callLifecycleEvent struct {
	EventType string    `json:"eventType"`
	CallSID   string    `json:"callSid"`
	From      string    `json:"from,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// StartCall registers a session for an inbound call and renders the
// greeting with a gather pointing at the context route. A repeated call
// SID resets the session rather than erroring; provider retries are
// indistinguishable from new calls.
func (c *Controller) StartCall(ctx context.Context, callSID, from string) (string, error) {
	l := ctxlogger.FromContext(ctx)

	sess := session.New(callSID, from)
	if err := c.store.Create(ctx, sess); err != nil {
		return "", err
	}
	c.refreshSessionGauge(ctx)
	l.Info().Str("from", from).Msg("New call, session created")

	c.publishEvent(ctx, queue.EventCallAnswered, callSID, from)

	lang := sess.Language
	return twiml.Render(twiml.GatherSpeech{
		Spoken:        []string{c.texts.Text(PromptGreeting, lang)},
		Hint:          c.texts.Text(PromptGreetingHint, lang),
		Language:      language.ProfileFor(lang).STTLocale,
		Action:        c.route(RouteProcessContext),
		SpeechTimeout: c.cfg.SpeechTimeout,
	})
}

// ProcessContext extracts the farming context from the caller's first
// utterance, stores it, and asks for the actual question. Returns
// session.ErrNotFound for call SIDs that never hit StartCall.
func (c *Controller) ProcessContext(ctx context.Context, callSID, speech string) (string, error) {
	l := ctxlogger.FromContext(ctx)

	extracted := farming.Extract(speech)
	detected := language.Detect(speech)

	var lang language.Tag
	err := c.store.Update(ctx, callSID, func(s *session.Session) {
		if c.cfg.ContextMergeStrategy == config.MergeStrategyMerge {
			s.Context = s.Context.Merge(extracted)
		} else {
			s.Context = extracted
		}
		s.Language = detected
		lang = s.Language
	})
	if err != nil {
		return "", err
	}
	l.Info().Interface("context", extracted).Str("language", string(detected)).Msg("Farming context extracted")

	return twiml.Render(twiml.GatherSpeech{
		Spoken:        []string{c.texts.Text(PromptAskQuery, lang)},
		Hint:          c.texts.Text(PromptAskQueryHint, lang),
		Language:      language.ProfileFor(lang).STTLocale,
		Action:        c.route(RouteProcessQuery),
		SpeechTimeout: c.cfg.SpeechTimeout,
	})
}

// ProcessQuery answers one question, or ends the call when the caller is
// done. Returns session.ErrNotFound for unknown call SIDs.
func (c *Controller) ProcessQuery(ctx context.Context, callSID, speech string) (string, error) {
	l := ctxlogger.FromContext(ctx)

	sess, err := c.store.Get(ctx, callSID)
	if err != nil {
		return "", err
	}

	if IsEndPhrase(speech) {
		l.Info().Msg("End phrase detected, terminating call")
		if err := c.store.Delete(ctx, callSID); err != nil {
			l.Warn().Err(err).Msg("Failed to delete session on termination")
		}
		c.refreshSessionGauge(ctx)
		// This is the normal end of a call; the provider's call-completed
		// webhook will find no session, so the event pairs up here.
		c.publishEvent(ctx, queue.EventCallCompleted, callSID, "")
		return twiml.Render(twiml.Hangup{
			FinalText: c.texts.Text(PromptGoodbye, sess.Language),
			Language:  language.ProfileFor(sess.Language).STTLocale,
		})
	}

	answer := c.gen.Generate(ctx, sess.Context, speech)
	l.Info().Str("query", speech).Str("answer", answer).Msg("Advisory answer generated")

	lang := sess.Language
	return twiml.Render(twiml.GatherSpeech{
		Spoken: []string{
			answer,
			c.texts.Text(PromptFollowUp, lang),
		},
		Hint:          c.texts.Text(PromptFollowUpHint, lang),
		Language:      language.ProfileFor(lang).STTLocale,
		Action:        c.route(RouteProcessQuery),
		SpeechTimeout: c.cfg.SpeechTimeout,
	})
}

// CompleteCall handles the provider's call-completed notification: drop the
// session if it still exists. Absent sessions are a no-op, the caller may
// have said an end phrase already.
func (c *Controller) CompleteCall(ctx context.Context, callSID string) {
	l := ctxlogger.FromContext(ctx)

	if _, err := c.store.Get(ctx, callSID); err != nil {
		l.Debug().Msg("No session to clean up for completed call")
		return
	}
	if err := c.store.Delete(ctx, callSID); err != nil {
		l.Warn().Err(err).Msg("Failed to delete session for completed call")
		return
	}
	c.refreshSessionGauge(ctx)
	c.publishEvent(ctx, queue.EventCallCompleted, callSID, "")
	l.Info().Msg("Session cleaned up for completed call")
}

// ActiveSessions reports the current session count for /stats.
func (c *Controller) ActiveSessions(ctx context.Context) (int, error) {
	return c.store.Count(ctx)
}

// ApologyDocument is the fixed spoken response for turns that failed in an
// unexpected way. The caller must always hear something.
func (c *Controller) ApologyDocument() string {
	doc, err := twiml.Render(twiml.Speak{Text: c.texts.Text(PromptApology, language.Default)})
	if err != nil {
		// Render over static verbs cannot realistically fail; keep a
		// literal document so even this path speaks.
		return `<?xml version="1.0" encoding="UTF-8"?>` + "\n<Response><Say>Sorry, there was an error.</Say></Response>"
	}
	return doc
}

func (c *Controller) route(path string) string {
	return c.cfg.PublicBaseURL + path
}

func (c *Controller) publishEvent(ctx context.Context, eventType, callSID, from string) {
	if c.publisher == nil {
		return
	}
	err := c.publisher.PublishJSON(ctx, eventType, callLifecycleEvent{
		EventType: eventType,
		CallSID:   callSID,
		From:      from,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		logger := ctxlogger.FromContext(ctx)
		logger.Warn().Err(err).Str("event_type", eventType).Msg("Failed to publish lifecycle event")
	}
}

func (c *Controller) refreshSessionGauge(ctx context.Context) {
	if c.activeSessions == nil {
		return
	}
	if n, err := c.store.Count(ctx); err == nil {
		c.activeSessions.Set(float64(n))
	}
}
