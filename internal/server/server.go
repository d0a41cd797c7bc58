package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/kisanvaani/kisan-agent-service/internal/client"
	"github.com/kisanvaani/kisan-agent-service/internal/config"
	"github.com/kisanvaani/kisan-agent-service/internal/ctxlogger"
	"github.com/kisanvaani/kisan-agent-service/internal/dialog"
	"github.com/kisanvaani/kisan-agent-service/internal/metrics"
	"github.com/kisanvaani/kisan-agent-service/internal/session"
)

const contentTypeXML = "application/xml"

// Collaborators groups the external clients whose availability /health
// reports.
type Collaborators struct {
	LLM       *client.LlmClient
	STT       *client.SttClient
	TTS       *client.TtsClient
	Telephony *client.TwilioClient
}

// Server is the telephony webhook HTTP surface.
type Server struct {
	cfg     *config.Config
	ctrl    *dialog.Controller
	collabs Collaborators
	log     zerolog.Logger
	router  *gin.Engine
	httpSrv *http.Server
}

func New(cfg *config.Config, ctrl *dialog.Controller, collabs Collaborators, log zerolog.Logger) *Server {
	if cfg.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		cfg:     cfg,
		ctrl:    ctrl,
		collabs: collabs,
		log:     log.With().Str("component", "server").Logger(),
	}

	router := gin.New()
	router.Use(s.traceMiddleware())
	router.Use(s.recoveryMiddleware())

	router.POST("/voice", s.handleVoice)
	router.POST(dialog.RouteProcessContext, s.handleProcessContext)
	router.POST(dialog.RouteProcessQuery, s.handleProcessQuery)
	router.POST("/webhook/telephony-events", s.handleTelephonyEvent)
	router.GET("/health", s.handleHealth)
	router.GET("/stats", s.handleStats)

	s.router = router
	return s
}

// Router exposes the handler tree, used by tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	s.httpSrv = &http.Server{
		Addr:    ":" + s.cfg.HTTPPort,
		Handler: s.router,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("port", s.cfg.HTTPPort).Msg("Webhook server listening")
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.httpSrv.Shutdown(shutdownCtx)
	}
}

// traceMiddleware attaches a per-delivery logger carrying a trace id and
// the call SID to the request context.
func (s *Server) traceMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		l := s.log.With().
			Str("trace_id", uuid.New().String()).
			Str("route", c.FullPath()).
			Logger()
		if callSID := c.PostForm("CallSid"); callSID != "" {
			l = l.With().Str("call_sid", callSID).Logger()
		}
		c.Request = c.Request.WithContext(ctxlogger.ToContext(c.Request.Context(), l))
		c.Next()
	}
}

// recoveryMiddleware converts a panicking turn into the apologetic spoken
// response. The call must never be left hanging without audio.
func (s *Server) recoveryMiddleware() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, err interface{}) {
		l := ctxlogger.FromContext(c.Request.Context())
		l.Error().Interface("panic", err).Msg("Turn handler panicked")
		metrics.WebhooksFailed.WithLabelValues(c.FullPath(), "panic").Inc()
		s.respondApology(c)
	})
}

func (s *Server) handleVoice(c *gin.Context) {
	metrics.WebhooksProcessed.WithLabelValues("/voice").Inc()
	callSID := c.PostForm("CallSid")
	from := c.PostForm("From")
	if callSID == "" {
		metrics.WebhooksFailed.WithLabelValues("/voice", "missing_call_sid").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"detail": "CallSid is required"})
		return
	}

	doc, err := s.ctrl.StartCall(c.Request.Context(), callSID, from)
	if err != nil {
		logger := ctxlogger.FromContext(c.Request.Context())
		logger.Error().Err(err).Msg("Failed to start call")
		metrics.WebhooksFailed.WithLabelValues("/voice", "start_failed").Inc()
		s.respondApology(c)
		return
	}
	c.Data(http.StatusOK, contentTypeXML, []byte(doc))
}

func (s *Server) handleProcessContext(c *gin.Context) {
	s.handleTurn(c, dialog.RouteProcessContext, s.ctrl.ProcessContext)
}

func (s *Server) handleProcessQuery(c *gin.Context) {
	s.handleTurn(c, dialog.RouteProcessQuery, s.ctrl.ProcessQuery)
}

func (s *Server) handleTurn(c *gin.Context, route string, turn func(context.Context, string, string) (string, error)) {
	metrics.WebhooksProcessed.WithLabelValues(route).Inc()
	callSID := c.PostForm("CallSid")
	speech := c.PostForm("SpeechResult")

	doc, err := turn(c.Request.Context(), callSID, speech)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) || callSID == "" {
			metrics.WebhooksFailed.WithLabelValues(route, "invalid_session").Inc()
			c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid call session"})
			return
		}
		logger := ctxlogger.FromContext(c.Request.Context())
		logger.Error().Err(err).Msg("Turn failed")
		metrics.WebhooksFailed.WithLabelValues(route, "turn_failed").Inc()
		s.respondApology(c)
		return
	}
	c.Data(http.StatusOK, contentTypeXML, []byte(doc))
}

func (s *Server) handleTelephonyEvent(c *gin.Context) {
	metrics.WebhooksProcessed.WithLabelValues("/webhook/telephony-events").Inc()
	eventType := c.PostForm("EventType")
	callSID := c.PostForm("CallSid")

	l := ctxlogger.FromContext(c.Request.Context())
	l.Info().Str("event_type", eventType).Msg("Telephony event received")

	if eventType == "call-completed" && callSID != "" {
		s.ctrl.CompleteCall(c.Request.Context(), callSID)
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"services": gin.H{
			"generator_backend": s.collabs.LLM.Available(),
			"stt_service":       s.collabs.STT.Available(),
			"tts_service":       s.collabs.TTS.Available(),
			"telephony_client":  s.collabs.Telephony.Available(),
		},
	})
}

func (s *Server) handleStats(c *gin.Context) {
	count, err := s.ctrl.ActiveSessions(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "stats unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"active_conversations": count})
}

func (s *Server) respondApology(c *gin.Context) {
	c.Data(http.StatusOK, contentTypeXML, []byte(s.ctrl.ApologyDocument()))
}
