package app

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"

	"github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/kisanvaani/kisan-agent-service/internal/advisor"
	"github.com/kisanvaani/kisan-agent-service/internal/client"
	"github.com/kisanvaani/kisan-agent-service/internal/config"
	"github.com/kisanvaani/kisan-agent-service/internal/database"
	"github.com/kisanvaani/kisan-agent-service/internal/dialog"
	"github.com/kisanvaani/kisan-agent-service/internal/metrics"
	"github.com/kisanvaani/kisan-agent-service/internal/queue"
	"github.com/kisanvaani/kisan-agent-service/internal/server"
	"github.com/kisanvaani/kisan-agent-service/internal/session"
)

type App struct {
	Cfg *config.Config
	Log zerolog.Logger
}

func NewApp(cfg *config.Config, log zerolog.Logger) *App {
	return &App{Cfg: cfg, Log: log}
}

func (a *App) Run() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 1. Infrastructure (all pieces beyond the store are optional)
	store, err := session.NewStore(ctx, a.Cfg, a.Log)
	if err != nil {
		a.Log.Fatal().Err(err).Msg("Failed to initialize session store")
	}
	defer store.Close()

	var db *sql.DB
	if a.Cfg.PostgresURL != "" {
		db, err = database.Connect(ctx, a.Cfg.PostgresURL, a.Log)
		if err != nil {
			a.Log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
		}
		defer db.Close()
	}

	var publisher dialog.EventPublisher
	var rabbitClose <-chan *amqp091.Error
	if a.Cfg.RabbitMQURL != "" {
		ch, closeCh, err := queue.Connect(ctx, a.Cfg.RabbitMQURL, a.Log)
		if err != nil {
			a.Log.Fatal().Err(err).Msg("Failed to connect to RabbitMQ")
		}
		defer ch.Close()
		publisher = queue.NewPublisher(ch, a.Log)
		rabbitClose = closeCh
	}

	// 2. Dependency wiring
	llmClient := client.NewLlmClient(a.Cfg.LLMServiceURL, a.Cfg.LLMMaxTokens, a.Cfg.LLMTemperature, a.Log)
	sttClient := client.NewSttClient(a.Cfg.SttServiceURL, a.Log)
	ttsClient := client.NewTtsClient(a.Cfg.TtsServiceURL, a.Log)
	twilioClient := client.NewTwilioClient(a.Cfg.TwilioAccountSID, a.Cfg.TwilioAuthToken, a.Cfg.TwilioFromNumber, a.Log)

	rules := advisor.NewRuleGenerator()
	var gen advisor.Generator = rules
	if llmClient.Available() {
		gen = advisor.NewModelGenerator(llmClient, rules, metrics.GeneratorFallbacks, a.Log)
	} else {
		a.Log.Warn().Msg("LLM backend not configured, running on rule-based advice only")
	}

	texts := dialog.NewTextProvider(db, a.Log)
	controller := dialog.NewController(a.Cfg, store, gen, texts, publisher, metrics.ActiveSessions, a.Log)

	srv := server.New(a.Cfg, controller, server.Collaborators{
		LLM:       llmClient,
		STT:       sttClient,
		TTS:       ttsClient,
		Telephony: twilioClient,
	}, a.Log)

	// 3. Servers
	go metrics.StartServer(a.Cfg.MetricsPort, a.Log)

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- srv.Run(ctx)
	}()

	// 4. Shutdown
	a.handleShutdown(cancel, srvErr, rabbitClose)
}

func (a *App) handleShutdown(cancel context.CancelFunc, srvErr <-chan error, rabbitClose <-chan *amqp091.Error) {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sig:
		a.Log.Info().Msg("Shutdown signal received")
	case err := <-rabbitClose:
		a.Log.Error().Err(err).Msg("RabbitMQ connection lost")
	case err := <-srvErr:
		if err != nil {
			a.Log.Error().Err(err).Msg("Webhook server failed")
		}
	}

	cancel()
	a.Log.Info().Msg("Service stopped")
}
