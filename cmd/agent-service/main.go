package main

import (
	"log"

	"github.com/kisanvaani/kisan-agent-service/internal/app"
	"github.com/kisanvaani/kisan-agent-service/internal/config"
	"github.com/kisanvaani/kisan-agent-service/internal/logger"
)

var (
	ServiceVersion string
	GitCommit      string
	BuildDate      string
)

const serviceName = "kisan-agent-service"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLog := logger.New(serviceName, cfg.Env)

	appLog.Info().
		Str("version", ServiceVersion).
		Str("commit", GitCommit).
		Str("build_date", BuildDate).
		Str("profile", cfg.Env).
		Msg("🚀 kisan-agent-service starting...")

	application := app.NewApp(cfg, appLog)
	application.Run()
}
