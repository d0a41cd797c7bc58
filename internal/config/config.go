package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Context merge strategies applied when a caller restates farming details.
const (
	MergeStrategyReplace = "replace"
	MergeStrategyMerge   = "merge"
)

// Session store drivers.
const (
	SessionDriverMemory = "memory"
	SessionDriverRedis  = "redis"
)

// Config holds every configuration value the service needs.
type Config struct {
	Env      string
	LogLevel string

	HTTPPort    string
	MetricsPort string

	// Collaborator endpoints. LLM is optional: when empty the service runs
	// on the rule-based advisor alone.
	LLMServiceURL string
	SttServiceURL string
	TtsServiceURL string

	// Twilio REST credentials for outbound dialing. Optional.
	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFromNumber string

	// Base URL the telephony provider prepends to our callback routes.
	PublicBaseURL string

	SessionDriver string
	SessionTTL    time.Duration
	RedisURL      string

	// Optional infrastructure. Empty values disable the integration.
	PostgresURL string
	RabbitMQURL string

	ContextMergeStrategy string
	SpeechTimeout        string
	LLMMaxTokens         int
	LLMTemperature       float64
}

// Load reads configuration from .env and the environment.
func Load() (*Config, error) {
	godotenv.Load()

	cfg := &Config{
		Env:      getEnvWithDefault("ENV", "production"),
		LogLevel: getEnvWithDefault("LOG_LEVEL", "info"),

		HTTPPort:    getEnvWithDefault("HTTP_PORT", "8000"),
		MetricsPort: getEnvWithDefault("METRICS_PORT_AGENT", "9091"),

		LLMServiceURL: getEnv("LLM_SERVICE_URL"),
		SttServiceURL: getEnvWithDefault("STT_SERVICE_URL", "https://asr-api.open-speech-ekstep.frappe.cloud/v1/inference"),
		TtsServiceURL: getEnvWithDefault("TTS_SERVICE_URL", "https://tts-api.open-speech-ekstep.frappe.cloud/v1/inference"),

		TwilioAccountSID: getEnv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:  getEnv("TWILIO_AUTH_TOKEN"),
		TwilioFromNumber: getEnv("TWILIO_PHONE_NUMBER"),

		PublicBaseURL: getEnv("PUBLIC_BASE_URL"),

		SessionDriver: getEnvWithDefault("SESSION_DRIVER", SessionDriverMemory),
		SessionTTL:    2 * time.Hour,
		RedisURL:      getEnv("REDIS_URL"),

		PostgresURL: getEnv("POSTGRES_URL"),
		RabbitMQURL: getEnv("RABBITMQ_URL"),

		ContextMergeStrategy: getEnvWithDefault("CONTEXT_MERGE_STRATEGY", MergeStrategyReplace),
		SpeechTimeout:        getEnvWithDefault("GATHER_SPEECH_TIMEOUT", "auto"),
	}

	var err error
	cfg.LLMMaxTokens, err = getEnvInt("LLM_MAX_TOKENS", 512)
	if err != nil {
		return nil, err
	}
	cfg.LLMTemperature, err = getEnvFloat("LLM_TEMPERATURE", 0.7)
	if err != nil {
		return nil, err
	}

	switch cfg.ContextMergeStrategy {
	case MergeStrategyReplace, MergeStrategyMerge:
	default:
		return nil, fmt.Errorf("unknown context merge strategy %q", cfg.ContextMergeStrategy)
	}

	switch cfg.SessionDriver {
	case SessionDriverMemory:
	case SessionDriverRedis:
		if cfg.RedisURL == "" {
			return nil, fmt.Errorf("SESSION_DRIVER=redis requires REDIS_URL")
		}
	default:
		return nil, fmt.Errorf("unknown session driver %q", cfg.SessionDriver)
	}

	return cfg, nil
}

func getEnv(key string) string {
	return os.Getenv(key)
}

func getEnvWithDefault(key, defaultValue string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultValue
	}
	return val
}

func getEnvInt(key string, defaultValue int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, val)
	}
	return n, nil
}

func getEnvFloat(key string, defaultValue float64) (float64, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number, got %q", key, val)
	}
	return f, nil
}
