package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

var (
	WebhooksProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agent_webhooks_processed_total",
			Help: "Telephony webhook deliveries processed, by route.",
		},
		[]string{"route"},
	)

	WebhooksFailed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agent_webhooks_failed_total",
			Help: "Telephony webhook deliveries that failed, by route and reason.",
		},
		[]string{"route", "reason"},
	)

	GeneratorFallbacks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "agent_generator_fallbacks_total",
			Help: "Times the LLM backend failed and the rule-based advisor answered instead.",
		},
	)

	ActiveSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "agent_active_sessions",
			Help: "Currently active call sessions.",
		},
	)
)

func init() {
	prometheus.MustRegister(WebhooksProcessed, WebhooksFailed, GeneratorFallbacks, ActiveSessions)
}

// StartServer exposes /metrics on its own port.
func StartServer(port string, log zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	log.Info().Str("port", port).Msg("Metrics server listening")
	if err := http.ListenAndServe(":"+port, mux); err != nil {
		log.Error().Err(err).Msg("Metrics server stopped")
	}
}
