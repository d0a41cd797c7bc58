// Package advisor generates spoken farming advice for a caller's query.
// Two strategies exist: a model-backed generator that prompts the LLM
// backend, and a rule-based generator with canned answers per topic. The
// model-backed variant degrades into the rule-based one on any backend
// failure, so callers always receive advice.
package advisor

import (
	"context"
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/kisanvaani/kisan-agent-service/internal/client"
	"github.com/kisanvaani/kisan-agent-service/internal/farming"
	"github.com/kisanvaani/kisan-agent-service/internal/language"
)

// Generator produces advisory text for a query asked in the given farming
// context. Implementations never fail: degraded paths return canned advice.
type Generator interface {
	Generate(ctx context.Context, fc farming.Context, query string) string
}

// ModelGenerator asks the LLM backend and falls back to rules when the
// backend is unreachable, times out, or returns garbage.
type ModelGenerator struct {
	llm       *client.LlmClient
	rules     *RuleGenerator
	fallbacks prometheus.Counter
	log       zerolog.Logger
}

func NewModelGenerator(llm *client.LlmClient, rules *RuleGenerator, fallbacks prometheus.Counter, log zerolog.Logger) *ModelGenerator {
	return &ModelGenerator{
		llm:       llm,
		rules:     rules,
		fallbacks: fallbacks,
		log:       log.With().Str("component", "advisor").Logger(),
	}
}

func (g *ModelGenerator) Generate(ctx context.Context, fc farming.Context, query string) string {
	lang := language.Detect(query)
	prompt := BuildPrompt(fc, query, lang)

	text, err := g.llm.Generate(ctx, prompt)
	if err == nil && strings.TrimSpace(text) != "" {
		return strings.TrimSpace(text)
	}
	if err != nil {
		g.log.Warn().Err(err).Msg("LLM backend failed, serving rule-based advice")
	} else {
		g.log.Warn().Msg("LLM backend returned empty text, serving rule-based advice")
	}
	if g.fallbacks != nil {
		g.fallbacks.Inc()
	}
	return g.rules.Generate(ctx, fc, query)
}

// BuildPrompt renders the advisory prompt with the context fields and the
// caller's language spelled out in its native script.
func BuildPrompt(fc farming.Context, query string, lang language.Tag) string {
	langName := language.DisplayName(lang)

	return fmt.Sprintf(`You are an expert agriculture advisor. Please respond in %s.

Farmer Location: %s
Crop: %s
Water Condition: %s
Soil Type: %s
Season: %s

Farmer Query: "%s"

Give a clear, short, and practical answer in simple %s that a farmer can easily understand and follow. Focus on:
1. Immediate actionable steps
2. Cost-effective solutions
3. Local availability of resources
4. Safety precautions

Answer:`,
		langName,
		orUnknown(fc.Location),
		orUnknown(fc.Crop),
		orUnknown(string(fc.Water)),
		orUnknown(fc.SoilType),
		orUnknown(string(fc.Season)),
		query,
		langName,
	)
}

func orUnknown(v string) string {
	if v == "" {
		return "Unknown"
	}
	return v
}
