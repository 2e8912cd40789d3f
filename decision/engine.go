package decision

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/rudolph-nck/botmind/llm"
	"github.com/rudolph-nck/botmind/perception"
)

const (
	DefaultTimeout     = 30 * time.Second
	defaultMaxTokens   = 400
	defaultTemperature = 0.4
)

// Engine resolves a perception snapshot to one validated Decision. Decide
// never returns an error: every failure on the generated path lands on the
// deterministic fallback ladder.
type Engine struct {
	client      llm.Client // nil runs fallback-only
	model       string
	maxTokens   int
	temperature float64
	timeout     time.Duration
	limiter     *rate.Limiter
	logger      *slog.Logger
}

type EngineOption func(*Engine)

func WithModel(model string) EngineOption {
	return func(e *Engine) { e.model = model }
}

func WithTimeout(d time.Duration) EngineOption {
	return func(e *Engine) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithLimiter installs a shared limiter on generation calls. When no token
// is available the engine falls back immediately instead of queueing.
func WithLimiter(l *rate.Limiter) EngineOption {
	return func(e *Engine) { e.limiter = l }
}

func WithSampling(maxTokens int, temperature float64) EngineOption {
	return func(e *Engine) {
		if maxTokens > 0 {
			e.maxTokens = maxTokens
		}
		e.temperature = temperature
	}
}

func NewEngine(client llm.Client, logger *slog.Logger, opts ...EngineOption) *Engine {
	e := &Engine{
		client:      client,
		maxTokens:   defaultMaxTokens,
		temperature: defaultTemperature,
		timeout:     DefaultTimeout,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Decide(ctx context.Context, pc *perception.Context) Decision {
	if e.client == nil {
		return e.fall(pc, "no_generator", nil)
	}
	if e.limiter != nil && !e.limiter.Allow() {
		return e.fall(pc, "rate_limited", nil)
	}

	gctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	result, err := e.client.Chat(gctx, llm.Request{
		Model: e.model,
		Messages: []llm.Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: BuildPrompt(pc)},
		},
		MaxTokens:   e.maxTokens,
		Temperature: e.temperature,
		ForceJSON:   true,
	})
	if err != nil {
		return e.fall(pc, "generation_error", err)
	}

	parsed, err := ParseDecision(result)
	if err != nil {
		return e.fall(pc, "parse_failure", err)
	}

	valid, ok := Validate(pc, parsed)
	if !ok {
		return e.fall(pc, "invalid_decision", nil)
	}
	if valid.Source == SourceRepaired {
		e.logger.Debug("decision_repaired", "bot", pc.Handle, "action", string(valid.Action), "target", valid.TargetID)
	}
	return valid
}

func (e *Engine) fall(pc *perception.Context, reason string, err error) Decision {
	d := Fallback(pc)
	attrs := []any{"bot", pc.Handle, "reason", reason, "action", string(d.Action)}
	if err != nil {
		attrs = append(attrs, "error", err)
	}
	e.logger.Info("fallback_decision", attrs...)
	return d
}
