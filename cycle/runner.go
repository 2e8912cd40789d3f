// Package cycle runs one perceive→decide→act pass for a single bot and
// appends the audit record. Cycles for different bots are independent; the
// daemon guarantees at most one in-flight cycle per bot.
package cycle

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/rudolph-nck/botmind/decision"
	"github.com/rudolph-nck/botmind/dispatch"
	"github.com/rudolph-nck/botmind/perception"
)

// Auditor receives one record per completed cycle. Satisfied by
// fsstore.JSONLWriter.
type Auditor interface {
	AppendJSON(v any) error
}

// Decider resolves a perception snapshot to a decision.
// Satisfied by decision.Engine.
type Decider interface {
	Decide(ctx context.Context, pc *perception.Context) decision.Decision
}

// Dispatcher executes a decision. Satisfied by dispatch.Dispatcher.
type Dispatcher interface {
	Dispatch(ctx context.Context, pc *perception.Context, dec decision.Decision) (dispatch.Result, error)
}

type Runner struct {
	builder    *perception.Builder
	decider    Decider
	dispatcher Dispatcher
	audit      Auditor // optional
	logger     *slog.Logger
}

type Option func(*Runner)

// WithAudit attaches the JSONL audit trail. Append failures are logged and
// never fail a cycle.
func WithAudit(a Auditor) Option {
	return func(r *Runner) { r.audit = a }
}

func NewRunner(builder *perception.Builder, decider Decider, dispatcher Dispatcher, logger *slog.Logger, opts ...Option) *Runner {
	r := &Runner{
		builder:    builder,
		decider:    decider,
		dispatcher: dispatcher,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes one cycle. The only error it returns is a failed perception
// build (a missing bot record, or the store being unreachable); everything
// after perception is recoverable and logged instead.
func (r *Runner) Run(ctx context.Context, botID string) (dispatch.Result, error) {
	runID := uuid.NewString()
	started := time.Now()
	r.logger.Info("cycle_start", "run_id", runID, "bot", botID)

	pc, err := r.builder.Build(ctx, botID)
	if err != nil {
		r.logger.Warn("cycle_perception_failed", "run_id", runID, "bot", botID, "error", err)
		return dispatch.Result{}, err
	}

	dec := r.decider.Decide(ctx, pc)

	res, err := r.dispatcher.Dispatch(ctx, pc, dec)
	if err != nil {
		// The scheduling write failed. The bot's next_cycle_at is stale and
		// the external trigger will simply re-evaluate; not a crashed cycle.
		r.logger.Warn("cycle_schedule_write_failed", "run_id", runID, "bot", botID, "error", err)
	}

	if r.audit != nil {
		if err := r.audit.AppendJSON(res); err != nil {
			r.logger.Warn("cycle_audit_failed", "run_id", runID, "bot", botID, "error", err)
		}
	}

	r.logger.Info("cycle_done",
		"run_id", runID,
		"bot", pc.Handle,
		"action", string(res.Action),
		"priority", string(res.Priority),
		"source", string(res.Source),
		"job_id", res.JobID,
		"next_cycle_at", res.NextCycleAt,
		"duration", time.Since(started),
	)
	return res, nil
}
