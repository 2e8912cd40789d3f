// Package dispatch executes a validated decision: enqueue the downstream
// generation job (or perform the one inline write), then compute and persist
// the adaptive next-cycle timestamp.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rudolph-nck/botmind/decision"
	"github.com/rudolph-nck/botmind/perception"
	"github.com/rudolph-nck/botmind/store"
)

const (
	JobPostGenerate  = "post.generate"
	JobReplyGenerate = "reply.generate"
)

// Store is the dispatch slice of the state store.
type Store interface {
	EnqueueJob(ctx context.Context, jobType, botID string, payload any) (string, error)
	InsertLike(ctx context.Context, botID, postID string) error
	RecordCycle(ctx context.Context, botID string, action, reasoning, jobID string, nextCycleAt time.Time) error
}

// Result is the audit record of one completed cycle.
type Result struct {
	BotID       string            `json:"bot_id"`
	Handle      string            `json:"handle"`
	Action      decision.Action   `json:"action"`
	Priority    decision.Priority `json:"priority"`
	Reasoning   string            `json:"reasoning"`
	Source      decision.Source   `json:"source"`
	JobID       string            `json:"job_id,omitempty"`
	NextCycleAt time.Time         `json:"next_cycle_at"`
}

// PostPayload is carried by post.generate jobs.
type PostPayload struct {
	Handle         string   `json:"handle"`
	OwnerTier      string   `json:"owner_tier"`
	Hint           string   `json:"hint,omitempty"`
	TrendingTopics []string `json:"trending_topics,omitempty"`
}

// ReplyPayload is carried by reply.generate jobs. TargetKind distinguishes
// replying to a comment on the bot's own post from commenting on someone
// else's post.
type ReplyPayload struct {
	TargetID   string `json:"target_id"`
	TargetKind string `json:"target_kind"`
	Hint       string `json:"hint,omitempty"`
}

type Dispatcher struct {
	store  Store
	logger *slog.Logger
	now    func() time.Time
	jitter func() float64
}

type Option func(*Dispatcher)

// WithClock injects the time source, used by tests.
func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) { d.now = now }
}

// WithJitter overrides the scheduling jitter source, used by tests.
func WithJitter(jitter func() float64) Option {
	return func(d *Dispatcher) { d.jitter = jitter }
}

func New(store Store, logger *slog.Logger, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		store:  store,
		logger: logger,
		now:    time.Now,
		jitter: uniformJitter,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch performs the decision's side effect and persists the scheduling
// state. Side-effect failures (enqueue errors, duplicate likes, missing
// optional targets) are logged, never propagated; the only returned error is
// a failed scheduling write, which the next external trigger recovers from.
func (d *Dispatcher) Dispatch(ctx context.Context, pc *perception.Context, dec decision.Decision) (Result, error) {
	now := d.now()
	res := Result{
		BotID:       pc.BotID,
		Handle:      pc.Handle,
		Action:      dec.Action,
		Priority:    dec.Priority,
		Reasoning:   dec.Reasoning,
		Source:      dec.Source,
		NextCycleAt: nextCycleAt(now, pc.CooldownMinutes, dec, d.jitter),
	}

	switch dec.Action {
	case decision.ActionCreatePost:
		res.JobID = d.enqueue(ctx, pc.BotID, JobPostGenerate, PostPayload{
			Handle:         pc.Handle,
			OwnerTier:      pc.OwnerTier,
			Hint:           dec.ContextHint,
			TrendingTopics: pc.TrendingTopics,
		})

	case decision.ActionRespondToComment, decision.ActionRespondToPost:
		if dec.TargetID == "" {
			d.logger.Warn("dispatch_missing_target", "bot", pc.Handle, "action", string(dec.Action))
			break
		}
		kind := "comment"
		if dec.Action == decision.ActionRespondToPost {
			kind = "post"
		}
		res.JobID = d.enqueue(ctx, pc.BotID, JobReplyGenerate, ReplyPayload{
			TargetID:   dec.TargetID,
			TargetKind: kind,
			Hint:       dec.ContextHint,
		})

	case decision.ActionLikePost:
		d.like(ctx, pc, dec.TargetID)

	case decision.ActionIdle:
		// No side effect.
	}

	if err := d.store.RecordCycle(ctx, pc.BotID, string(dec.Action), dec.Reasoning, res.JobID, res.NextCycleAt); err != nil {
		return res, fmt.Errorf("record cycle for %s: %w", pc.BotID, err)
	}
	return res, nil
}

func (d *Dispatcher) enqueue(ctx context.Context, botID, jobType string, payload any) string {
	jobID, err := d.store.EnqueueJob(ctx, jobType, botID, payload)
	if err != nil {
		d.logger.Warn("job_enqueue_failed", "bot", botID, "type", jobType, "error", err)
		return ""
	}
	d.logger.Debug("job_enqueued", "bot", botID, "type", jobType, "job_id", jobID)
	return jobID
}

// like is the one inline side effect; a duplicate like is a no-op.
func (d *Dispatcher) like(ctx context.Context, pc *perception.Context, postID string) {
	if postID == "" {
		d.logger.Warn("dispatch_missing_target", "bot", pc.Handle, "action", string(decision.ActionLikePost))
		return
	}
	err := d.store.InsertLike(ctx, pc.BotID, postID)
	switch {
	case err == nil:
		d.logger.Debug("post_liked", "bot", pc.Handle, "post", postID)
	case errors.Is(err, store.ErrAlreadyLiked):
		d.logger.Debug("already_liked", "bot", pc.Handle, "post", postID)
	default:
		d.logger.Warn("like_failed", "bot", pc.Handle, "post", postID, "error", err)
	}
}
