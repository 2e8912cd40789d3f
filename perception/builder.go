package perception

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rudolph-nck/botmind/brain"
	"github.com/rudolph-nck/botmind/internal/retryutil"
	"github.com/rudolph-nck/botmind/lifestate"
	"github.com/rudolph-nck/botmind/memory"
	"github.com/rudolph-nck/botmind/store"
)

const (
	commentLimit     = 10
	feedLimit        = 10
	feedWindow       = 24 * time.Hour
	selfWindow       = 6 * time.Hour
	engageWindow     = 24 * time.Hour
	doublePostWindow = 2 * time.Hour
	memoryLimit      = 5

	// Fallback event window when the bot has no prior life state.
	coldEventWindow = 24 * time.Hour
)

// LifeOutcome reports what happened on the best-effort life-state path.
// Build never fails because of it; callers log the outcome and move on.
type LifeOutcome string

const (
	LifeApplied         LifeOutcome = "applied"
	LifeDecodeFailed    LifeOutcome = "decode_failed"
	LifePersistDeferred LifeOutcome = "persist_deferred"
)

// Reader is the perception slice of the state store.
type Reader interface {
	GetBot(ctx context.Context, botID string) (store.Bot, error)
	OwnerTier(ctx context.Context, ownerID string) (string, error)
	UnansweredComments(ctx context.Context, botID string, limit int) ([]store.Comment, error)
	CandidateFeed(ctx context.Context, botID string, since time.Time, limit int) ([]store.Post, error)
	LikedPostIDs(ctx context.Context, botID string, postIDs []string) (map[string]bool, error)
	PostsSince(ctx context.Context, botID string, since time.Time) (int, error)
	CommentsMadeSince(ctx context.Context, botID string, since time.Time) (int, error)
	AvgEngagementSince(ctx context.Context, botID string, since time.Time) (float64, error)
	EventsSince(ctx context.Context, botID string, since time.Time) ([]store.Event, error)
	SaveLifeState(ctx context.Context, botID string, state lifestate.State) error
}

// TrendSource supplies the current trending topics. Satisfied by
// worldcache.Cache.
type TrendSource interface {
	Topics(ctx context.Context) []string
}

type Builder struct {
	reader   Reader
	trends   TrendSource
	memories *memory.Store
	brains   brain.Provider
	logger   *slog.Logger
	now      func() time.Time
}

type BuilderOption func(*Builder)

// WithClock injects the time source, used by tests.
func WithClock(now func() time.Time) BuilderOption {
	return func(b *Builder) { b.now = now }
}

// WithBrains attaches a personality provider. Without one, contexts carry no
// traits and downstream bias sections are omitted.
func WithBrains(p brain.Provider) BuilderOption {
	return func(b *Builder) { b.brains = p }
}

func NewBuilder(reader Reader, trends TrendSource, memories *memory.Store, logger *slog.Logger, opts ...BuilderOption) *Builder {
	b := &Builder{
		reader:   reader,
		trends:   trends,
		memories: memories,
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build assembles the Context for one bot. The only fatal condition is a
// missing bot record (store.ErrBotNotFound); the life-state and memory paths
// are best-effort and their failures never surface.
func (b *Builder) Build(ctx context.Context, botID string) (*Context, error) {
	bot, err := b.reader.GetBot(ctx, botID)
	if err != nil {
		return nil, err
	}
	now := b.now()

	prior, priorOK := b.decodeLifeState(bot)
	eventCutoff := now.Add(-coldEventWindow)
	if priorOK && !prior.Time.LastCycleAt.IsZero() {
		eventCutoff = prior.Time.LastCycleAt
	}

	var (
		tier          string
		comments      []store.Comment
		feed          []store.Post
		liked         map[string]bool
		trending      []string
		postsToday    int
		posts2h       int
		selfComments  int
		avgEngagement float64
		rawEvents     []store.Event
	)
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		tier, err = b.reader.OwnerTier(gctx, bot.OwnerID)
		return err
	})
	g.Go(func() error {
		var err error
		comments, err = b.reader.UnansweredComments(gctx, botID, commentLimit)
		return err
	})
	g.Go(func() error {
		var err error
		feed, err = b.reader.CandidateFeed(gctx, botID, now.Add(-feedWindow), feedLimit)
		if err != nil {
			return err
		}
		ids := make([]string, 0, len(feed))
		for _, p := range feed {
			ids = append(ids, p.ID)
		}
		liked, err = b.reader.LikedPostIDs(gctx, botID, ids)
		return err
	})
	g.Go(func() error {
		trending = b.trends.Topics(gctx)
		return nil
	})
	g.Go(func() error {
		var err error
		postsToday, err = b.reader.PostsSince(gctx, botID, startOfDay)
		return err
	})
	g.Go(func() error {
		var err error
		posts2h, err = b.reader.PostsSince(gctx, botID, now.Add(-doublePostWindow))
		return err
	})
	g.Go(func() error {
		var err error
		selfComments, err = b.reader.CommentsMadeSince(gctx, botID, now.Add(-selfWindow))
		return err
	})
	g.Go(func() error {
		var err error
		avgEngagement, err = b.reader.AvgEngagementSince(gctx, botID, now.Add(-engageWindow))
		return err
	})
	g.Go(func() error {
		var err error
		rawEvents, err = b.reader.EventsSince(gctx, botID, eventCutoff)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("perception queries for %s: %w", botID, err)
	}

	pc := &Context{
		BotID:              bot.ID,
		Handle:             bot.Handle,
		OwnerTier:          tier,
		PostsPerDay:        bot.PostsPerDay,
		WakeStart:          bot.WakeStart,
		WakeEnd:            bot.WakeEnd,
		CooldownMinutes:    bot.CooldownMinutes,
		Now:                now,
		Hour:               now.Hour(),
		SincePost:          sincePost(bot.LastPostedAt, now),
		PostsToday:         postsToday,
		TrendingTopics:     trending,
		CommentsMadeLately: selfComments,
		AvgEngagement:      avgEngagement,
	}
	for _, c := range comments {
		pc.UnansweredComments = append(pc.UnansweredComments, CommentSignal{
			ID:        c.ID,
			PostID:    c.PostID,
			AuthorID:  c.AuthorID,
			Body:      c.Body,
			CreatedAt: c.CreatedAt,
		})
	}
	for _, p := range feed {
		pc.Feed = append(pc.Feed, FeedPost{
			ID:           p.ID,
			AuthorHandle: p.AuthorHandle,
			Topic:        p.Topic,
			Body:         p.Body,
			Engagement:   p.Engagement,
			Liked:        liked[p.ID],
			CreatedAt:    p.CreatedAt,
		})
	}
	pc.Events = convertEvents(rawEvents)

	if b.brains != nil {
		if traits, ok := b.brains.TraitsFor(bot.Handle); ok {
			t := traits
			pc.Traits = &t
		}
	}

	outcome := b.applyLifeState(ctx, pc, prior, priorOK, posts2h >= 2)
	b.logger.Debug("lifestate_outcome", "bot", bot.Handle, "outcome", string(outcome))

	b.attachMemories(ctx, pc)
	return pc, nil
}

// applyLifeState runs the deterministic transition and persists its results.
// Everything here is best-effort: a decode failure drops the enrichment, a
// persistence failure keeps the enrichment and retries the write in the
// background.
func (b *Builder) applyLifeState(ctx context.Context, pc *Context, prior lifestate.State, priorOK bool, postedTwice bool) LifeOutcome {
	if !priorOK {
		return LifeDecodeFailed
	}
	var assertiveness float64
	if pc.Traits != nil {
		assertiveness = pc.Traits.Assertiveness
	}
	next, candidates := lifestate.Advance(prior, lifestate.Signals{
		Now:             pc.Now,
		Events:          pc.Events,
		UnansweredCount: len(pc.UnansweredComments),
		SincePost:       pc.SincePost,
		PostedTwiceIn2h: postedTwice,
		TrendingTopics:  pc.TrendingTopics,
		AvgEngagement:   pc.AvgEngagement,
		PostsToday:      pc.PostsToday,
		Assertiveness:   assertiveness,
	})
	pc.LifeState = &next

	outcome := LifeApplied
	if err := b.reader.SaveLifeState(ctx, pc.BotID, next); err != nil {
		b.logger.Warn("lifestate_save_failed", "bot", pc.Handle, "error", err)
		retryutil.AsyncRetry(b.logger, "lifestate_save", 2*time.Second, 10*time.Second, func(rctx context.Context) error {
			return b.reader.SaveLifeState(rctx, pc.BotID, next)
		})
		outcome = LifePersistDeferred
	}
	if err := b.memories.Write(ctx, pc.BotID, candidates); err != nil {
		b.logger.Warn("memory_write_failed", "bot", pc.Handle, "error", err)
		if outcome == LifeApplied {
			outcome = LifePersistDeferred
		}
	}
	return outcome
}

// attachMemories retrieves up to memoryLimit episodic memories relevant to
// the current situation. Retrieval failures are logged and dropped.
func (b *Builder) attachMemories(ctx context.Context, pc *Context) {
	tags := append([]string(nil), pc.TrendingTopics...)
	if pc.LifeState != nil && pc.LifeState.Affect.Emotion != "" {
		tags = append(tags, pc.LifeState.Affect.Emotion)
	}
	if len(pc.UnansweredComments) > 0 {
		tags = append(tags, "social")
	}
	memories, err := b.memories.Retrieve(ctx, pc.BotID, tags, memoryLimit)
	if err != nil {
		b.logger.Warn("memory_retrieve_failed", "bot", pc.Handle, "error", err)
		return
	}
	pc.Memories = memories
}

func (b *Builder) decodeLifeState(bot store.Bot) (lifestate.State, bool) {
	if len(bot.LifeState) == 0 {
		return lifestate.DefaultState(), true
	}
	var state lifestate.State
	if err := json.Unmarshal(bot.LifeState, &state); err != nil {
		b.logger.Warn("lifestate_decode_failed", "bot", bot.Handle, "error", err)
		return lifestate.State{}, false
	}
	if state.Beliefs == nil {
		state.Beliefs = map[string]lifestate.Belief{}
	}
	if state.Social == nil {
		state.Social = map[string]lifestate.Relationship{}
	}
	return state, true
}

func sincePost(lastPostedAt *time.Time, now time.Time) lifestate.SincePost {
	if lastPostedAt == nil || lastPostedAt.IsZero() {
		return lifestate.SinceNever()
	}
	return lifestate.SinceHours(now.Sub(*lastPostedAt).Hours())
}

func convertEvents(raw []store.Event) []lifestate.Event {
	if len(raw) == 0 {
		return nil
	}
	out := make([]lifestate.Event, 0, len(raw))
	for _, ev := range raw {
		out = append(out, lifestate.Event{
			Kind:    lifestate.EventKind(ev.Kind),
			ActorID: ev.ActorID,
			At:      ev.CreatedAt,
		})
	}
	return out
}
