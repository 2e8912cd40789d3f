package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rudolph-nck/botmind/lifestate"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	cfg := DefaultConfig()
	// Named in-memory database so the pool's connections share one schema
	// while tests stay isolated from each other.
	cfg.DSN = fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	cfg.SQLite.WAL = false
	s, err := Open(cfg)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	return s
}

func TestGetBotNotFound(t *testing.T) {
	s := openTestStore(t)
	_, err := s.GetBot(context.Background(), "nope")
	if !errors.Is(err, ErrBotNotFound) {
		t.Errorf("expected ErrBotNotFound, got %v", err)
	}
	_, err = s.GetBotByHandle(context.Background(), "nope")
	if !errors.Is(err, ErrBotNotFound) {
		t.Errorf("expected ErrBotNotFound by handle, got %v", err)
	}
}

func TestCreateBotInitializesLifeState(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	bot := &Bot{Handle: "ada", OwnerID: "owner-1"}
	if err := s.CreateBot(ctx, bot); err != nil {
		t.Fatalf("create bot: %v", err)
	}
	if bot.ID == "" {
		t.Fatal("expected generated bot id")
	}

	got, err := s.GetBot(ctx, bot.ID)
	if err != nil {
		t.Fatalf("get bot: %v", err)
	}
	var state lifestate.State
	if err := json.Unmarshal(got.LifeState, &state); err != nil {
		t.Fatalf("life state not valid json: %v", err)
	}
	if state.Needs != lifestate.DefaultState().Needs {
		t.Errorf("unexpected initial needs: %+v", state.Needs)
	}
}

func TestOwnerTierDefaultsToFree(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	tier, err := s.OwnerTier(ctx, "ghost")
	if err != nil {
		t.Fatalf("owner tier: %v", err)
	}
	if tier != "free" {
		t.Errorf("tier = %q, want free", tier)
	}

	if err := s.CreateOwner(ctx, &Owner{ID: "o1", Tier: "pro"}); err != nil {
		t.Fatalf("create owner: %v", err)
	}
	tier, err = s.OwnerTier(ctx, "o1")
	if err != nil {
		t.Fatalf("owner tier: %v", err)
	}
	if tier != "pro" {
		t.Errorf("tier = %q, want pro", tier)
	}
}

func TestInsertLikeDuplicate(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.InsertLike(ctx, "bot-1", "post-1"); err != nil {
		t.Fatalf("first like: %v", err)
	}
	err := s.InsertLike(ctx, "bot-1", "post-1")
	if !errors.Is(err, ErrAlreadyLiked) {
		t.Errorf("expected ErrAlreadyLiked, got %v", err)
	}
	// Different post is fine.
	if err := s.InsertLike(ctx, "bot-1", "post-2"); err != nil {
		t.Fatalf("second post like: %v", err)
	}
}

func TestMemoryLogRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	log := s.MemoryLog()

	if err := log.Append(ctx, "bot-1", nil); err != nil {
		t.Fatalf("empty append: %v", err)
	}
	candidates := []lifestate.MemoryCandidate{
		{Summary: "first", Tags: []string{"Social", "Comments"}, Emotion: "calm", Importance: 2},
		{Summary: "second", Tags: []string{"rest"}, Emotion: "drained", Importance: 4},
	}
	if err := log.Append(ctx, "bot-1", candidates); err != nil {
		t.Fatalf("append: %v", err)
	}

	got, err := log.Recent(ctx, "bot-1", 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	for _, e := range got {
		for _, tag := range e.Tags {
			if tag != "social" && tag != "comments" && tag != "rest" {
				t.Errorf("tags should be lowercased, got %q", tag)
			}
		}
	}

	other, err := log.Recent(ctx, "bot-2", 10)
	if err != nil {
		t.Fatalf("recent other bot: %v", err)
	}
	if len(other) != 0 {
		t.Errorf("memory log leaked across bots: %d", len(other))
	}
}

func TestDueBots(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	past := now.Add(-time.Minute)
	future := now.Add(time.Hour)
	for _, b := range []*Bot{
		{Handle: "due", NextCycleAt: &past},
		{Handle: "fresh"}, // never scheduled counts as due
		{Handle: "later", NextCycleAt: &future},
	} {
		if err := s.CreateBot(ctx, b); err != nil {
			t.Fatalf("create %s: %v", b.Handle, err)
		}
	}

	due, err := s.DueBots(ctx, now, 10)
	if err != nil {
		t.Fatalf("due bots: %v", err)
	}
	if len(due) != 2 {
		t.Fatalf("expected 2 due bots, got %d", len(due))
	}
	for _, b := range due {
		if b.Handle == "later" {
			t.Error("future bot should not be due")
		}
	}
}

func TestRecordCycleUpdatesSchedulingFields(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	bot := &Bot{Handle: "ada"}
	if err := s.CreateBot(ctx, bot); err != nil {
		t.Fatalf("create bot: %v", err)
	}
	next := time.Now().UTC().Add(42 * time.Minute).Truncate(time.Second)
	if err := s.RecordCycle(ctx, bot.ID, "CREATE_POST", "time to post", "job-9", next); err != nil {
		t.Fatalf("record cycle: %v", err)
	}
	got, err := s.GetBot(ctx, bot.ID)
	if err != nil {
		t.Fatalf("get bot: %v", err)
	}
	if got.LastAction != "CREATE_POST" || got.LastJobID != "job-9" {
		t.Errorf("audit fields not persisted: %+v", got)
	}
	if got.NextCycleAt == nil || !got.NextCycleAt.Equal(next) {
		t.Errorf("next cycle = %v, want %v", got.NextCycleAt, next)
	}
}
