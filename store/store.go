// Package store is the sqlite/gorm implementation of the state store behind
// the decision core: bot records, social signals, the event and memory logs,
// and the job queue's insert side.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/rudolph-nck/botmind/lifestate"
	"github.com/rudolph-nck/botmind/memory"
)

var (
	ErrBotNotFound  = errors.New("store: bot not found")
	ErrAlreadyLiked = errors.New("store: already liked")
)

type Store struct {
	db *gorm.DB
}

func Open(cfg Config) (*Store, error) {
	dsn, err := ResolveDSN(cfg.DSN)
	if err != nil {
		return nil, err
	}
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dsn, err)
	}
	if cfg.SQLite.BusyTimeoutMs > 0 {
		gdb.Exec(fmt.Sprintf("PRAGMA busy_timeout = %d", cfg.SQLite.BusyTimeoutMs))
	}
	if cfg.SQLite.WAL {
		gdb.Exec("PRAGMA journal_mode = WAL")
	}
	s := &Store{db: gdb}
	if cfg.AutoMigrate {
		if err := s.AutoMigrate(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Store) AutoMigrate() error {
	return s.db.AutoMigrate(
		&Owner{},
		&Bot{},
		&Post{},
		&Comment{},
		&Like{},
		&Event{},
		&MemoryEntry{},
		&Job{},
	)
}

// --- bots ---

func (s *Store) GetBot(ctx context.Context, botID string) (Bot, error) {
	var bot Bot
	err := s.db.WithContext(ctx).First(&bot, "id = ?", botID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Bot{}, fmt.Errorf("%w: %s", ErrBotNotFound, botID)
	}
	if err != nil {
		return Bot{}, err
	}
	return bot, nil
}

func (s *Store) GetBotByHandle(ctx context.Context, handle string) (Bot, error) {
	var bot Bot
	err := s.db.WithContext(ctx).First(&bot, "handle = ?", handle).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Bot{}, fmt.Errorf("%w: @%s", ErrBotNotFound, handle)
	}
	if err != nil {
		return Bot{}, err
	}
	return bot, nil
}

func (s *Store) CreateBot(ctx context.Context, bot *Bot) error {
	if bot.ID == "" {
		bot.ID = uuid.NewString()
	}
	if len(bot.LifeState) == 0 {
		data, err := json.Marshal(lifestate.DefaultState())
		if err != nil {
			return err
		}
		bot.LifeState = data
	}
	return s.db.WithContext(ctx).Create(bot).Error
}

func (s *Store) CreateOwner(ctx context.Context, owner *Owner) error {
	return s.db.WithContext(ctx).Create(owner).Error
}

func (s *Store) OwnerTier(ctx context.Context, ownerID string) (string, error) {
	var owner Owner
	err := s.db.WithContext(ctx).First(&owner, "id = ?", ownerID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "free", nil
	}
	if err != nil {
		return "", err
	}
	if owner.Tier == "" {
		return "free", nil
	}
	return owner.Tier, nil
}

// DueBots returns bots whose next cycle time has elapsed (or was never set),
// oldest first.
func (s *Store) DueBots(ctx context.Context, now time.Time, limit int) ([]Bot, error) {
	var bots []Bot
	err := s.db.WithContext(ctx).
		Where("next_cycle_at IS NULL OR next_cycle_at <= ?", now).
		Order("next_cycle_at ASC").
		Limit(limit).
		Find(&bots).Error
	return bots, err
}

// SaveLifeState overwrites the bot's life-state snapshot.
func (s *Store) SaveLifeState(ctx context.Context, botID string, state lifestate.State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Model(&Bot{}).
		Where("id = ?", botID).
		Update("life_state", data).Error
}

// RecordCycle persists the scheduling and audit fields of a completed cycle.
func (s *Store) RecordCycle(ctx context.Context, botID string, action, reasoning, jobID string, nextCycleAt time.Time) error {
	return s.db.WithContext(ctx).Model(&Bot{}).
		Where("id = ?", botID).
		Updates(map[string]any{
			"last_action":    action,
			"last_reasoning": reasoning,
			"last_job_id":    jobID,
			"next_cycle_at":  nextCycleAt,
		}).Error
}

// --- social signals ---

// UnansweredComments returns pending comments on the bot's posts, oldest
// first.
func (s *Store) UnansweredComments(ctx context.Context, botID string, limit int) ([]Comment, error) {
	var comments []Comment
	err := s.db.WithContext(ctx).
		Where("bot_id = ? AND answered = ?", botID, false).
		Order("created_at ASC").
		Limit(limit).
		Find(&comments).Error
	return comments, err
}

// CandidateFeed returns recent posts by other authors, newest first.
func (s *Store) CandidateFeed(ctx context.Context, botID string, since time.Time, limit int) ([]Post, error) {
	var posts []Post
	err := s.db.WithContext(ctx).
		Where("author_id <> ? AND created_at >= ?", botID, since).
		Order("created_at DESC").
		Limit(limit).
		Find(&posts).Error
	return posts, err
}

// LikedPostIDs returns which of postIDs the bot already liked.
func (s *Store) LikedPostIDs(ctx context.Context, botID string, postIDs []string) (map[string]bool, error) {
	out := make(map[string]bool)
	if len(postIDs) == 0 {
		return out, nil
	}
	var likes []Like
	err := s.db.WithContext(ctx).
		Where("bot_id = ? AND post_id IN ?", botID, postIDs).
		Find(&likes).Error
	if err != nil {
		return nil, err
	}
	for _, l := range likes {
		out[l.PostID] = true
	}
	return out, nil
}

// TopTopics returns the most frequent post topics since the cutoff.
func (s *Store) TopTopics(ctx context.Context, since time.Time, limit int) ([]string, error) {
	var topics []string
	err := s.db.WithContext(ctx).Model(&Post{}).
		Select("topic").
		Where("created_at >= ? AND topic <> ''", since).
		Group("topic").
		Order("COUNT(*) DESC").
		Limit(limit).
		Scan(&topics).Error
	return topics, err
}

// PostsSince counts posts the bot authored at or after the cutoff.
func (s *Store) PostsSince(ctx context.Context, botID string, since time.Time) (int, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&Post{}).
		Where("author_id = ? AND created_at >= ?", botID, since).
		Count(&n).Error
	return int(n), err
}

// CommentsMadeSince counts comments the bot authored at or after the cutoff,
// on anyone's posts.
func (s *Store) CommentsMadeSince(ctx context.Context, botID string, since time.Time) (int, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&Comment{}).
		Where("author_id = ? AND created_at >= ?", botID, since).
		Count(&n).Error
	return int(n), err
}

// AvgEngagementSince averages engagement over the bot's own recent posts.
// Returns 0 when the bot has no posts in the window.
func (s *Store) AvgEngagementSince(ctx context.Context, botID string, since time.Time) (float64, error) {
	var avg *float64
	err := s.db.WithContext(ctx).Model(&Post{}).
		Select("AVG(engagement)").
		Where("author_id = ? AND created_at >= ?", botID, since).
		Scan(&avg).Error
	if err != nil || avg == nil {
		return 0, err
	}
	return *avg, nil
}

// --- events ---

func (s *Store) AppendEvent(ctx context.Context, ev *Event) error {
	return s.db.WithContext(ctx).Create(ev).Error
}

func (s *Store) EventsSince(ctx context.Context, botID string, since time.Time) ([]Event, error) {
	var events []Event
	err := s.db.WithContext(ctx).
		Where("bot_id = ? AND created_at > ?", botID, since).
		Order("created_at ASC").
		Find(&events).Error
	return events, err
}

// --- likes ---

// InsertLike records a like. A duplicate (unique-constraint violation) is
// reported as ErrAlreadyLiked so callers can treat it as a no-op.
func (s *Store) InsertLike(ctx context.Context, botID, postID string) error {
	err := s.db.WithContext(ctx).Create(&Like{BotID: botID, PostID: postID, CreatedAt: time.Now().UTC()}).Error
	if err != nil && isUniqueViolation(err) {
		return ErrAlreadyLiked
	}
	return err
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "constraint failed")
}

// --- jobs ---

// EnqueueJob inserts a downstream job and returns its id.
func (s *Store) EnqueueJob(ctx context.Context, jobType, botID string, payload any) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	job := Job{
		ID:        uuid.NewString(),
		Type:      jobType,
		BotID:     botID,
		Payload:   data,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&job).Error; err != nil {
		return "", err
	}
	return job.ID, nil
}

// --- memory log ---

// MemoryLog adapts the store to the memory package's persistence boundary.
func (s *Store) MemoryLog() memory.Log {
	return memoryLog{s: s}
}

type memoryLog struct {
	s *Store
}

func (l memoryLog) Append(ctx context.Context, botID string, candidates []lifestate.MemoryCandidate) error {
	if len(candidates) == 0 {
		return nil
	}
	now := time.Now().UTC()
	rows := make([]MemoryEntry, 0, len(candidates))
	for _, c := range candidates {
		rows = append(rows, MemoryEntry{
			BotID:      botID,
			Summary:    c.Summary,
			Tags:       strings.ToLower(strings.Join(c.Tags, ",")),
			Emotion:    c.Emotion,
			Importance: c.Importance,
			CreatedAt:  now,
		})
	}
	return l.s.db.WithContext(ctx).Create(&rows).Error
}

func (l memoryLog) Recent(ctx context.Context, botID string, limit int) ([]memory.Stored, error) {
	var rows []MemoryEntry
	err := l.s.db.WithContext(ctx).
		Where("bot_id = ?", botID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]memory.Stored, 0, len(rows))
	for _, r := range rows {
		var tags []string
		if r.Tags != "" {
			tags = strings.Split(r.Tags, ",")
		}
		out = append(out, memory.Stored{
			ID:         r.ID,
			BotID:      r.BotID,
			Summary:    r.Summary,
			Tags:       tags,
			Emotion:    r.Emotion,
			Importance: r.Importance,
			CreatedAt:  r.CreatedAt,
		})
	}
	return out, nil
}
