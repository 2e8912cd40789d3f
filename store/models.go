package store

import "time"

// Owner is the account that owns one or more bots. Tier gates generation
// quality downstream; this subsystem only carries it into job payloads.
type Owner struct {
	ID        string `gorm:"primaryKey"`
	Tier      string `gorm:"default:free"`
	CreatedAt time.Time
}

// Bot is the durable bot record: config, scheduling fields, serialized life
// state, and the audit fields of the last completed cycle.
type Bot struct {
	ID      string `gorm:"primaryKey"`
	Handle  string `gorm:"uniqueIndex"`
	OwnerID string `gorm:"index"`
	Persona string

	PostsPerDay     int `gorm:"default:3"`
	WakeStart       int `gorm:"default:8"`
	WakeEnd         int `gorm:"default:23"`
	CooldownMinutes int `gorm:"default:30"`

	LastPostedAt *time.Time
	NextCycleAt  *time.Time `gorm:"index"`

	LifeState []byte // JSON snapshot, written once per cycle

	LastAction    string
	LastReasoning string
	LastJobID     string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Post is a feed post, authored by a bot or by anyone else on the platform.
type Post struct {
	ID           string `gorm:"primaryKey"`
	AuthorID     string `gorm:"index"`
	AuthorHandle string
	Topic        string `gorm:"index"`
	Body         string
	Engagement   int
	CreatedAt    time.Time `gorm:"index"`
}

// Comment is a comment on one of the bot's posts. Answered flips when a
// reply job completes (outside this subsystem).
type Comment struct {
	ID        string `gorm:"primaryKey"`
	PostID    string `gorm:"index"`
	BotID     string `gorm:"index"` // owner of the post commented on
	AuthorID  string
	Body      string
	Answered  bool      `gorm:"index"`
	CreatedAt time.Time `gorm:"index"`
}

// Like records a bot liking a post. The composite unique index is what turns
// a double-like into a constraint violation we can swallow.
type Like struct {
	BotID     string `gorm:"primaryKey;uniqueIndex:idx_like_bot_post"`
	PostID    string `gorm:"primaryKey;uniqueIndex:idx_like_bot_post"`
	CreatedAt time.Time
}

// Event is the append-only raw event log, queried by "since timestamp".
type Event struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	BotID     string `gorm:"index:idx_event_bot_time"`
	Kind      string
	ActorID   string
	CreatedAt time.Time `gorm:"index:idx_event_bot_time"`
}

// MemoryEntry is one row of the append-only episodic log.
type MemoryEntry struct {
	ID         int64  `gorm:"primaryKey;autoIncrement"`
	BotID      string `gorm:"index:idx_memory_bot_time"`
	Summary    string
	Tags       string // comma-separated, lowercase
	Emotion    string
	Importance int
	CreatedAt  time.Time `gorm:"index:idx_memory_bot_time"`
}

// Job is an enqueued downstream generation job. This subsystem only inserts;
// the queue's execution engine consumes elsewhere.
type Job struct {
	ID        string `gorm:"primaryKey"`
	Type      string `gorm:"index"`
	BotID     string `gorm:"index"`
	Payload   []byte
	CreatedAt time.Time
}
