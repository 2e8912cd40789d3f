// Package perception assembles the per-cycle snapshot the decision engine
// consumes: bot config, social signals, timing, and the optional life-state
// and memory enrichment. A Context is built fresh each cycle and never
// mutated after Build returns.
package perception

import (
	"time"

	"github.com/rudolph-nck/botmind/brain"
	"github.com/rudolph-nck/botmind/lifestate"
	"github.com/rudolph-nck/botmind/memory"
)

// CommentSignal is one unanswered comment on a post the bot authored.
type CommentSignal struct {
	ID        string
	PostID    string
	AuthorID  string
	Body      string
	CreatedAt time.Time
}

// FeedPost is a candidate post by another author, with the bot's like status
// already resolved.
type FeedPost struct {
	ID           string
	AuthorHandle string
	Topic        string
	Body         string
	Engagement   int
	Liked        bool
	CreatedAt    time.Time
}

// Context is everything one decision needs. LifeState, Events, and Memories
// are optional enrichment; a Context without them is still complete.
type Context struct {
	BotID     string
	Handle    string
	OwnerTier string

	Traits          *brain.Traits // nil when no persona is configured
	PostsPerDay     int
	WakeStart       int
	WakeEnd         int
	CooldownMinutes int

	Now        time.Time
	Hour       int
	SincePost  lifestate.SincePost
	PostsToday int

	UnansweredComments []CommentSignal
	Feed               []FeedPost
	TrendingTopics     []string
	CommentsMadeLately int
	AvgEngagement      float64

	LifeState *lifestate.State
	Events    []lifestate.Event
	Memories  []memory.Stored
}

// FirstUnliked returns the first feed post the bot has not liked yet.
func (c *Context) FirstUnliked() (FeedPost, bool) {
	for _, p := range c.Feed {
		if !p.Liked {
			return p, true
		}
	}
	return FeedPost{}, false
}

// HasComment reports whether id names one of the unanswered comments.
func (c *Context) HasComment(id string) bool {
	for _, cm := range c.UnansweredComments {
		if cm.ID == id {
			return true
		}
	}
	return false
}

// HasFeedPost reports whether id names one of the candidate feed posts.
func (c *Context) HasFeedPost(id string) bool {
	for _, p := range c.Feed {
		if p.ID == id {
			return true
		}
	}
	return false
}
