// Package lifestate models the deterministic simulated psychological state of
// a bot: bounded needs, affect, beliefs, and per-actor relationships. The
// engine is a pure function over value-semantic snapshots; nothing in this
// package performs I/O.
package lifestate

import "time"

// Needs are bounded 0..100. They drift, get pushed by events, and bias
// decisions downstream.
type Needs struct {
	Connection float64 `json:"connection"`
	Competence float64 `json:"competence"`
	Rest       float64 `json:"rest"`
	Novelty    float64 `json:"novelty"`
	Status     float64 `json:"status"`
	Purpose    float64 `json:"purpose"`
}

// Affect is the current emotional surface. Mood is -1..1; Intensity and
// Arousal are 0..1. Emotion is one of the Emotion* constants.
type Affect struct {
	Mood      float64 `json:"mood"`
	Emotion   string  `json:"emotion"`
	Intensity float64 `json:"intensity"`
	Arousal   float64 `json:"arousal"`
}

const (
	EmotionDrained   = "drained"
	EmotionLonely    = "lonely"
	EmotionCurious   = "curious"
	EmotionIrritated = "irritated"
	EmotionContent   = "content"
	EmotionSubdued   = "subdued"
	EmotionCalm      = "calm"
)

// Belief tracks per-topic salience and confidence, both 0..1.
type Belief struct {
	Salience   float64 `json:"salience"`
	Confidence float64 `json:"confidence"`
}

// Relationship tracks one actor, all scalars 0..1.
type Relationship struct {
	Closeness float64   `json:"closeness"`
	Trust     float64   `json:"trust"`
	Friction  float64   `json:"friction"`
	LastSeen  time.Time `json:"last_seen"`
}

// Timekeeping is the engine's bookkeeping block.
type Timekeeping struct {
	LastCycleAt  time.Time `json:"last_cycle_at"`
	LastPostAt   time.Time `json:"last_post_at"`
	LastSocialAt time.Time `json:"last_social_at"`
	PostsToday   int       `json:"posts_today"`
}

// State is one bot's durable life state. Treated as a value: Advance copies
// it (maps included) and returns a new snapshot; persistence is the only
// place mutation becomes visible.
type State struct {
	Needs   Needs                   `json:"needs"`
	Affect  Affect                  `json:"affect"`
	Beliefs map[string]Belief       `json:"beliefs"`
	Social  map[string]Relationship `json:"social"`
	Time    Timekeeping             `json:"time"`
}

// DefaultState is the state a bot starts with at creation.
func DefaultState() State {
	return State{
		Needs: Needs{
			Connection: 50,
			Competence: 50,
			Rest:       80,
			Novelty:    50,
			Status:     40,
			Purpose:    50,
		},
		Affect: Affect{
			Mood:      0,
			Emotion:   EmotionCalm,
			Intensity: 0.3,
			Arousal:   0.3,
		},
		Beliefs: map[string]Belief{},
		Social:  map[string]Relationship{},
	}
}

func (s State) clone() State {
	out := s
	out.Beliefs = make(map[string]Belief, len(s.Beliefs))
	for k, v := range s.Beliefs {
		out.Beliefs[k] = v
	}
	out.Social = make(map[string]Relationship, len(s.Social))
	for k, v := range s.Social {
		out.Social[k] = v
	}
	return out
}

// MemoryCandidate is a side artifact of a state transition: a short episodic
// note the bot should remember. Importance is 1..5.
type MemoryCandidate struct {
	Summary    string   `json:"summary"`
	Tags       []string `json:"tags"`
	Emotion    string   `json:"emotion"`
	Importance int      `json:"importance"`
}

type EventKind string

const (
	EventCommentReceived EventKind = "comment_received"
	EventReplyPublished  EventKind = "reply_published"
	EventPostPublished   EventKind = "post_published"
)

// Event is one raw platform event since the last cycle, already reduced to
// the kinds the engine reacts to.
type Event struct {
	Kind    EventKind `json:"kind"`
	ActorID string    `json:"actor_id,omitempty"`
	At      time.Time `json:"at"`
}

// Signals bundles everything one transition needs. Fully derived by the
// perception layer; the engine never fetches anything itself.
type Signals struct {
	Now             time.Time
	Events          []Event
	UnansweredCount int
	SincePost       SincePost
	PostedTwiceIn2h bool
	TrendingTopics  []string
	AvgEngagement   float64
	PostsToday      int
	Assertiveness   float64 // personality trait, 0 when no brain is attached
}
