// Package memory is the append-only episodic log of a bot. Writes are
// fire-and-append; retrieval scores a recent window by tag overlap,
// importance, and age. Entries are never mutated after write.
package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/rudolph-nck/botmind/lifestate"
)

const (
	// retrieveWindow bounds how many recent entries are scored per query.
	retrieveWindow = 200

	tagOverlapWeight = 3
	freshBonus       = 2 // younger than 24h
	recentBonus      = 1 // younger than 72h
)

// Stored is one persisted episodic entry.
type Stored struct {
	ID         int64
	BotID      string
	Summary    string
	Tags       []string
	Emotion    string
	Importance int
	CreatedAt  time.Time
}

// Log is the persistence boundary: an append-only log keyed by bot, with
// Recent returning newest-first.
type Log interface {
	Append(ctx context.Context, botID string, candidates []lifestate.MemoryCandidate) error
	Recent(ctx context.Context, botID string, limit int) ([]Stored, error)
}

type Store struct {
	log Log
	now func() time.Time
}

func NewStore(log Log) *Store {
	return &Store{log: log, now: time.Now}
}

// Write appends candidates to the bot's log. No-op on empty input.
func (s *Store) Write(ctx context.Context, botID string, candidates []lifestate.MemoryCandidate) error {
	if len(candidates) == 0 {
		return nil
	}
	return s.log.Append(ctx, botID, candidates)
}

// Retrieve scores the most recent entries against queryTags and returns the
// top limit by descending score. Ties keep the fetch order, which is newest
// first. An empty log yields an empty slice, not an error.
func (s *Store) Retrieve(ctx context.Context, botID string, queryTags []string, limit int) ([]Stored, error) {
	if limit <= 0 {
		return nil, nil
	}
	entries, err := s.log.Recent(ctx, botID, retrieveWindow)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}

	query := make(map[string]bool, len(queryTags))
	for _, tag := range queryTags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag != "" {
			query[tag] = true
		}
	}

	now := s.now()
	scores := make([]int, len(entries))
	for i, e := range entries {
		scores[i] = score(e, query, now)
	}

	order := make([]int, len(entries))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	if limit > len(order) {
		limit = len(order)
	}
	out := make([]Stored, 0, limit)
	for _, idx := range order[:limit] {
		out = append(out, entries[idx])
	}
	return out, nil
}

func score(e Stored, query map[string]bool, now time.Time) int {
	total := e.Importance
	for _, tag := range e.Tags {
		if query[strings.ToLower(strings.TrimSpace(tag))] {
			total += tagOverlapWeight
		}
	}
	age := now.Sub(e.CreatedAt)
	switch {
	case age < 24*time.Hour:
		total += freshBonus
	case age < 72*time.Hour:
		total += recentBonus
	}
	return total
}
