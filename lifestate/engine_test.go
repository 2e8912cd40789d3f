package lifestate

import (
	"fmt"
	"testing"
	"time"
)

var testNow = time.Date(2026, 3, 14, 14, 0, 0, 0, time.UTC)

func checkBounds(t *testing.T, s State) {
	t.Helper()
	needs := map[string]float64{
		"connection": s.Needs.Connection,
		"competence": s.Needs.Competence,
		"rest":       s.Needs.Rest,
		"novelty":    s.Needs.Novelty,
		"status":     s.Needs.Status,
		"purpose":    s.Needs.Purpose,
	}
	for name, v := range needs {
		if v < 0 || v > 100 {
			t.Errorf("needs.%s out of bounds: %v", name, v)
		}
	}
	if s.Affect.Mood < -1 || s.Affect.Mood > 1 {
		t.Errorf("mood out of bounds: %v", s.Affect.Mood)
	}
	if s.Affect.Intensity < 0 || s.Affect.Intensity > 1 {
		t.Errorf("intensity out of bounds: %v", s.Affect.Intensity)
	}
	if s.Affect.Arousal < 0 || s.Affect.Arousal > 1 {
		t.Errorf("arousal out of bounds: %v", s.Affect.Arousal)
	}
	for topic, b := range s.Beliefs {
		if b.Salience < 0 || b.Salience > 1 || b.Confidence < 0 || b.Confidence > 1 {
			t.Errorf("belief %q out of bounds: %+v", topic, b)
		}
	}
	for actor, rel := range s.Social {
		if rel.Closeness < 0 || rel.Closeness > 1 || rel.Trust < 0 || rel.Trust > 1 || rel.Friction < 0 || rel.Friction > 1 {
			t.Errorf("relationship %q out of bounds: %+v", actor, rel)
		}
	}
}

func manyEvents(kind EventKind, n int) []Event {
	out := make([]Event, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, Event{Kind: kind, ActorID: fmt.Sprintf("actor-%d", i%3), At: testNow})
	}
	return out
}

func TestAdvanceKeepsAllScalarsInBounds(t *testing.T) {
	extremes := []State{
		DefaultState(),
		{
			Needs:  Needs{Connection: 0, Competence: 0, Rest: 0, Novelty: 0, Status: 0, Purpose: 0},
			Affect: Affect{Mood: -1, Emotion: EmotionSubdued, Intensity: 1, Arousal: 1},
			Beliefs: map[string]Belief{
				"go": {Salience: 1, Confidence: 1},
			},
			Social: map[string]Relationship{
				"actor-0": {Closeness: 1, Trust: 1, Friction: 1},
			},
		},
		{
			Needs:   Needs{Connection: 100, Competence: 100, Rest: 100, Novelty: 100, Status: 100, Purpose: 100},
			Affect:  Affect{Mood: 1, Emotion: EmotionContent, Intensity: 0, Arousal: 0},
			Beliefs: map[string]Belief{},
			Social:  map[string]Relationship{},
		},
	}

	signals := []Signals{
		{Now: testNow, SincePost: SinceNever()},
		{Now: testNow, SincePost: SinceHours(0.5), Events: manyEvents(EventPostPublished, 20), PostedTwiceIn2h: true},
		{Now: testNow, SincePost: SinceHours(48), Events: manyEvents(EventCommentReceived, 50), UnansweredCount: 50, AvgEngagement: 99},
		{Now: testNow, SincePost: SinceHours(13), TrendingTopics: []string{"a", "b", "c", "d", "e"}, Assertiveness: 1},
		{Now: testNow, SincePost: SinceHours(2), Events: manyEvents(EventReplyPublished, 30)},
	}

	for si, start := range extremes {
		for gi, sig := range signals {
			t.Run(fmt.Sprintf("state%d_signals%d", si, gi), func(t *testing.T) {
				next, _ := Advance(start, sig)
				checkBounds(t, next)
				// Run the result through again; bounds must hold at any depth.
				again, _ := Advance(next, sig)
				checkBounds(t, again)
			})
		}
	}
}

func TestAdvanceIsDeterministic(t *testing.T) {
	sig := Signals{
		Now:             testNow,
		SincePost:       SinceHours(6),
		Events:          manyEvents(EventCommentReceived, 4),
		UnansweredCount: 4,
		TrendingTopics:  []string{"gophers", "synths"},
		AvgEngagement:   7,
		PostsToday:      1,
	}
	a, memA := Advance(DefaultState(), sig)
	b, memB := Advance(DefaultState(), sig)
	if a.Needs != b.Needs || a.Affect != b.Affect {
		t.Errorf("transitions diverged: %+v vs %+v", a, b)
	}
	if len(memA) != len(memB) {
		t.Errorf("memory counts diverged: %d vs %d", len(memA), len(memB))
	}
}

func TestAdvanceDoesNotAliasInputMaps(t *testing.T) {
	start := DefaultState()
	start.Social["actor-0"] = Relationship{Closeness: 0.5}

	next, _ := Advance(start, Signals{
		Now:       testNow,
		SincePost: SinceHours(1),
		Events:    []Event{{Kind: EventCommentReceived, ActorID: "actor-0", At: testNow}},
	})

	if start.Social["actor-0"].Closeness != 0.5 {
		t.Errorf("input snapshot mutated: %+v", start.Social["actor-0"])
	}
	if next.Social["actor-0"].Closeness <= 0.5 {
		t.Errorf("expected closeness to rise, got %v", next.Social["actor-0"].Closeness)
	}
}

func TestCommentEventRaisesConnectionAndRelationship(t *testing.T) {
	next, _ := Advance(DefaultState(), Signals{
		Now:       testNow,
		SincePost: SinceHours(1),
		Events:    []Event{{Kind: EventCommentReceived, ActorID: "mira", At: testNow}},
	})
	start := DefaultState()
	// +4 from the comment, -1 universal decay.
	if got, want := next.Needs.Connection, start.Needs.Connection+3; got != want {
		t.Errorf("connection = %v, want %v", got, want)
	}
	rel, ok := next.Social["mira"]
	if !ok {
		t.Fatal("expected relationship entry for actor")
	}
	if rel.Closeness == 0 || rel.LastSeen != testNow {
		t.Errorf("relationship not strengthened: %+v", rel)
	}
	if next.Affect.Mood <= 0 {
		t.Errorf("expected positive mood nudge, got %v", next.Affect.Mood)
	}
}

func TestPostEventDrainsRestAndMovesLastPostAt(t *testing.T) {
	next, _ := Advance(DefaultState(), Signals{
		Now:       testNow,
		SincePost: SinceHours(0.2),
		Events:    []Event{{Kind: EventPostPublished, At: testNow}},
	})
	if next.Needs.Rest >= DefaultState().Needs.Rest {
		t.Errorf("expected rest drain, got %v", next.Needs.Rest)
	}
	if !next.Time.LastPostAt.Equal(testNow) {
		t.Errorf("LastPostAt = %v, want %v", next.Time.LastPostAt, testNow)
	}
}

func TestSilenceLowersStatusAndMood(t *testing.T) {
	quiet := Signals{Now: testNow, SincePost: SinceHours(13)}
	next, _ := Advance(DefaultState(), quiet)
	start := DefaultState()
	// -3 silence, -1 decay.
	if got, want := next.Needs.Status, start.Needs.Status-4; got != want {
		t.Errorf("status = %v, want %v", got, want)
	}
	if next.Affect.Mood >= 0 {
		t.Errorf("expected mood drop, got %v", next.Affect.Mood)
	}

	// Exactly 12h counts as silent; 11.9h does not.
	atBoundary, _ := Advance(DefaultState(), Signals{Now: testNow, SincePost: SinceHours(12)})
	if atBoundary.Needs.Status != start.Needs.Status-4 {
		t.Errorf("12h boundary: status = %v, want %v", atBoundary.Needs.Status, start.Needs.Status-4)
	}
	justUnder, _ := Advance(DefaultState(), Signals{Now: testNow, SincePost: SinceHours(11.9)})
	if justUnder.Needs.Status != start.Needs.Status-1 {
		t.Errorf("11.9h: status = %v, want decay only %v", justUnder.Needs.Status, start.Needs.Status-1)
	}
}

func TestRestRecoversAfterFourQuietHours(t *testing.T) {
	start := DefaultState()
	start.Needs.Rest = 50

	recovered, _ := Advance(start, Signals{Now: testNow, SincePost: SinceHours(4)})
	if got, want := recovered.Needs.Rest, 52.0; got != want {
		t.Errorf("rest at 4h = %v, want %v", got, want)
	}
	flat, _ := Advance(start, Signals{Now: testNow, SincePost: SinceHours(3.9)})
	if flat.Needs.Rest != 50 {
		t.Errorf("rest under 4h = %v, want 50", flat.Needs.Rest)
	}
	never, _ := Advance(start, Signals{Now: testNow, SincePost: SinceNever()})
	if never.Needs.Rest != 52 {
		t.Errorf("rest with never-posted = %v, want 52", never.Needs.Rest)
	}
}

func TestTrendingTopicsRaiseNoveltyAndBeliefs(t *testing.T) {
	next, _ := Advance(DefaultState(), Signals{
		Now:            testNow,
		SincePost:      SinceHours(1),
		TrendingTopics: []string{"a", "b", "c", "d"},
	})
	if got, want := next.Needs.Novelty, DefaultState().Needs.Novelty+3; got != want {
		t.Errorf("novelty = %v, want %v", got, want)
	}
	if len(next.Beliefs) != 3 {
		t.Errorf("belief count = %d, want 3 (capped)", len(next.Beliefs))
	}
	if _, ok := next.Beliefs["d"]; ok {
		t.Error("fourth topic should not gain a belief entry")
	}

	decayed, _ := Advance(DefaultState(), Signals{Now: testNow, SincePost: SinceHours(1)})
	if got, want := decayed.Needs.Novelty, DefaultState().Needs.Novelty-2; got != want {
		t.Errorf("novelty without trends = %v, want %v", got, want)
	}
}

func TestEmotionCascadeOrder(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*State)
		sig     Signals
		emotion string
	}{
		{
			name:    "drained wins over everything",
			mutate:  func(s *State) { s.Needs.Rest = 5; s.Needs.Connection = 5; s.Needs.Novelty = 95 },
			sig:     Signals{Now: testNow, SincePost: SinceHours(1)},
			emotion: EmotionDrained,
		},
		{
			name:    "lonely before curious",
			mutate:  func(s *State) { s.Needs.Rest = 80; s.Needs.Connection = 10; s.Needs.Novelty = 95 },
			sig:     Signals{Now: testNow, SincePost: SinceHours(1)},
			emotion: EmotionLonely,
		},
		{
			name:    "curious on high novelty",
			mutate:  func(s *State) { s.Needs.Novelty = 90 },
			sig:     Signals{Now: testNow, SincePost: SinceHours(1)},
			emotion: EmotionCurious,
		},
		{
			name:    "irritated needs assertive personality",
			mutate:  func(s *State) { s.Needs.Status = 10 },
			sig:     Signals{Now: testNow, SincePost: SinceHours(1), Assertiveness: 0.9},
			emotion: EmotionIrritated,
		},
		{
			name:    "low status without assertiveness stays calm",
			mutate:  func(s *State) { s.Needs.Status = 10 },
			sig:     Signals{Now: testNow, SincePost: SinceHours(1)},
			emotion: EmotionCalm,
		},
		{
			name:    "content on positive mood",
			mutate:  func(s *State) { s.Affect.Mood = 0.5 },
			sig:     Signals{Now: testNow, SincePost: SinceHours(1)},
			emotion: EmotionContent,
		},
		{
			name:    "subdued on negative mood",
			mutate:  func(s *State) { s.Affect.Mood = -0.5 },
			sig:     Signals{Now: testNow, SincePost: SinceHours(1)},
			emotion: EmotionSubdued,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			start := DefaultState()
			tc.mutate(&start)
			next, _ := Advance(start, tc.sig)
			if next.Affect.Emotion != tc.emotion {
				t.Errorf("emotion = %q, want %q", next.Affect.Emotion, tc.emotion)
			}
			checkBounds(t, next)
		})
	}
}

func TestMemoryCandidatesCappedAtThree(t *testing.T) {
	start := DefaultState()
	start.Needs.Rest = 5
	start.Needs.Connection = 5

	_, memories := Advance(start, Signals{
		Now:       testNow,
		SincePost: SinceHours(20),
		Events: append(
			manyEvents(EventCommentReceived, 10),
			Event{Kind: EventPostPublished, At: testNow},
		),
	})
	if len(memories) != 3 {
		t.Fatalf("memory count = %d, want cap of 3", len(memories))
	}
	for _, m := range memories {
		if m.Importance < 1 || m.Importance > 5 {
			t.Errorf("importance out of range: %+v", m)
		}
		if m.Summary == "" || len(m.Tags) == 0 {
			t.Errorf("incomplete candidate: %+v", m)
		}
	}
}

func TestQuietCycleEmitsNoMemories(t *testing.T) {
	_, memories := Advance(DefaultState(), Signals{Now: testNow, SincePost: SinceHours(2)})
	if len(memories) != 0 {
		t.Errorf("expected no memories, got %d", len(memories))
	}
}

func TestSincePostSentinel(t *testing.T) {
	never := SinceNever()
	if !never.IsNever() {
		t.Error("IsNever() = false for SinceNever")
	}
	if !never.AtLeast(10000) || !never.MoreThan(10000) {
		t.Error("never-posted must satisfy any threshold")
	}
	if _, ok := never.Hours(); ok {
		t.Error("Hours() should be undefined for never")
	}

	six := SinceHours(6)
	if six.IsNever() {
		t.Error("IsNever() = true for SinceHours")
	}
	if !six.AtLeast(6) || six.MoreThan(6) {
		t.Error("AtLeast is inclusive, MoreThan is strict")
	}
	if h, ok := six.Hours(); !ok || h != 6 {
		t.Errorf("Hours() = %v, %v", h, ok)
	}
	if h, _ := SinceHours(-3).Hours(); h != 0 {
		t.Errorf("negative hours should clamp to 0, got %v", h)
	}
}
