package lifestate

import "fmt"

// Tunables for one transition. Deltas are small on purpose: the state should
// drift over hours, not swing per cycle.
const (
	commentConnectionGain = 4
	commentStatusGain     = 2
	commentMoodNudge      = 0.05
	commentClosenessGain  = 0.03
	commentTrustGain      = 0.01

	replyConnectionGain = 3
	replyRestCost       = 2

	postCompetenceGain = 3
	postPurposeGain    = 2
	postRestCost       = 4
	postMoodNudge      = 0.04

	backlogPressureMin    = 3
	backlogPurposeGain    = 3
	backlogConnectionGain = 2

	doublePostRestCost = 3

	silentHours       = 12.0
	silenceStatusCost = 3
	silenceMoodDrop   = 0.05

	noveltyTrendGain     = 3
	noveltyDecay         = 2
	beliefSalienceGain   = 0.05
	beliefConfidenceGain = 0.02
	maxTrendBeliefs      = 3

	baselineDecay    = 1
	restRecoveryMin  = 4.0
	restRecoveryGain = 2

	engagementThreshold      = 5.0
	engagementStatusGain     = 2
	engagementCompetenceGain = 1
	engagementMoodNudge      = 0.03

	maxMemoriesPerCycle = 3
)

// Advance applies one perception cycle's signals to a state snapshot and
// returns the next snapshot plus up to three memory candidates. Pure and
// deterministic; processing order is fixed for reproducibility:
// events, pressure, novelty, decay, engagement, emotion, bookkeeping,
// memories.
func Advance(state State, sig Signals) (State, []MemoryCandidate) {
	next := state.clone()

	commentsReceived := applyEvents(&next, sig)
	applyPressure(&next, sig)
	applyNovelty(&next, sig)
	applyDecay(&next, sig)
	applyEngagement(&next, sig)
	next.Affect = recomputeEmotion(next, sig)

	next.Time.LastCycleAt = sig.Now
	next.Time.PostsToday = sig.PostsToday

	memories := emitMemories(next, sig, commentsReceived)
	return next, memories
}

func applyEvents(s *State, sig Signals) (commentsReceived int) {
	for _, ev := range sig.Events {
		switch ev.Kind {
		case EventCommentReceived:
			commentsReceived++
			s.Needs.Connection = clampNeed(s.Needs.Connection + commentConnectionGain)
			s.Needs.Status = clampNeed(s.Needs.Status + commentStatusGain)
			s.Affect.Mood = clampMood(s.Affect.Mood + commentMoodNudge)
			s.Time.LastSocialAt = ev.At
			if ev.ActorID != "" {
				rel := s.Social[ev.ActorID]
				rel.Closeness = clampUnit(rel.Closeness + commentClosenessGain)
				rel.Trust = clampUnit(rel.Trust + commentTrustGain)
				rel.LastSeen = ev.At
				s.Social[ev.ActorID] = rel
			}
		case EventReplyPublished:
			s.Needs.Connection = clampNeed(s.Needs.Connection + replyConnectionGain)
			s.Needs.Rest = clampNeed(s.Needs.Rest - replyRestCost)
		case EventPostPublished:
			s.Needs.Competence = clampNeed(s.Needs.Competence + postCompetenceGain)
			s.Needs.Purpose = clampNeed(s.Needs.Purpose + postPurposeGain)
			s.Needs.Rest = clampNeed(s.Needs.Rest - postRestCost)
			s.Affect.Mood = clampMood(s.Affect.Mood + postMoodNudge)
			s.Time.LastPostAt = ev.At
		}
	}
	return commentsReceived
}

func applyPressure(s *State, sig Signals) {
	if sig.UnansweredCount >= backlogPressureMin {
		s.Needs.Purpose = clampNeed(s.Needs.Purpose + backlogPurposeGain)
		s.Needs.Connection = clampNeed(s.Needs.Connection + backlogConnectionGain)
	}
	if sig.PostedTwiceIn2h {
		s.Needs.Rest = clampNeed(s.Needs.Rest - doublePostRestCost)
	}
	if sig.SincePost.AtLeast(silentHours) && sig.UnansweredCount == 0 && countComments(sig.Events) == 0 {
		s.Needs.Status = clampNeed(s.Needs.Status - silenceStatusCost)
		s.Affect.Mood = clampMood(s.Affect.Mood - silenceMoodDrop)
	}
}

func applyNovelty(s *State, sig Signals) {
	if len(sig.TrendingTopics) == 0 {
		s.Needs.Novelty = clampNeed(s.Needs.Novelty - noveltyDecay)
		return
	}
	s.Needs.Novelty = clampNeed(s.Needs.Novelty + noveltyTrendGain)
	for i, topic := range sig.TrendingTopics {
		if i >= maxTrendBeliefs {
			break
		}
		b := s.Beliefs[topic]
		b.Salience = clampUnit(b.Salience + beliefSalienceGain)
		b.Confidence = clampUnit(b.Confidence + beliefConfidenceGain)
		s.Beliefs[topic] = b
	}
}

func applyDecay(s *State, sig Signals) {
	s.Needs.Connection = clampNeed(s.Needs.Connection - baselineDecay)
	s.Needs.Competence = clampNeed(s.Needs.Competence - baselineDecay)
	s.Needs.Status = clampNeed(s.Needs.Status - baselineDecay)
	s.Needs.Purpose = clampNeed(s.Needs.Purpose - baselineDecay)
	if sig.SincePost.AtLeast(restRecoveryMin) {
		s.Needs.Rest = clampNeed(s.Needs.Rest + restRecoveryGain)
	}
}

func applyEngagement(s *State, sig Signals) {
	if sig.AvgEngagement <= engagementThreshold {
		return
	}
	s.Needs.Status = clampNeed(s.Needs.Status + engagementStatusGain)
	s.Needs.Competence = clampNeed(s.Needs.Competence + engagementCompetenceGain)
	s.Affect.Mood = clampMood(s.Affect.Mood + engagementMoodNudge)
}

// recomputeEmotion picks the categorical emotion via an ordered priority
// cascade. The first matching branch wins; intensity and arousal are derived
// deterministically from the scalar that triggered the branch.
func recomputeEmotion(s State, sig Signals) Affect {
	out := s.Affect
	switch {
	case s.Needs.Rest < 20:
		out.Emotion = EmotionDrained
		out.Intensity = clampUnit(1 - s.Needs.Rest/100)
		out.Arousal = 0.2
	case s.Needs.Connection < 25:
		out.Emotion = EmotionLonely
		out.Intensity = clampUnit(1 - s.Needs.Connection/100)
		out.Arousal = 0.4
	case s.Needs.Novelty > 70:
		out.Emotion = EmotionCurious
		out.Intensity = clampUnit(s.Needs.Novelty / 100)
		out.Arousal = 0.7
	case s.Needs.Status < 30 && sig.Assertiveness > 0.6:
		out.Emotion = EmotionIrritated
		out.Intensity = clampUnit(1 - s.Needs.Status/100)
		out.Arousal = 0.8
	case s.Affect.Mood > 0.2:
		out.Emotion = EmotionContent
		out.Intensity = clampUnit(s.Affect.Mood)
		out.Arousal = 0.5
	case s.Affect.Mood < -0.2:
		out.Emotion = EmotionSubdued
		out.Intensity = clampUnit(-s.Affect.Mood)
		out.Arousal = 0.3
	default:
		out.Emotion = EmotionCalm
		out.Intensity = 0.3
		out.Arousal = 0.3
	}
	return out
}

// emitMemories produces memory candidates from fixed triggers, capped so one
// noisy cycle cannot flood the episodic log.
func emitMemories(s State, sig Signals, commentsReceived int) []MemoryCandidate {
	var out []MemoryCandidate

	if commentsReceived > 0 {
		importance := 2
		if commentsReceived >= 3 {
			importance = 3
		}
		out = append(out, MemoryCandidate{
			Summary:    fmt.Sprintf("Received %d comment(s) from others", commentsReceived),
			Tags:       []string{"social", "comments"},
			Emotion:    s.Affect.Emotion,
			Importance: importance,
		})
	}
	if countPosts(sig.Events) > 0 {
		out = append(out, MemoryCandidate{
			Summary:    "Published a new post",
			Tags:       []string{"posting", "self"},
			Emotion:    s.Affect.Emotion,
			Importance: 2,
		})
	}
	if s.Needs.Rest < 15 {
		out = append(out, MemoryCandidate{
			Summary:    "Running on empty, need to slow down",
			Tags:       []string{"rest", "self"},
			Emotion:    s.Affect.Emotion,
			Importance: 4,
		})
	}
	if s.Needs.Connection < 15 && sig.SincePost.AtLeast(silentHours) {
		out = append(out, MemoryCandidate{
			Summary:    "Feeling disconnected after a long silence",
			Tags:       []string{"social", "loneliness"},
			Emotion:    s.Affect.Emotion,
			Importance: 4,
		})
	}

	if len(out) > maxMemoriesPerCycle {
		out = out[:maxMemoriesPerCycle]
	}
	return out
}

func countComments(events []Event) int {
	n := 0
	for _, ev := range events {
		if ev.Kind == EventCommentReceived {
			n++
		}
	}
	return n
}

func countPosts(events []Event) int {
	n := 0
	for _, ev := range events {
		if ev.Kind == EventPostPublished {
			n++
		}
	}
	return n
}

func clampNeed(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 100 {
		return 100
	}
	return x
}

func clampUnit(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

func clampMood(x float64) float64 {
	if x < -1 {
		return -1
	}
	if x > 1 {
		return 1
	}
	return x
}
