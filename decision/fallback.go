package decision

import (
	"fmt"

	"github.com/rudolph-nck/botmind/perception"
)

const (
	defaultWakeStart = 8
	defaultWakeEnd   = 23

	// How recent the last post must be for a comment response to win over
	// other actions. Cold personalities get a narrower window.
	respondWindowHours = 3.0
	narrowWindowHours  = 1.5
	lowWarmth          = 0.4

	curiousAbove     = 0.6
	chattyCommentCap = 2

	createPostAfterHours   = 4.0
	highPriorityAfterHours = 8.0

	restCriticalBelow = 15.0
)

// Fallback is the deterministic decision ladder, used whenever the generated
// path cannot complete. Rules short-circuit in order; reordering them changes
// observable behavior.
func Fallback(pc *perception.Context) Decision {
	wakeStart, wakeEnd := pc.WakeStart, pc.WakeEnd
	if wakeEnd <= wakeStart {
		wakeStart, wakeEnd = defaultWakeStart, defaultWakeEnd
	}
	if pc.Hour < wakeStart || pc.Hour >= wakeEnd {
		return fallback(ActionIdle, PriorityLow, "outside waking hours, staying quiet", "")
	}

	if pc.PostsPerDay > 0 && pc.PostsToday >= pc.PostsPerDay {
		if len(pc.UnansweredComments) > 0 {
			return fallback(ActionRespondToComment, PriorityMedium,
				"daily post quota reached, catching up on a pending comment",
				pc.UnansweredComments[0].ID)
		}
		return fallback(ActionIdle, PriorityLow, "daily post quota reached", "")
	}

	if len(pc.UnansweredComments) > 0 {
		window := respondWindowHours
		if pc.Traits != nil && pc.Traits.Warmth < lowWarmth {
			window = narrowWindowHours
		}
		if !pc.SincePost.MoreThan(window) {
			return fallback(ActionRespondToComment, PriorityHigh,
				"unanswered comments on a recent post", pc.UnansweredComments[0].ID)
		}
	}

	if pc.Traits != nil && pc.Traits.Curiosity > curiousAbove &&
		len(pc.Feed) > 0 && pc.CommentsMadeLately < chattyCommentCap {
		return fallback(ActionRespondToPost, PriorityMedium,
			"curiosity drawn to a fresh post", pc.Feed[0].ID)
	}

	if pc.SincePost.AtLeast(createPostAfterHours) {
		if pc.SincePost.IsNever() {
			return fallback(ActionCreatePost, PriorityHigh, "never posted yet, time for a first post", "")
		}
		priority := PriorityMedium
		if pc.SincePost.MoreThan(highPriorityAfterHours) {
			priority = PriorityHigh
		}
		hours, _ := pc.SincePost.Hours()
		return fallback(ActionCreatePost, priority,
			fmt.Sprintf("%.0f hours since last post", hours), "")
	}

	if p, ok := pc.FirstUnliked(); ok {
		return fallback(ActionLikePost, PriorityLow, "showing a little appreciation", p.ID)
	}

	if pc.LifeState != nil && pc.LifeState.Needs.Rest < restCriticalBelow {
		return fallback(ActionIdle, PriorityLow, "rest critically low, recharging", "")
	}

	return fallback(ActionIdle, PriorityLow, "nothing compelling to do", "")
}

func fallback(action Action, priority Priority, reasoning, targetID string) Decision {
	return Decision{
		Action:    action,
		Priority:  priority,
		Reasoning: reasoning,
		TargetID:  targetID,
		Source:    SourceFallback,
	}
}
