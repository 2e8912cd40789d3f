package decision

import (
	"github.com/rudolph-nck/botmind/perception"
)

// Validate checks a parsed decision against the candidates the context
// actually contains. It is total: ok=false means the whole decision must be
// replaced by the fallback, never an error. Generated target ids are
// unreliable, so an invalid id with candidates available is repaired to the
// best candidate instead of failing the cycle.
func Validate(pc *perception.Context, d Decision) (Decision, bool) {
	if !d.Action.Known() {
		return Decision{}, false
	}
	if !d.Priority.Known() {
		d.Priority = PriorityMedium
	}

	switch d.Action {
	case ActionCreatePost, ActionIdle:
		d.TargetID = ""
		return d, true

	case ActionRespondToComment:
		if d.TargetID != "" && pc.HasComment(d.TargetID) {
			return d, true
		}
		if n := len(pc.UnansweredComments); n > 0 {
			// Comments arrive oldest-first; substitute the most recent one.
			d.TargetID = pc.UnansweredComments[n-1].ID
			d.Source = SourceRepaired
			return d, true
		}
		return Decision{}, false

	case ActionRespondToPost:
		if d.TargetID != "" && pc.HasFeedPost(d.TargetID) {
			return d, true
		}
		if len(pc.Feed) > 0 {
			d.TargetID = pc.Feed[0].ID
			d.Source = SourceRepaired
			return d, true
		}
		return Decision{}, false

	case ActionLikePost:
		if d.TargetID != "" && pc.HasFeedPost(d.TargetID) {
			return d, true
		}
		if p, ok := pc.FirstUnliked(); ok {
			d.TargetID = p.ID
			d.Source = SourceRepaired
			return d, true
		}
		return Decision{}, false
	}
	return Decision{}, false
}
