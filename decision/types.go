// Package decision turns a perception snapshot into a validated action. The
// generated path (prompt → parse → validate/repair) degrades to a
// deterministic rule ladder on any failure; the engine never returns an
// error to its caller.
package decision

// Action is the tagged choice a cycle resolves to.
type Action string

const (
	ActionCreatePost       Action = "CREATE_POST"
	ActionRespondToComment Action = "RESPOND_TO_COMMENT"
	ActionRespondToPost    Action = "RESPOND_TO_POST"
	ActionLikePost         Action = "LIKE_POST"
	ActionIdle             Action = "IDLE"
)

// Known reports whether a is one of the five recognized actions.
func (a Action) Known() bool {
	switch a {
	case ActionCreatePost, ActionRespondToComment, ActionRespondToPost, ActionLikePost, ActionIdle:
		return true
	}
	return false
}

// NeedsTarget reports whether a refers to an existing comment or post.
func (a Action) NeedsTarget() bool {
	switch a {
	case ActionRespondToComment, ActionRespondToPost, ActionLikePost:
		return true
	}
	return false
}

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

func (p Priority) Known() bool {
	return p == PriorityHigh || p == PriorityMedium || p == PriorityLow
}

// Source records which path produced a decision, for audit logs only.
type Source string

const (
	SourceModel    Source = "model"
	SourceRepaired Source = "repaired"
	SourceFallback Source = "fallback"
)

// Decision is the validated outcome of one cycle. TargetID is set exactly
// when Action.NeedsTarget(); ContextHint is optional free text carried into
// the downstream generation job.
type Decision struct {
	Action      Action
	Priority    Priority
	Reasoning   string
	TargetID    string
	ContextHint string
	Source      Source
}
