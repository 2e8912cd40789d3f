package decision

import (
	"testing"

	"github.com/rudolph-nck/botmind/perception"
)

func TestValidateUnknownAction(t *testing.T) {
	pc := baseContext()
	_, ok := Validate(pc, Decision{Action: "DANCE", Priority: PriorityMedium})
	if ok {
		t.Error("unknown action must fail validation")
	}
}

func TestValidateStripsTargetFromUntargetedActions(t *testing.T) {
	pc := baseContext()
	d, ok := Validate(pc, Decision{Action: ActionCreatePost, Priority: PriorityHigh, TargetID: "hallucinated"})
	if !ok || d.TargetID != "" {
		t.Errorf("got ok=%v target=%q", ok, d.TargetID)
	}
}

func TestValidateAcceptsRealTargets(t *testing.T) {
	pc := withComments(baseContext(), "c1", "c2")
	pc.Feed = []perception.FeedPost{{ID: "p1"}}

	d, ok := Validate(pc, Decision{Action: ActionRespondToComment, Priority: PriorityHigh, TargetID: "c1"})
	if !ok || d.TargetID != "c1" || d.Source == SourceRepaired {
		t.Errorf("valid comment target mangled: %+v ok=%v", d, ok)
	}
	d, ok = Validate(pc, Decision{Action: ActionLikePost, Priority: PriorityLow, TargetID: "p1"})
	if !ok || d.TargetID != "p1" {
		t.Errorf("valid post target mangled: %+v ok=%v", d, ok)
	}
}

func TestValidateRepairsHallucinatedTargets(t *testing.T) {
	pc := withComments(baseContext(), "c-old", "c-new")
	pc.Feed = []perception.FeedPost{
		{ID: "p-top", Liked: true},
		{ID: "p-unliked"},
	}

	tests := []struct {
		name   string
		in     Decision
		target string
	}{
		{"comment repaired to most recent", Decision{Action: ActionRespondToComment, Priority: PriorityHigh, TargetID: "ghost"}, "c-new"},
		{"post repaired to top of feed", Decision{Action: ActionRespondToPost, Priority: PriorityMedium, TargetID: "ghost"}, "p-top"},
		{"like repaired to first unliked", Decision{Action: ActionLikePost, Priority: PriorityLow, TargetID: "ghost"}, "p-unliked"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, ok := Validate(pc, tt.in)
			if !ok {
				t.Fatal("expected repair, got rejection")
			}
			if d.TargetID != tt.target {
				t.Errorf("target = %s, want %s", d.TargetID, tt.target)
			}
			if d.Source != SourceRepaired {
				t.Errorf("source = %s, want repaired", d.Source)
			}
		})
	}
}

func TestValidateRejectsWhenNoCandidates(t *testing.T) {
	pc := baseContext() // no comments, no feed
	for _, action := range []Action{ActionRespondToComment, ActionRespondToPost, ActionLikePost} {
		_, ok := Validate(pc, Decision{Action: action, Priority: PriorityMedium, TargetID: "ghost"})
		if ok {
			t.Errorf("%s with no candidates should be rejected", action)
		}
	}
}

func TestValidateNormalizesBadPriority(t *testing.T) {
	pc := baseContext()
	d, ok := Validate(pc, Decision{Action: ActionIdle, Priority: "urgent"})
	if !ok || d.Priority != PriorityMedium {
		t.Errorf("got %s ok=%v, want medium priority", d.Priority, ok)
	}
}
