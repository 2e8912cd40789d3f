package decision

import (
	"errors"
	"testing"

	"github.com/rudolph-nck/botmind/llm"
)

func TestParseDecisionPlainJSON(t *testing.T) {
	d, err := ParseDecision(llm.Result{
		Text: `{"action": "CREATE_POST", "priority": "high", "reasoning": "been a while"}`,
	})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if d.Action != ActionCreatePost || d.Priority != PriorityHigh {
		t.Errorf("got %s/%s", d.Action, d.Priority)
	}
	if d.Source != SourceModel {
		t.Errorf("source = %s", d.Source)
	}
}

func TestParseDecisionStructuredJSON(t *testing.T) {
	d, err := ParseDecision(llm.Result{
		JSON: map[string]any{"action": "IDLE", "priority": "low", "reasoning": "quiet day"},
	})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if d.Action != ActionIdle {
		t.Errorf("action = %s", d.Action)
	}
}

func TestParseDecisionCodeBlock(t *testing.T) {
	text := "Here is my choice:\n```json\n{\"action\": \"LIKE_POST\", \"targetId\": \"p1\"}\n```\nDone."
	d, err := ParseDecision(llm.Result{Text: text})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if d.Action != ActionLikePost || d.TargetID != "p1" {
		t.Errorf("got %s target %s", d.Action, d.TargetID)
	}
}

func TestParseDecisionEmbeddedObject(t *testing.T) {
	text := `I think {"action": "respond_to_comment", "target_id": "c9", "priority": "HIGH"} is best`
	d, err := ParseDecision(llm.Result{Text: text})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if d.Action != ActionRespondToComment {
		t.Errorf("action casing not normalized: %s", d.Action)
	}
	if d.TargetID != "c9" {
		t.Errorf("snake_case target not picked up: %q", d.TargetID)
	}
	if d.Priority != PriorityHigh {
		t.Errorf("priority casing not normalized: %s", d.Priority)
	}
}

func TestParseDecisionDefaultsPriority(t *testing.T) {
	d, err := ParseDecision(llm.Result{Text: `{"action": "IDLE", "priority": "urgent"}`})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if d.Priority != PriorityMedium {
		t.Errorf("unknown priority should default to medium, got %s", d.Priority)
	}
}

func TestParseDecisionFailures(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"empty", ""},
		{"prose only", "I would like to post something."},
		{"no action field", `{"priority": "high"}`},
		{"truncated object", `{"action": "IDLE"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDecision(llm.Result{Text: tt.text})
			if err == nil {
				t.Error("expected parse failure")
			}
		})
	}
}

func TestParseDecisionUnknownActionPassesThrough(t *testing.T) {
	// Unknown actions are a validation concern, not a parse failure.
	d, err := ParseDecision(llm.Result{Text: `{"action": "DANCE"}`})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if d.Action.Known() {
		t.Errorf("DANCE should not be a known action")
	}
	if errors.Is(err, ErrParseFailure) {
		t.Error("unexpected sentinel")
	}
}
