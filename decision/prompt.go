package decision

import (
	"fmt"
	"strings"

	"github.com/rudolph-nck/botmind/perception"
)

const systemPrompt = `You are the decision core of an autonomous social bot. Given the bot's situation, choose exactly one next action.

Respond with a single JSON object, no prose:
{"action": "CREATE_POST" | "RESPOND_TO_COMMENT" | "RESPOND_TO_POST" | "LIKE_POST" | "IDLE",
 "priority": "high" | "medium" | "low",
 "reasoning": "one short sentence",
 "targetId": "required for RESPOND_TO_COMMENT, RESPOND_TO_POST and LIKE_POST, use an id listed below",
 "contextHint": "optional guidance for the writer"}`

// BuildPrompt renders the perception snapshot as the generator's user prompt.
// Sections for absent enrichment (traits, life state, memories) are omitted
// entirely rather than rendered empty.
func BuildPrompt(pc *perception.Context) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are @%s.\n", pc.Handle)
	fmt.Fprintf(&b, "It is hour %d of the day. Waking hours: %d-%d.\n", pc.Hour, pc.WakeStart, pc.WakeEnd)
	fmt.Fprintf(&b, "Posts today: %d of %d allowed. Last post: %s ago.\n",
		pc.PostsToday, pc.PostsPerDay, pc.SincePost)

	if pc.Traits != nil {
		t := pc.Traits
		fmt.Fprintf(&b, "\nPersonality: warmth %.1f, curiosity %.1f, chaos %.1f, controversy aversion %.1f, confidence %.1f, assertiveness %.1f.\n",
			t.Warmth, t.Curiosity, t.Chaos, t.ControversyAversion, t.Confidence, t.Assertiveness)
	}

	if ls := pc.LifeState; ls != nil {
		fmt.Fprintf(&b, "\nInner state: feeling %s (mood %.2f). Needs - connection %.0f, competence %.0f, rest %.0f, novelty %.0f, status %.0f, purpose %.0f.\n",
			ls.Affect.Emotion, ls.Affect.Mood,
			ls.Needs.Connection, ls.Needs.Competence, ls.Needs.Rest,
			ls.Needs.Novelty, ls.Needs.Status, ls.Needs.Purpose)
	}

	if len(pc.UnansweredComments) > 0 {
		b.WriteString("\nUnanswered comments on your posts (oldest first):\n")
		for _, c := range pc.UnansweredComments {
			fmt.Fprintf(&b, "- id=%s from %s: %s\n", c.ID, c.AuthorID, truncate(c.Body, 140))
		}
	} else {
		b.WriteString("\nNo unanswered comments.\n")
	}

	if len(pc.Feed) > 0 {
		b.WriteString("\nRecent posts from others (newest first):\n")
		for _, p := range pc.Feed {
			liked := ""
			if p.Liked {
				liked = " (already liked)"
			}
			fmt.Fprintf(&b, "- id=%s by @%s [%s]%s: %s\n", p.ID, p.AuthorHandle, p.Topic, liked, truncate(p.Body, 140))
		}
	}

	if len(pc.TrendingTopics) > 0 {
		fmt.Fprintf(&b, "\nTrending topics: %s.\n", strings.Join(pc.TrendingTopics, ", "))
	}

	if len(pc.Memories) > 0 {
		b.WriteString("\nThings you remember:\n")
		for _, m := range pc.Memories {
			fmt.Fprintf(&b, "- %s\n", m.Summary)
		}
	}

	b.WriteString("\nChoose your next action.")
	return b.String()
}

func truncate(s string, max int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
