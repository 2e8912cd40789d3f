package decision

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"

	"github.com/rudolph-nck/botmind/llm"
)

var ErrParseFailure = errors.New("failed to parse decision from generator output")

var codeBlockRe = regexp.MustCompile("(?s)```(?:json)?\\s*\\n(.*?)\\n\\s*```")

// rawDecision is the duck-typed shape the generator is asked to produce.
// Both camelCase and snake_case target keys are tolerated; models mix them.
type rawDecision struct {
	Action       string `json:"action"`
	Priority     string `json:"priority"`
	Reasoning    string `json:"reasoning"`
	TargetID     string `json:"targetId"`
	TargetSnake  string `json:"target_id"`
	ContextHint  string `json:"contextHint"`
	ContextSnake string `json:"context_hint"`
}

// ParseDecision extracts a Decision from generator output. The result is
// syntactically well-formed but not yet validated against the perception
// context; Validate owns target repair.
func ParseDecision(result llm.Result) (Decision, error) {
	var lastErr error

	if result.JSON != nil {
		data, err := json.Marshal(result.JSON)
		if err == nil {
			if d, err := unmarshalRaw(data); err == nil {
				return d, nil
			} else {
				lastErr = err
			}
		}
	}

	text := strings.TrimSpace(result.Text)
	if text == "" {
		if lastErr != nil {
			return Decision{}, lastErr
		}
		return Decision{}, ErrParseFailure
	}

	if d, err := unmarshalRaw([]byte(text)); err == nil {
		return d, nil
	} else {
		lastErr = err
	}

	if jsonStr := extractFromCodeBlock(text); jsonStr != "" {
		if d, err := unmarshalRaw([]byte(jsonStr)); err == nil {
			return d, nil
		} else {
			lastErr = err
		}
	}

	if jsonStr := extractJSONObject(text); jsonStr != "" {
		if d, err := unmarshalRaw([]byte(jsonStr)); err == nil {
			return d, nil
		} else {
			lastErr = err
		}
	}

	if lastErr != nil {
		return Decision{}, lastErr
	}
	return Decision{}, ErrParseFailure
}

func unmarshalRaw(data []byte) (Decision, error) {
	var raw rawDecision
	if err := json.Unmarshal(data, &raw); err != nil {
		return Decision{}, err
	}
	d := normalize(raw)
	if d.Action == "" {
		return Decision{}, ErrParseFailure
	}
	return d, nil
}

// normalize canonicalizes casing and fills defaults. Unknown actions pass
// through so Validate can route them to the fallback with their name intact
// for logging.
func normalize(raw rawDecision) Decision {
	action := Action(strings.ToUpper(strings.TrimSpace(raw.Action)))
	priority := Priority(strings.ToLower(strings.TrimSpace(raw.Priority)))
	if !priority.Known() {
		priority = PriorityMedium
	}
	target := strings.TrimSpace(raw.TargetID)
	if target == "" {
		target = strings.TrimSpace(raw.TargetSnake)
	}
	hint := strings.TrimSpace(raw.ContextHint)
	if hint == "" {
		hint = strings.TrimSpace(raw.ContextSnake)
	}
	return Decision{
		Action:      action,
		Priority:    priority,
		Reasoning:   strings.TrimSpace(raw.Reasoning),
		TargetID:    target,
		ContextHint: hint,
		Source:      SourceModel,
	}
}

func extractFromCodeBlock(text string) string {
	matches := codeBlockRe.FindStringSubmatch(text)
	if len(matches) >= 2 {
		return strings.TrimSpace(matches[1])
	}
	return ""
}

// extractJSONObject finds the first balanced top-level JSON object in text,
// respecting strings and escapes.
func extractJSONObject(text string) string {
	start := strings.Index(text, "{")
	if start == -1 {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return text[start : i+1]
				}
			}
		}
	}
	return ""
}
