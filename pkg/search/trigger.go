package search

import (
	"strings"
)

// Trigger decides whether a turn should be augmented with a web search.
// It is a coarse heuristic: false positives and misses are both acceptable.
type Trigger func(prompt string, hasContext bool) bool

// DefaultPhrases are the prompt fragments that suggest the user wants fresh,
// outside information.
var DefaultPhrases = []string{
	"latest",
	"news",
	"today",
	"current",
	"right now",
	"this week",
	"search",
	"look up",
	"who won",
	"price of",
	"weather",
	"recent",
}

// DefaultTrigger fires on DefaultPhrases when no documents were uploaded.
var DefaultTrigger = KeywordTrigger(DefaultPhrases...)

// KeywordTrigger returns a Trigger that fires when there is no local context
// and the prompt contains any phrase, case-insensitively.
func KeywordTrigger(phrases ...string) Trigger {
	lowered := make([]string, 0, len(phrases))
	for _, p := range phrases {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			lowered = append(lowered, p)
		}
	}

	return func(prompt string, hasContext bool) bool {
		if hasContext {
			return false
		}
		text := strings.ToLower(prompt)
		for _, p := range lowered {
			if strings.Contains(text, p) {
				return true
			}
		}
		return false
	}
}

// Never disables augmentation.
func Never(string, bool) bool { return false }

// Directive is what ParseDirective pulls out of a raw prompt.
type Directive struct {
	ForceSearch bool
	Prompt      string // Prompt with the directive removed
}

// ParseDirective recognises a leading "/web" (alias "/search") that forces a
// search for this turn regardless of the trigger.
// "/web who maintains fiber" -> ForceSearch, Prompt "who maintains fiber"
func ParseDirective(raw string) Directive {
	trimmed := strings.TrimSpace(raw)
	parts := strings.Fields(trimmed)
	if len(parts) == 0 {
		return Directive{Prompt: trimmed}
	}

	switch strings.ToLower(parts[0]) {
	case "/web", "/search":
		return Directive{
			ForceSearch: true,
			Prompt:      strings.TrimSpace(strings.TrimPrefix(trimmed, parts[0])),
		}
	default:
		return Directive{Prompt: trimmed}
	}
}
