package search

import (
	"testing"
)

func TestDefaultTrigger(t *testing.T) {
	tests := []struct {
		name       string
		prompt     string
		hasContext bool
		want       bool
	}{
		{"news without context", "Any news on the Mars lander?", false, true},
		{"case insensitive", "What's the LATEST on Go 1.25", false, true},
		{"context present suppresses", "latest numbers in my file?", true, false},
		{"no phrase", "Help me plan a sprint", false, false},
		{"empty prompt", "", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DefaultTrigger(tt.prompt, tt.hasContext); got != tt.want {
				t.Errorf("DefaultTrigger(%q, %v) = %v, want %v", tt.prompt, tt.hasContext, got, tt.want)
			}
		})
	}
}

func TestKeywordTrigger_IgnoresBlankPhrases(t *testing.T) {
	trigger := KeywordTrigger("", "  ")
	if trigger("anything at all", false) {
		t.Error("blank phrases should never match")
	}
}

func TestNever(t *testing.T) {
	if Never("latest news", false) {
		t.Error("Never should not fire")
	}
}

func TestParseDirective(t *testing.T) {
	tests := []struct {
		raw       string
		wantForce bool
		wantText  string
	}{
		{"/web who maintains fiber", true, "who maintains fiber"},
		{"/SEARCH  golang release", true, "golang release"},
		{"plain question", false, "plain question"},
		{"  padded  ", false, "padded"},
		{"", false, ""},
		{"/webhook setup", false, "/webhook setup"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			d := ParseDirective(tt.raw)
			if d.ForceSearch != tt.wantForce {
				t.Errorf("ForceSearch = %v, want %v", d.ForceSearch, tt.wantForce)
			}
			if d.Prompt != tt.wantText {
				t.Errorf("Prompt = %q, want %q", d.Prompt, tt.wantText)
			}
		})
	}
}
