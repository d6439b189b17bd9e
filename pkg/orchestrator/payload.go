package orchestrator

import (
	"strings"
)

const (
	// EmptyContext stands in for the payload when nothing was uploaded or searched.
	EmptyContext = "No additional context provided."

	webSearchHeading = "[Web search]"

	// Divider separates persona segments in the combined assistant entry.
	Divider = "\n\n---\n\n"
)

// BuildPayload assembles the context block shared by every persona in a turn.
// Document text comes first; search output, if any, follows under its heading.
func BuildPayload(documentText, searchText string) string {
	doc := strings.TrimSpace(documentText)
	web := strings.TrimSpace(searchText)

	switch {
	case doc == "" && web == "":
		return EmptyContext
	case web == "":
		return doc
	case doc == "":
		return webSearchHeading + "\n" + web
	default:
		return doc + "\n\n" + webSearchHeading + "\n" + web
	}
}

// JoinSegments concatenates persona segments in the given order.
func JoinSegments(segments []Segment) string {
	parts := make([]string, len(segments))
	for i, s := range segments {
		parts[i] = s.Text
	}
	return strings.Join(parts, Divider)
}
