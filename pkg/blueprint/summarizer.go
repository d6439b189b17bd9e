// Package blueprint condenses a chat session into a structured project report.
package blueprint

import (
	"context"
	"fmt"
	"strings"
	"time"

	"project-echo-be/internal/pkg/logger"
	"project-echo-be/pkg/llm"
	"project-echo-be/pkg/session"
)

const (
	logModule = "blueprint"

	DefaultTemperature = 0.3
)

const promptTemplate = `You are the project secretary for a brainstorming session between a user and several AI personas.
Read the transcript below and write a project blueprint with exactly these sections:

1. OBJECTIVE - what the user is trying to achieve, in one or two sentences.
2. KEY DECISIONS - bullet list of what was agreed or chosen.
3. RISKS AND OBJECTIONS - bullet list of concerns raised, with who raised them.
4. OPEN QUESTIONS - bullet list of what is still undecided.
5. NEXT STEPS - numbered, concrete actions.

If the transcript is too short to fill a section, write "Not discussed yet." under it.

TRANSCRIPT:
%s`

// Summarizer issues the single summarization request.
type Summarizer struct {
	provider    llm.LLMProvider
	logger      logger.ILogger
	temperature float64
}

func NewSummarizer(provider llm.LLMProvider, temperature float64, log logger.ILogger) *Summarizer {
	if temperature <= 0 {
		temperature = DefaultTemperature
	}
	return &Summarizer{provider: provider, logger: log, temperature: temperature}
}

// Transcript renders history as "ROLE: content" lines.
func Transcript(history []session.Entry) string {
	var sb strings.Builder
	for i, e := range history {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(strings.ToUpper(e.Role))
		sb.WriteString(": ")
		sb.WriteString(e.Content)
	}
	return sb.String()
}

// BuildPrompt wraps the transcript in the report template.
func BuildPrompt(history []session.Entry) string {
	return fmt.Sprintf(promptTemplate, Transcript(history))
}

// Summarize never fails: provider errors come back as the summary text.
func (s *Summarizer) Summarize(ctx context.Context, history []session.Entry) string {
	out, err := s.provider.Generate(ctx, BuildPrompt(history), llm.WithTemperature(s.temperature))
	if err != nil {
		s.logger.Error(logModule, "blueprint generation failed", map[string]interface{}{
			"entries": len(history),
			"error":   err.Error(),
		})
		return fmt.Sprintf("Blueprint generation failed: %v", err)
	}

	out = strings.TrimSpace(out)
	if out == "" {
		return "Blueprint generation failed: model returned an empty response"
	}
	return out
}

// Filename is the download name for a session's report.
func Filename(sessionID string) string {
	return fmt.Sprintf("echo-blueprint-%s.txt", sessionID)
}

// Report renders the downloadable plain-text file.
func Report(sessionID string, history []session.Entry, summary string, now time.Time) []byte {
	var sb strings.Builder
	rule := strings.Repeat("=", 60)

	sb.WriteString("PROJECT ECHO BLUEPRINT\n")
	sb.WriteString(rule + "\n")
	fmt.Fprintf(&sb, "Session:   %s\n", sessionID)
	fmt.Fprintf(&sb, "Generated: %s\n", now.UTC().Format(time.RFC3339))
	fmt.Fprintf(&sb, "Messages:  %d\n", len(history))
	sb.WriteString(rule + "\n\n")

	sb.WriteString("SUMMARY\n-------\n")
	sb.WriteString(strings.TrimSpace(summary))
	sb.WriteString("\n\n")

	sb.WriteString("TRANSCRIPT\n----------\n")
	for _, e := range history {
		fmt.Fprintf(&sb, "[%s] %s:\n%s\n\n", e.CreatedAt.UTC().Format(time.RFC3339), strings.ToUpper(e.Role), e.Content)
	}
	return []byte(sb.String())
}
