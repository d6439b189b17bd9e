package persona

import (
	"context"
	"fmt"
	"strings"
	"time"

	"project-echo-be/internal/pkg/logger"
	"project-echo-be/pkg/llm"
)

const logModule = "persona.runner"

// Reply is one persona's slot in a turn. Text is always displayable, even on failure.
type Reply struct {
	PersonaID string
	Name      string
	Text      string
	Err       error
	Elapsed   time.Duration
}

func (r Reply) Failed() bool {
	return r.Err != nil
}

// Runner asks the model to answer as a single persona.
type Runner struct {
	provider llm.LLMProvider
	logger   logger.ILogger
	options  []llm.Option
}

// NewRunner takes provider-wide options (e.g. frequency penalty) applied to every call.
func NewRunner(provider llm.LLMProvider, log logger.ILogger, options ...llm.Option) *Runner {
	return &Runner{
		provider: provider,
		logger:   log,
		options:  options,
	}
}

// BuildMessages returns exactly two messages: the persona's system prompt with
// the context payload, and the user's prompt for this turn.
func BuildMessages(def Definition, prompt, payload string) []llm.Message {
	var system strings.Builder
	system.WriteString(strings.TrimSpace(def.SystemPrompt))
	system.WriteString("\n\n<context>\n")
	system.WriteString(payload)
	system.WriteString("\n</context>")

	return []llm.Message{
		{Role: llm.RoleSystem, Content: system.String()},
		{Role: llm.RoleUser, Content: prompt},
	}
}

func FormatReply(name, text string) string {
	return fmt.Sprintf("**%s:** %s", name, strings.TrimSpace(text))
}

func FormatFailure(name string, err error) string {
	return fmt.Sprintf("🚨 %s Failure: %v", name, err)
}

// Run issues one blocking completion. Errors never escape: they become the
// reply text so sibling personas and the turn are unaffected.
func (r *Runner) Run(ctx context.Context, def Definition, prompt, payload string) Reply {
	start := time.Now()
	opts := append([]llm.Option{llm.WithTemperature(def.Temperature)}, r.options...)

	text, err := r.provider.Chat(ctx, BuildMessages(def, prompt, payload), opts...)
	reply := Reply{
		PersonaID: def.ID,
		Name:      def.Name,
		Elapsed:   time.Since(start),
	}

	if err != nil {
		r.logger.Warn(logModule, "persona call failed", map[string]interface{}{
			"persona": def.ID,
			"error":   err.Error(),
		})
		reply.Err = err
		reply.Text = FormatFailure(def.Name, err)
		return reply
	}

	r.logger.Debug(logModule, "persona replied", map[string]interface{}{
		"persona":    def.ID,
		"elapsed_ms": reply.Elapsed.Milliseconds(),
		"chars":      len(text),
	})
	reply.Text = FormatReply(def.Name, text)
	return reply
}
