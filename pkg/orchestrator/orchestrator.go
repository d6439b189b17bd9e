// Package orchestrator runs one chat turn: it builds the shared context,
// fans the prompt out to the active personas and merges their replies.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"project-echo-be/internal/pkg/logger"
	"project-echo-be/pkg/extract"
	"project-echo-be/pkg/persona"
	"project-echo-be/pkg/search"
	"project-echo-be/pkg/session"
	"project-echo-be/pkg/taskgroup"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const logModule = "orchestrator"

var ErrEmptyPrompt = errors.New("prompt must not be empty")

// PersonaRunner answers a prompt as one persona. *persona.Runner implements it.
type PersonaRunner interface {
	Run(ctx context.Context, def persona.Definition, prompt, payload string) persona.Reply
}

// Searcher fetches a web summary. *search.Augmenter implements it.
type Searcher interface {
	Search(ctx context.Context, query string) string
}

type ContextExtractor interface {
	Extract(ctx context.Context, files []extract.Upload) extract.Result
}

// TurnInput is what the user submitted for one turn.
type TurnInput struct {
	Prompt string
	Files  []extract.Upload
}

// Segment is one persona's part of the combined reply.
type Segment struct {
	PersonaID string        `json:"persona_id"`
	Name      string        `json:"name"`
	Text      string        `json:"text"`
	Failed    bool          `json:"failed"`
	Elapsed   time.Duration `json:"-"`
}

// TurnResult describes what a turn appended to the session.
type TurnResult struct {
	UserEntry  session.Entry
	Reply      session.Entry
	Segments   []Segment
	FileErrors []extract.FileError
	SearchUsed bool
}

// FailedSegments returns the segments whose persona call failed.
func (r *TurnResult) FailedSegments() []Segment {
	var out []Segment
	for _, s := range r.Segments {
		if s.Failed {
			out = append(out, s)
		}
	}
	return out
}

type Orchestrator struct {
	catalog   *persona.Catalog
	runner    PersonaRunner
	extractor ContextExtractor
	searcher  Searcher // nil disables augmentation
	trigger   search.Trigger
	logger    logger.ILogger
	tracer    trace.Tracer
	now       func() time.Time
}

type Option func(*Orchestrator)

// WithSearch enables augmentation. A nil trigger falls back to search.DefaultTrigger.
func WithSearch(s Searcher, trigger search.Trigger) Option {
	return func(o *Orchestrator) {
		o.searcher = s
		if trigger != nil {
			o.trigger = trigger
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		o.now = now
	}
}

func New(catalog *persona.Catalog, runner PersonaRunner, extractor ContextExtractor, log logger.ILogger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		catalog:   catalog,
		runner:    runner,
		extractor: extractor,
		trigger:   search.DefaultTrigger,
		logger:    log,
		tracer:    otel.Tracer("project-echo/orchestrator"),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// RunTurn executes a full turn against s. The only errors returned happen
// before anything is appended: an empty prompt, a turn already in flight, or
// a mode naming an unknown persona. Persona failures are part of the reply.
func (o *Orchestrator) RunTurn(ctx context.Context, s *session.State, in TurnInput) (*TurnResult, error) {
	directive := search.ParseDirective(in.Prompt)
	if directive.Prompt == "" {
		return nil, ErrEmptyPrompt
	}

	if err := s.BeginTurn(); err != nil {
		return nil, err
	}
	defer s.EndTurn()

	active, err := o.catalog.ActiveSet(s.Mode())
	if err != nil {
		return nil, fmt.Errorf("resolve active personas: %w", err)
	}

	// Model calls are never cancelled once issued, even if the client goes away.
	ctx = context.WithoutCancel(ctx)

	result := &TurnResult{
		UserEntry: session.Entry{Role: session.RoleUser, Content: in.Prompt, CreatedAt: o.now()},
	}
	s.Append(result.UserEntry)

	docs := o.extractor.Extract(ctx, in.Files)
	result.FileErrors = docs.Failures

	var searchText string
	hasContext := strings.TrimSpace(docs.Text) != ""
	if o.searcher != nil && (directive.ForceSearch || o.trigger(directive.Prompt, hasContext)) {
		searchText = o.searcher.Search(ctx, directive.Prompt)
		result.SearchUsed = true
	}
	payload := BuildPayload(docs.Text, searchText)

	result.Segments = o.fanOut(ctx, s.ID, active, directive.Prompt, payload)
	result.Reply = session.Entry{
		Role:      session.RoleAssistant,
		Content:   JoinSegments(result.Segments),
		CreatedAt: o.now(),
	}
	s.Append(result.Reply)

	o.logger.Info(logModule, "turn completed", map[string]interface{}{
		"session_id":  s.ID,
		"personas":    len(result.Segments),
		"failed":      len(result.FailedSegments()),
		"files":       len(in.Files),
		"file_errors": len(result.FileErrors),
		"search_used": result.SearchUsed,
	})
	return result, nil
}

func (o *Orchestrator) fanOut(ctx context.Context, sessionID string, active []persona.Definition, prompt, payload string) []Segment {
	group := taskgroup.New[persona.Reply](ctx, o.catalog.MaxSetSize())

	handles := make([]taskgroup.Handle, len(active))
	for i, def := range active {
		def := def
		handles[i] = group.Submit(func(ctx context.Context) (persona.Reply, error) {
			ctx, span := o.tracer.Start(ctx, "persona.run", trace.WithAttributes(
				attribute.String("session.id", sessionID),
				attribute.String("persona.id", def.ID),
			))
			defer span.End()

			reply := o.runner.Run(ctx, def, prompt, payload)
			if reply.Err != nil {
				span.RecordError(reply.Err)
				span.SetStatus(codes.Error, reply.Err.Error())
			}
			return reply, nil
		})
	}
	group.JoinAll()

	segments := make([]Segment, len(active))
	for i, def := range active {
		res := group.Get(handles[i])
		reply := res.Value
		if res.Err != nil {
			// Only reachable if the runner itself panicked.
			reply = persona.Reply{
				PersonaID: def.ID,
				Name:      def.Name,
				Err:       res.Err,
				Text:      persona.FormatFailure(def.Name, res.Err),
			}
		}
		segments[i] = Segment{
			PersonaID: def.ID,
			Name:      def.Name,
			Text:      reply.Text,
			Failed:    reply.Failed(),
			Elapsed:   reply.Elapsed,
		}
	}
	return segments
}
