package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"project-echo-be/internal/dto"
	"project-echo-be/internal/pkg/logger"
	"project-echo-be/pkg/blueprint"
	"project-echo-be/pkg/events"
	"project-echo-be/pkg/extract"
	"project-echo-be/pkg/orchestrator"
	"project-echo-be/pkg/persona"
	"project-echo-be/pkg/session"

	"github.com/google/uuid"
)

const chatModule = "ChatService"

// IChatService is everything the HTTP layer can do with a chat session.
type IChatService interface {
	ListPersonas(ctx context.Context) []*dto.PersonaResponse
	CreateSession(ctx context.Context) (*dto.SessionResponse, error)
	GetSession(ctx context.Context, sessionId string) (*dto.SessionResponse, error)
	DeleteSession(ctx context.Context, sessionId string) error
	SetMode(ctx context.Context, sessionId string, request *dto.SetModeRequest) (*dto.SessionResponse, error)
	SendTurn(ctx context.Context, sessionId string, prompt string, files []extract.Upload) (*dto.SendTurnResponse, error)
	DownloadBlueprint(ctx context.Context, sessionId string) (*dto.BlueprintFile, error)
}

type SessionStore interface {
	Save(s *session.State)
	Get(sessionID string) (*session.State, bool)
	Delete(sessionID string) bool
}

type TurnRunner interface {
	RunTurn(ctx context.Context, s *session.State, in orchestrator.TurnInput) (*orchestrator.TurnResult, error)
}

type BlueprintSummarizer interface {
	Summarize(ctx context.Context, history []session.Entry) string
}

// EventPublisher mirrors events to an external bus. *nats.Publisher implements it.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type chatService struct {
	catalog          *persona.Catalog
	sessions         SessionStore
	turns            TurnRunner
	summarizer       BlueprintSummarizer
	publisherService IPublisherService
	eventPublisher   EventPublisher // optional
	logger           logger.ILogger
	now              func() time.Time
}

func NewChatService(
	catalog *persona.Catalog,
	sessions SessionStore,
	turns TurnRunner,
	summarizer BlueprintSummarizer,
	publisherService IPublisherService,
	eventPublisher EventPublisher,
	log logger.ILogger,
) IChatService {
	return &chatService{
		catalog:          catalog,
		sessions:         sessions,
		turns:            turns,
		summarizer:       summarizer,
		publisherService: publisherService,
		eventPublisher:   eventPublisher,
		logger:           log,
		now:              time.Now,
	}
}

func (c *chatService) ListPersonas(ctx context.Context) []*dto.PersonaResponse {
	defs := c.catalog.All()
	out := make([]*dto.PersonaResponse, 0, len(defs))
	for _, d := range defs {
		out = append(out, &dto.PersonaResponse{
			Id:          d.ID,
			Name:        d.Name,
			Temperature: d.Temperature,
			InEnsemble:  c.catalog.InEnsemble(d.ID),
		})
	}
	return out
}

func (c *chatService) CreateSession(ctx context.Context) (*dto.SessionResponse, error) {
	now := c.now()
	s := session.New(uuid.NewString(), now)

	greeter := c.catalog.First()
	if greeter.Greeting != "" {
		s.Append(session.Entry{
			Role:      session.RoleAssistant,
			Content:   persona.FormatReply(greeter.Name, greeter.Greeting),
			CreatedAt: now,
		})
	}
	c.sessions.Save(s)

	c.logger.Info(chatModule, "session created", map[string]interface{}{"session_id": s.ID})
	return toSessionResponse(s), nil
}

func (c *chatService) GetSession(ctx context.Context, sessionId string) (*dto.SessionResponse, error) {
	s, err := c.lookup(sessionId)
	if err != nil {
		return nil, err
	}
	return toSessionResponse(s), nil
}

func (c *chatService) DeleteSession(ctx context.Context, sessionId string) error {
	if !c.sessions.Delete(sessionId) {
		return fmt.Errorf("delete %s: %w", sessionId, session.ErrSessionNotFound)
	}
	c.logger.Info(chatModule, "session deleted", map[string]interface{}{"session_id": sessionId})
	return nil
}

func (c *chatService) SetMode(ctx context.Context, sessionId string, request *dto.SetModeRequest) (*dto.SessionResponse, error) {
	s, err := c.lookup(sessionId)
	if err != nil {
		return nil, err
	}

	mode, err := c.catalog.ResolveMode(request.Mode, request.PersonaId)
	if err != nil {
		return nil, err
	}
	s.SetMode(mode)

	c.logger.Info(chatModule, "mode changed", map[string]interface{}{
		"session_id": sessionId,
		"mode":       string(mode.Kind),
		"persona_id": mode.PersonaID,
	})
	return toSessionResponse(s), nil
}

func (c *chatService) SendTurn(ctx context.Context, sessionId string, prompt string, files []extract.Upload) (*dto.SendTurnResponse, error) {
	s, err := c.lookup(sessionId)
	if err != nil {
		return nil, err
	}

	res, err := c.turns.RunTurn(ctx, s, orchestrator.TurnInput{Prompt: prompt, Files: files})
	if err != nil {
		return nil, err
	}

	at := res.Reply.CreatedAt
	failed := res.FailedSegments()
	c.emit(ctx, events.TurnCompleted(s.ID, len(res.Segments), len(failed), res.SearchUsed, at))
	for _, seg := range failed {
		c.emit(ctx, events.PersonaFailed(s.ID, seg.PersonaID, seg.Text, at))
	}

	return toSendTurnResponse(s.ID, res), nil
}

func (c *chatService) DownloadBlueprint(ctx context.Context, sessionId string) (*dto.BlueprintFile, error) {
	s, err := c.lookup(sessionId)
	if err != nil {
		return nil, err
	}

	history := s.History()
	summary := c.summarizer.Summarize(context.WithoutCancel(ctx), history)
	now := c.now()

	c.emit(ctx, events.BlueprintGenerated(s.ID, len(history), now))

	return &dto.BlueprintFile{
		Filename: blueprint.Filename(s.ID),
		Content:  blueprint.Report(s.ID, history, summary, now),
	}, nil
}

func (c *chatService) lookup(sessionId string) (*session.State, error) {
	s, ok := c.sessions.Get(sessionId)
	if !ok {
		return nil, fmt.Errorf("session %s: %w", sessionId, session.ErrSessionNotFound)
	}
	return s, nil
}

// emit publishes to the in-process bus and, when configured, to NATS.
// Event delivery never fails a request.
func (c *chatService) emit(ctx context.Context, evt events.BaseEvent) {
	payload, err := json.Marshal(evt)
	if err == nil {
		err = c.publisherService.Publish(ctx, payload)
	}
	if err != nil {
		c.logger.Warn(chatModule, "failed to publish event", map[string]interface{}{
			"type":  evt.Type,
			"error": err.Error(),
		})
	}

	if c.eventPublisher == nil {
		return
	}
	if err := c.eventPublisher.Publish(ctx, evt); err != nil {
		c.logger.Warn(chatModule, "failed to mirror event to NATS", map[string]interface{}{
			"type":  evt.Type,
			"error": err.Error(),
		})
	}
}

func toEntryDTO(e session.Entry) dto.ChatEntryDTO {
	return dto.ChatEntryDTO{Role: e.Role, Content: e.Content, CreatedAt: e.CreatedAt}
}

func toSessionResponse(s *session.State) *dto.SessionResponse {
	history := s.History()
	entries := make([]dto.ChatEntryDTO, len(history))
	for i, e := range history {
		entries[i] = toEntryDTO(e)
	}

	mode := s.Mode()
	return &dto.SessionResponse{
		Id:        s.ID,
		CreatedAt: s.CreatedAt,
		Mode:      dto.ModeDTO{Mode: string(mode.Kind), PersonaId: mode.PersonaID},
		History:   entries,
	}
}

func toSendTurnResponse(sessionId string, res *orchestrator.TurnResult) *dto.SendTurnResponse {
	out := &dto.SendTurnResponse{
		SessionId:  sessionId,
		Sent:       toEntryDTO(res.UserEntry),
		Reply:      toEntryDTO(res.Reply),
		SearchUsed: res.SearchUsed,
	}
	for _, seg := range res.Segments {
		out.Segments = append(out.Segments, dto.PersonaSegmentDTO{
			PersonaId: seg.PersonaID,
			Name:      seg.Name,
			Text:      seg.Text,
			Failed:    seg.Failed,
			ElapsedMs: seg.Elapsed.Milliseconds(),
		})
	}
	for _, fe := range res.FileErrors {
		out.FileErrors = append(out.FileErrors, dto.FileErrorDTO{Filename: fe.Filename, Error: fe.Err.Error()})
	}
	return out
}
