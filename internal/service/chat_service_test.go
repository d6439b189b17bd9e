package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"project-echo-be/internal/constant"
	"project-echo-be/internal/dto"
	"project-echo-be/internal/pkg/logger"
	"project-echo-be/internal/repository/memory"
	"project-echo-be/pkg/blueprint"
	"project-echo-be/pkg/events"
	"project-echo-be/pkg/extract"
	"project-echo-be/pkg/llm"
	"project-echo-be/pkg/orchestrator"
	"project-echo-be/pkg/persona"
	"project-echo-be/pkg/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedProvider answers by the persona named in the system prompt.
type scriptedProvider struct {
	failFor  string
	summary  string
	mu       sync.Mutex
	generate []string
}

func (p *scriptedProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	system := history[0].Content
	if p.failFor != "" && strings.Contains(system, p.failFor) {
		return "", errors.New("model overloaded")
	}
	switch {
	case strings.Contains(system, "VIOLET"):
		return "build it", nil
	case strings.Contains(system, "STORM"):
		return "optimize it", nil
	default:
		return "flip it", nil
	}
}

func (p *scriptedProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.generate = append(p.generate, prompt)
	return p.summary, nil
}

type recordingPublisher struct {
	mu       sync.Mutex
	payloads [][]byte
}

func (r *recordingPublisher) Publish(ctx context.Context, payload []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payloads = append(r.payloads, payload)
	return nil
}

func (r *recordingPublisher) types(t *testing.T) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, p := range r.payloads {
		var evt events.BaseEvent
		require.NoError(t, json.Unmarshal(p, &evt))
		out = append(out, evt.Type)
	}
	return out
}

type failingEventPublisher struct{ calls int }

func (f *failingEventPublisher) Publish(ctx context.Context, event events.Event) error {
	f.calls++
	return errors.New("nats: no responders")
}

type fixture struct {
	svc       IChatService
	provider  *scriptedProvider
	publisher *recordingPublisher
	external  *failingEventPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	catalog, err := constant.DefaultCatalog()
	require.NoError(t, err)

	log := logger.NewNopLogger()
	provider := &scriptedProvider{summary: "1. OBJECTIVE\nShip."}
	runner := persona.NewRunner(provider, log, llm.WithFrequencyPenalty(0.5))
	orch := orchestrator.New(catalog, runner, extract.NewExtractor(nil, log), log)
	publisher := &recordingPublisher{}
	external := &failingEventPublisher{}

	svc := NewChatService(
		catalog,
		memory.NewSessionRepository(time.Hour),
		orch,
		blueprint.NewSummarizer(provider, 0.3, log),
		publisher,
		external,
		log,
	)
	return &fixture{svc: svc, provider: provider, publisher: publisher, external: external}
}

func TestChatService_CreateSessionSeedsGreeting(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.CreateSession(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, res.Id)
	assert.Equal(t, "ensemble", res.Mode.Mode)
	require.Len(t, res.History, 1)
	assert.Equal(t, session.RoleAssistant, res.History[0].Role)
	assert.Equal(t, "**Violet:** "+constant.SessionGreeting, res.History[0].Content)
}

func TestChatService_UnknownSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.GetSession(ctx, "nope")
	assert.ErrorIs(t, err, session.ErrSessionNotFound)
	_, err = f.svc.SendTurn(ctx, "nope", "hello", nil)
	assert.ErrorIs(t, err, session.ErrSessionNotFound)
	assert.ErrorIs(t, f.svc.DeleteSession(ctx, "nope"), session.ErrSessionNotFound)
}

func TestChatService_SendTurnEnsemble(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created, _ := f.svc.CreateSession(ctx)

	res, err := f.svc.SendTurn(ctx, created.Id, "We need a launch plan", nil)
	require.NoError(t, err)

	want := "**Violet:** build it" + orchestrator.Divider + "**Storm:** optimize it" + orchestrator.Divider + "**Flux:** flip it"
	assert.Equal(t, want, res.Reply.Content)
	require.Len(t, res.Segments, 3)
	assert.Equal(t, []string{events.TypeTurnCompleted}, f.publisher.types(t))
	assert.Equal(t, 1, f.external.calls)

	got, err := f.svc.GetSession(ctx, created.Id)
	require.NoError(t, err)
	assert.Len(t, got.History, 3)
}

func TestChatService_PersonaFailureEmitsEvent(t *testing.T) {
	f := newFixture(t)
	f.provider.failFor = "STORM"
	ctx := context.Background()
	created, _ := f.svc.CreateSession(ctx)

	res, err := f.svc.SendTurn(ctx, created.Id, "go", nil)
	require.NoError(t, err)

	assert.Contains(t, res.Reply.Content, "🚨 Storm Failure: model overloaded")
	assert.Contains(t, res.Reply.Content, "**Violet:** build it")
	assert.Equal(t, []string{events.TypeTurnCompleted, events.TypePersonaFailed}, f.publisher.types(t))
}

func TestChatService_SetModeExclusive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created, _ := f.svc.CreateSession(ctx)

	mode, err := f.svc.SetMode(ctx, created.Id, &dto.SetModeRequest{Mode: "exclusive", PersonaId: "Storm"})
	require.NoError(t, err)
	assert.Equal(t, "exclusive", mode.Mode.Mode)
	assert.Equal(t, "storm", mode.Mode.PersonaId)
	assert.Len(t, mode.History, 1)

	res, err := f.svc.SendTurn(ctx, created.Id, "critique", nil)
	require.NoError(t, err)
	assert.Equal(t, "**Storm:** optimize it", res.Reply.Content)

	_, err = f.svc.SetMode(ctx, created.Id, &dto.SetModeRequest{Mode: "exclusive", PersonaId: "ghost"})
	assert.ErrorIs(t, err, persona.ErrUnknownPersona)
}

func TestChatService_DownloadBlueprint(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created, _ := f.svc.CreateSession(ctx)

	file, err := f.svc.DownloadBlueprint(ctx, created.Id)
	require.NoError(t, err)

	assert.Equal(t, "echo-blueprint-"+created.Id+".txt", file.Filename)
	assert.Contains(t, string(file.Content), "1. OBJECTIVE\nShip.")
	require.Len(t, f.provider.generate, 1)
	assert.Contains(t, f.provider.generate[0], "ASSISTANT: **Violet:**")
	assert.Equal(t, []string{events.TypeBlueprintGenerated}, f.publisher.types(t))
}

func TestChatService_DeleteSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created, _ := f.svc.CreateSession(ctx)

	require.NoError(t, f.svc.DeleteSession(ctx, created.Id))
	_, err := f.svc.GetSession(ctx, created.Id)
	assert.ErrorIs(t, err, session.ErrSessionNotFound)
}

func TestChatService_ListPersonas(t *testing.T) {
	f := newFixture(t)

	list := f.svc.ListPersonas(context.Background())

	require.Len(t, list, 3)
	assert.Equal(t, "violet", list[0].Id)
	assert.True(t, list[0].InEnsemble)
}
