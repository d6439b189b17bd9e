package bootstrap

import (
	"context"
	"fmt"
	"log"

	"project-echo-be/internal/config"
	"project-echo-be/internal/constant"
	"project-echo-be/internal/controller"
	"project-echo-be/internal/pkg/logger"
	"project-echo-be/internal/repository/memory"
	"project-echo-be/internal/service"
	"project-echo-be/pkg/blueprint"
	"project-echo-be/pkg/extract"
	"project-echo-be/pkg/llm"
	"project-echo-be/pkg/llm/factory"
	"project-echo-be/pkg/orchestrator"
	"project-echo-be/pkg/persona"
	"project-echo-be/pkg/search"

	pktNats "project-echo-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type Container struct {
	// Controllers
	ChatController controller.IChatController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	Logger logger.ILogger

	closers []func()
}

func NewContainer(cfg *config.Config) (*Container, error) {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	auditLogger := logger.NewIsolatedLogger(cfg.App.AuditLogFilePath)

	// 2. Event Bus
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 64},
		watermill.NewStdLogger(false, false),
	)
	c := &Container{Logger: sysLogger}
	c.closers = append(c.closers, func() { _ = pubSub.Close() })

	var natsPub service.EventPublisher
	if cfg.App.NatsURL != "" {
		pub, err := pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] NATS publisher: %v", err)
		}
		if pub != nil {
			natsPub = pub
			c.closers = append(c.closers, pub.Close)
		}
	}

	// 3. Personas
	catalog, err := loadCatalog(cfg.Ai.PersonaFile)
	if err != nil {
		return nil, err
	}
	log.Printf("[INFO] Persona catalog loaded: %d personas", len(catalog.All()))

	// 4. Model + domain components
	llmProvider, err := factory.NewLLMProvider(factory.Settings{
		Provider: cfg.Ai.LLMProvider,
		Model:    cfg.Ai.LLMModel,
		BaseURL:  cfg.Ai.LLMBaseURL,
		APIKey:   cfg.Keys.LLM,
		Timeout:  cfg.Ai.LLMTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("initialize LLM provider: %w", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	runner := persona.NewRunner(llmProvider, sysLogger, llm.WithFrequencyPenalty(cfg.Ai.FrequencyPenalty))
	extractor := extract.NewExtractor(nil, sysLogger)

	var orchOpts []orchestrator.Option
	if cfg.Keys.Search != "" {
		augmenter := search.NewAugmenter(cfg.Search.Endpoint, cfg.Keys.Search, cfg.Search.Depth, cfg.Search.MaxResults, sysLogger)
		orchOpts = append(orchOpts, orchestrator.WithSearch(augmenter, search.DefaultTrigger))
		log.Printf("[INFO] Web search augmentation enabled")
	} else {
		log.Printf("[INFO] Web search augmentation disabled (TAVILY_API_KEY not set)")
	}
	orch := orchestrator.New(catalog, runner, extractor, sysLogger, orchOpts...)
	summarizer := blueprint.NewSummarizer(llmProvider, cfg.Ai.BlueprintTemperature, sysLogger)

	// 5. Services
	sessionRepo := memory.NewSessionRepository(cfg.App.SessionTTL)
	publisherService := service.NewPublisherService(cfg.Ai.EventTopic, pubSub)
	c.ConsumerService = service.NewConsumerService(pubSub, cfg.Ai.EventTopic, auditLogger, sysLogger)

	chatService := service.NewChatService(
		catalog,
		sessionRepo,
		orch,
		summarizer,
		publisherService,
		natsPub,
		sysLogger,
	)

	// 6. Controllers
	c.ChatController = controller.NewChatController(chatService)

	return c, nil
}

func loadCatalog(path string) (*persona.Catalog, error) {
	if path == "" {
		return constant.DefaultCatalog()
	}
	catalog, err := persona.LoadCatalogFile(path)
	if err != nil {
		return nil, fmt.Errorf("load persona file %s: %w", path, err)
	}
	return catalog, nil
}

// Close releases the event bus and any external connections.
func (c *Container) Close(ctx context.Context) {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	_ = c.Logger.Sync()
}
