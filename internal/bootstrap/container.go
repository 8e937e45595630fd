package bootstrap

import (
	"context"
	"log"

	"ai-assistant-be/internal/config"
	"ai-assistant-be/internal/controller"
	"ai-assistant-be/internal/pkg/logger"
	"ai-assistant-be/internal/pkg/mailer"
	repomem "ai-assistant-be/internal/repository/memory"
	"ai-assistant-be/internal/repository/unitofwork"
	"ai-assistant-be/internal/service"
	"ai-assistant-be/internal/websocket"
	"ai-assistant-be/pkg/chatcontext"
	"ai-assistant-be/pkg/embedding"
	"ai-assistant-be/pkg/llm/factory"
	"ai-assistant-be/pkg/memory"

	pktNats "ai-assistant-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AuthController   controller.IAuthController
	UserController   controller.IUserController
	ChatController   controller.IChatController
	MemoryController controller.IMemoryController

	// Background services (exposed for main.go to run)
	MemoryConsumerService service.IMemoryConsumerService

	// WebSockets
	WebSocketHub *websocket.Hub
	ChatHandler  *websocket.ChatHandler
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.Email,
	)

	// 2. Event bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. AI providers
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.EmbeddingModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.EmbeddingModel)
	} else {
		log.Printf("[INFO] Summary embeddings disabled")
	}

	llmBaseURL := cfg.Ai.OpenRouterURL
	if cfg.Ai.LLMProvider == "ollama" {
		llmBaseURL = cfg.Ai.OllamaBaseURL
	}
	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		llmBaseURL,
		cfg.Ai.OpenRouterAPIKey,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 4. Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
		rdb = nil
	}

	// WebSocket hub
	wsLogger := logger.NewIsolatedLogger("logs/chat_ws.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// 5. Memory pipeline
	usageCache := repomem.NewUsageCache()
	assembler := chatcontext.NewAssembler(uowFactory, sysLogger)
	updater := memory.NewUpdater(uowFactory, embeddingProvider, sysLogger)

	// 6. Services
	authService := service.NewAuthService(uowFactory, emailService, natsPub, cfg, sysLogger)
	userService := service.NewUserService(uowFactory, natsPub, cfg, sysLogger)
	memoryService := service.NewMemoryService(uowFactory)

	chatService := service.NewChatService(
		uowFactory,
		assembler,
		llmProvider,
		pubSub,
		usageCache,
		cfg,
		sysLogger,
	)

	memoryConsumerService := service.NewMemoryConsumerService(
		pubSub,
		service.MemoryUpdateTopic,
		updater,
		sysLogger,
	)

	chatHandler := websocket.NewChatHandler(wsHub, chatService, wsLogger)

	// 7. Controllers
	return &Container{
		AuthController:   controller.NewAuthController(authService),
		UserController:   controller.NewUserController(userService),
		ChatController:   controller.NewChatController(chatService),
		MemoryController: controller.NewMemoryController(memoryService),

		MemoryConsumerService: memoryConsumerService,

		WebSocketHub: wsHub,
		ChatHandler:  chatHandler,
	}
}
