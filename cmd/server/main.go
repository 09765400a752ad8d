package main

import (
	"go.uber.org/zap"

	"github.com/epa-labs/epa-coach/internal/ai"
	"github.com/epa-labs/epa-coach/internal/chat"
	"github.com/epa-labs/epa-coach/internal/coach"
	"github.com/epa-labs/epa-coach/internal/config"
	"github.com/epa-labs/epa-coach/internal/docs"
	"github.com/epa-labs/epa-coach/internal/httpapi"
	"github.com/epa-labs/epa-coach/internal/httpapi/handlers"
	"github.com/epa-labs/epa-coach/internal/logging"
	"github.com/epa-labs/epa-coach/internal/store/memstore"
)

func main() {
	cfg := config.Load()

	logger := logging.New(cfg.LogFilePath, cfg.Environment == "production")
	defer logger.Sync()

	db, err := chat.OpenMemoryDB()
	if err != nil {
		logger.Fatal("failed to open transcript store", zap.Error(err))
	}
	repo := chat.NewRepo(db)

	registry := ai.NewRegistry()
	registry.Register("ollama", ai.NewOllamaProvider(cfg.OllamaBaseURL, cfg.OllamaModel))
	registry.Register("openrouter", ai.NewOpenRouterProvider(
		cfg.OpenRouterBaseURL,
		cfg.OpenRouterAPIKey,
		cfg.OpenRouterModel,
		cfg.OpenRouterSiteURL,
		cfg.OpenRouterAppName,
		cfg.MaxTokens,
	))
	registry.Register("openai", ai.NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.MaxTokens))

	provider, err := registry.Get(cfg.AIProvider)
	if err != nil {
		logger.Fatal("failed to select ai provider", zap.Error(err))
	}
	logger.Info("ai provider selected",
		zap.String("provider", cfg.AIProvider),
		zap.Bool("openrouter_key_set", cfg.OpenRouterAPIKey != ""),
		zap.Bool("openai_key_set", cfg.OpenAIAPIKey != ""),
	)

	responder := coach.NewResponder(provider, logger)

	sessions := memstore.New(cfg.SessionTTL)
	conversations := memstore.New(cfg.SessionTTL)
	chatSvc := chat.NewService(repo, responder, conversations, logger, cfg.HandoffDelay)

	docStore := docs.NewStore()

	h := handlers.NewHandler(cfg, docStore, chatSvc, responder, sessions, logger)
	r := httpapi.NewRouter(h)

	logger.Info("server starting", zap.String("port", cfg.Port), zap.String("env", cfg.Environment))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
