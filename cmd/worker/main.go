package main

import (
	stdlog "log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mwisniewski/tale-engine/internal/config"
	"github.com/mwisniewski/tale-engine/internal/logger"
	"github.com/mwisniewski/tale-engine/internal/services"
	"github.com/mwisniewski/tale-engine/internal/services/queue"
	"github.com/mwisniewski/tale-engine/internal/storage"
	"github.com/mwisniewski/tale-engine/internal/worker"
	"github.com/mwisniewski/tale-engine/pkg/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		stdlog.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting Tale Engine worker",
		"environment", cfg.Environment,
		"llm_provider", cfg.LLMProvider,
		"model_name", cfg.ModelName)

	var llmService services.LLMService
	var imageService session.ImageGenerator

	switch strings.ToLower(cfg.LLMProvider) {
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			log.Error("OpenAI API key is required when using openai provider")
			os.Exit(1)
		}
		llmService = services.NewOpenAIService(cfg.OpenAIAPIKey, cfg.ModelName)
		imageService = services.NewOpenAIImageService(cfg.OpenAIAPIKey, cfg.ImageModel, log)
	case "anthropic":
		if cfg.AnthropicAPIKey == "" {
			log.Error("Anthropic API key is required when using anthropic provider")
			os.Exit(1)
		}
		llmService = services.NewAnthropicService(cfg.AnthropicAPIKey, cfg.ModelName, log)
		if cfg.OpenAIAPIKey != "" {
			imageService = services.NewOpenAIImageService(cfg.OpenAIAPIKey, cfg.ImageModel, log)
		}
	default:
		log.Error("Invalid LLM provider specified", "provider", cfg.LLMProvider)
		os.Exit(1)
	}

	queueClient, err := queue.NewClient(cfg.RedisURL, log)
	if err != nil {
		log.Error("Failed to create queue client", "error", err)
		os.Exit(1)
	}
	defer func() { _ = queueClient.Close() }()

	store := storage.NewRedisStorageFromClient(queueClient.GetRedisClient(), log)

	processor := worker.NewTurnProcessor(store, llmService, imageService, log)
	turnQueue := queue.NewTurnQueue(queueClient)

	w := worker.New(turnQueue, processor, queueClient.GetRedisClient(), log, "")

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		w.Stop()
	}()

	if err := w.Start(); err != nil {
		log.Error("Worker exited with error", "error", err)
		os.Exit(1)
	}

	log.Info("Worker exited")
}
