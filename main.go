package main

import (
	"consultgpt-pipeline/internal/config"
	"consultgpt-pipeline/internal/handlers"
	"consultgpt-pipeline/internal/pkg/logger"
	"consultgpt-pipeline/internal/services"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.LogConfig{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	log.Info("starting consultgpt-pipeline",
		"environment", cfg.Environment,
		"port", cfg.HTTP.Port,
		"crustdata_enabled", cfg.CrustDataEnabled(),
		"redis_enabled", cfg.RedisEnabled())

	aiService, err := services.NewAIService(cfg.OpenAI, log)
	if err != nil {
		log.WithError(err).Error("failed to initialize AI service")
		os.Exit(1)
	}

	// The data adapter is constructed once at startup when a credential is
	// present. A nil adapter is a valid state: chat still works, tools are
	// simply not offered to the model.
	var crustdata *services.CrustDataService
	if cfg.CrustDataEnabled() {
		crustdata, err = services.NewCrustDataService(cfg.CrustData, log)
		if err != nil {
			log.WithError(err).Error("failed to initialize Crustdata service")
			os.Exit(1)
		}
	} else {
		log.Warn("CRUSTDATA_API_KEY not set, data tools disabled")
	}

	var memory *services.MemoryService
	if cfg.RedisEnabled() {
		memory, err = services.NewMemoryService(cfg.Redis, log)
		if err != nil {
			log.WithError(err).Error("failed to initialize memory service")
			os.Exit(1)
		}
		defer memory.Close()
	} else {
		log.Warn("REDIS_URL not set, chat history disabled")
	}

	promptBuilder := services.NewPromptBuilder(log)
	dispatcher := services.NewToolDispatcher(crustdata, log)
	extractor := services.NewPayloadExtractor(log)
	orchestrator := services.NewChatOrchestrator(aiService, promptBuilder, dispatcher, extractor, cfg.OpenAI, log)
	assistant := services.NewAssistService(aiService, cfg.OpenAI, log)

	var chatMemory handlers.ChatMemory
	var titleStore handlers.TitleStore
	var memoryHealth handlers.HealthChecker
	if memory != nil {
		chatMemory = memory
		titleStore = memory
		memoryHealth = memory
	}
	var prober handlers.DataProber
	if crustdata != nil {
		prober = crustdata
	}

	router := handlers.Router(
		handlers.NewChatHandler(orchestrator, chatMemory, log),
		handlers.NewAssistHandler(assistant, titleStore, log),
		handlers.NewWorkStreamHandler(),
		handlers.NewSystemHandler(prober, memoryHealth, log),
		log,
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	go func() {
		log.Info("http server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("http server failed")
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
	log.Info("shutdown complete")
}
