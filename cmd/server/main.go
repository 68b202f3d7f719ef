package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/avvvet/coursebuddy/internal/archive"
	"github.com/avvvet/coursebuddy/internal/config"
	"github.com/avvvet/coursebuddy/internal/handlers"
	"github.com/avvvet/coursebuddy/internal/llm"
	"github.com/avvvet/coursebuddy/internal/logger"
	"github.com/avvvet/coursebuddy/internal/memory"
	"github.com/avvvet/coursebuddy/internal/prediction"
	"github.com/avvvet/coursebuddy/internal/subjects"
	"github.com/avvvet/coursebuddy/internal/transport"
)

func main() {
	// Load .env file if it exists (for development)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	logg, err := logger.New(cfg.LogMode)
	if err != nil {
		log.Fatalf("❌ Failed to initialize logger: %v", err)
	}
	defer logg.Sync()

	logg.Info("🚀 Starting CourseBuddy service...",
		"service", cfg.ServiceName,
		"provider", cfg.LLMProvider,
		"model", cfg.Model(),
		"prediction_url", cfg.PredictionURL,
	)

	// Session store: Redis when configured, in-process otherwise
	var store memory.Store
	if cfg.RedisURL != "" {
		logg.Info("🔌 Connecting to Redis...", "url", cfg.RedisURL)
		redisStore, err := memory.NewRedisStore(cfg.RedisURL, cfg.SessionTTL)
		if err != nil {
			logg.Fatal("❌ Failed to connect to Redis", "error", err)
		}
		store = redisStore
		logg.Info("✅ Redis connected")
	} else {
		store = memory.NewCacheStore(cfg.SessionTTL)
		logg.Info("💾 Using in-process session store")
	}

	memoryManager := memory.NewManager(store, logg)
	defer memoryManager.Close()
	logg.Info("✅ Memory manager initialized")

	ctx := context.Background()
	provider, err := llm.New(ctx, cfg.LLMProvider, cfg.APIKey(), cfg.Model(), llm.Options{
		Timeout:     cfg.LLMTimeout,
		Temperature: cfg.LLMTemperature,
		MaxTokens:   cfg.LLMMaxTokens,
	})
	if err != nil {
		logg.Fatal("❌ Failed to initialize LLM provider", "error", err)
	}
	logg.Info("🤖 LLM provider initialized", "provider", provider.Name())

	ranker := prediction.NewClient(cfg.PredictionURL, cfg.PredictionTimeout)
	catalog := subjects.Default()
	logg.Info("📚 Subject catalog loaded", "subjects", catalog.Len())

	chatHandler := handlers.NewChatHandler(provider, ranker, memoryManager, catalog, cfg.HistoryTurns, logg)
	subjectHandler := handlers.NewSubjectHandler(catalog)

	sessionArchive, err := archive.NewFileStore(cfg.SessionArchiveDir)
	if err != nil {
		logg.Fatal("❌ Failed to open session archive", "error", err)
	}

	// NATS is optional
	var natsTransport *transport.NATSTransport
	if cfg.NatsURL != "" {
		natsTransport, err = transport.NewNATSTransport(cfg, chatHandler, subjectHandler, logg)
		if err != nil {
			logg.Fatal("❌ Failed to initialize NATS transport", "error", err)
		}
		defer natsTransport.Close()

		if err := natsTransport.Start(); err != nil {
			logg.Fatal("❌ Failed to start NATS transport", "error", err)
		}
	}

	httpServer := transport.NewHTTPServer(cfg.HTTPAddr, cfg.CORSOrigins, chatHandler, subjectHandler, sessionArchive, logg)
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- httpServer.Start()
	}()

	logg.Info("✅ CourseBuddy service is running!", "http", cfg.HTTPAddr, "archive", sessionArchive.Dir())

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logg.Info("🛑 Received signal", "signal", sig.String())
	case err := <-serverErr:
		if err != nil {
			logg.Error("❌ HTTP server failed", "error", err)
		}
	}

	logg.Info("🔄 Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logg.Warn("⚠️ Error shutting down HTTP server", "error", err)
	}

	if natsTransport != nil {
		if err := natsTransport.Close(); err != nil {
			logg.Warn("⚠️ Error closing NATS transport", "error", err)
		}
	}

	logg.Info("👋 CourseBuddy service stopped")
}
