package main

import (
	"context"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jwebster45206/adventure-relay/internal/config"
	"github.com/jwebster45206/adventure-relay/internal/game"
	"github.com/jwebster45206/adventure-relay/internal/handlers"
	"github.com/jwebster45206/adventure-relay/internal/logger"
	"github.com/jwebster45206/adventure-relay/internal/middleware"
	"github.com/jwebster45206/adventure-relay/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		stdlog.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting Adventure Relay",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"model_name", cfg.ModelName)

	llmService := services.NewOpenRouterService(cfg.OpenRouterAPIKey, cfg.ModelName, cfg.OpenRouterReferer)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := llmService.InitModel(ctx, cfg.ModelName); err != nil {
		log.Error("Failed to initialize LLM model", "error", err, "model", cfg.ModelName)
		os.Exit(1)
	}

	// Sessions ride on Redis when configured, process memory otherwise.
	// Game state is always in-memory; only the browser session cookie
	// is cached here.
	var cache services.Cache
	if cfg.RedisURL != "" {
		redis := services.NewRedisService(cfg.RedisURL, log)
		if err := redis.Ping(ctx); err != nil {
			log.Error("Failed to connect to Redis", "error", err)
			os.Exit(1)
		}
		log.Info("Redis session store connected")
		cache = redis
	} else {
		log.Info("Using in-memory session store")
		cache = services.NewMemoryCache()
	}

	sessions := services.NewSessionStore(cache, log)
	registry := game.NewRegistry(log)
	narrator := game.NewNarrator(llmService, registry, log)

	mux := http.NewServeMux()
	mux.Handle("/ws", handlers.NewSocketHandler(registry, narrator, log))
	mux.Handle("/api/rooms", handlers.NewRoomsHandler(registry, log))
	mux.Handle("/health", handlers.NewHealthHandler(cache, llmService, log))
	mux.Handle("/", handlers.NewIndexHandler(cfg.StaticDir, sessions, cfg.IsProduction(), log))

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: middleware.Logger(mux),
		// No ReadTimeout or WriteTimeout: WebSocket connections are
		// long-lived and manage their own deadlines.
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server is shutting down...")

	if err := cache.Close(); err != nil {
		log.Error("Error closing session store", "error", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	log.Info("Server exited")
}
