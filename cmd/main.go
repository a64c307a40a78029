package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/run-o/talehopper/internal/config"
	"github.com/run-o/talehopper/internal/engine"
	"github.com/run-o/talehopper/internal/feedback"
	"github.com/run-o/talehopper/internal/providers"
	"github.com/run-o/talehopper/internal/storage"
	"github.com/run-o/talehopper/internal/web"
)

func main() {
	_ = godotenv.Load()

	configPath := os.Getenv("TALEHOPPER_CONFIG")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := newLogger(cfg.Logging)
	slog.SetDefault(logger)

	// Stores are optional: the service degrades rather than refusing to
	// start when a backing store is down.
	var mysqlStore *storage.MySQLStore
	if cfg.Database.MySQL.Host != "" {
		mysqlStore, err = storage.NewMySQLStore(cfg.Database.MySQL)
		if err != nil {
			logger.Warn("MySQL unavailable, feedback will not be persisted", "error", err)
			mysqlStore = nil
		} else {
			defer mysqlStore.Close()
			logger.Info("MySQL connected")
		}
	}

	var redisStore *storage.RedisStore
	if cfg.Database.Redis.Host != "" {
		redisStore, err = storage.NewRedisStore(cfg.Database.Redis)
		if err != nil {
			logger.Warn("Redis unavailable, rate limits are per-replica only", "error", err)
			redisStore = nil
		} else {
			defer redisStore.Close()
			logger.Info("Redis connected")
		}
	}

	// The provider is built exactly once and shared read-only by every
	// request for the life of the process.
	provider, err := providers.New(cfg.LLM, providers.Deps{})
	if err != nil {
		log.Fatalf("Failed to initialize LLM provider: %v", err)
	}
	logger.Info("LLM provider initialized", "method", cfg.LLM.Method)

	storyEngine := engine.NewStoryEngine(provider, engine.WithLogger(logger))

	var feedbackStore feedback.Store
	if mysqlStore != nil {
		feedbackStore = mysqlStore
	}
	feedbackService := feedback.NewService(cfg.Feedback, feedbackStore, logger)

	router := web.NewRouter(cfg, storyEngine, feedbackService, redisStore, logger)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	logger.Info("server stopped")
}

func newLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
