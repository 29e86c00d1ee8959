// Package main provides the reviews engine API server entrypoint.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/reviewpilot/reviews-engine/internal/answer"
	"github.com/reviewpilot/reviews-engine/internal/config"
	"github.com/reviewpilot/reviews-engine/internal/embedding"
	"github.com/reviewpilot/reviews-engine/internal/llm"
	"github.com/reviewpilot/reviews-engine/internal/observability"
	"github.com/reviewpilot/reviews-engine/internal/store"
)

func main() {
	// .env is optional; real environments set variables directly
	_ = godotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	if len(os.Args) > 2 && os.Args[1] == "--config" {
		cfgPath = os.Args[2]
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(observability.LogConfig{
		Level:       cfg.Observability.LogLevel,
		Format:      cfg.Observability.LogFormat,
		ServiceName: "reviews-api",
	})

	logger.Info().
		Str("host", cfg.Server.Host).
		Int("port", cfg.Server.Port).
		Str("store", cfg.Store.Addr).
		Str("index", cfg.Store.IndexName).
		Str("model", cfg.Oracle.Model).
		Msg("Starting reviews API")

	oracle, err := llm.NewClient(llm.Config{
		BaseURL: cfg.Oracle.BaseURL,
		APIKey:  cfg.Oracle.APIKey,
		Model:   cfg.Oracle.Model,
		Timeout: cfg.Oracle.Timeout,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create oracle client")
	}

	embedder, err := embedding.NewClient(embedding.Config{
		BaseURL:   cfg.Embedding.BaseURL,
		APIKey:    cfg.Embedding.APIKey,
		Model:     cfg.Embedding.Model,
		Dimension: cfg.Embedding.Dimension,
		Timeout:   cfg.Embedding.Timeout,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create embedding client")
	}

	st, err := store.NewRedisStore(store.RedisConfig{
		Addr:     cfg.Store.Addr,
		Password: cfg.Store.Password,
		DB:       cfg.Store.DB,
		PoolSize: cfg.Store.PoolSize,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to store")
	}

	engine := answer.NewRouter(logger, oracle, embedder, st, answer.RouterConfig{
		Index:      cfg.Store.IndexName,
		SchemaPath: cfg.Store.SchemaPath,
		TopK:       cfg.Answer.TopK,
	})

	router := NewRouter(logger, engine, cfg)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", addr).Msg("HTTP server listening")
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		logger.Error().Err(err).Msg("Server error")
	case sig := <-shutdown:
		logger.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulShutdown)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("Graceful shutdown failed")
		if err := srv.Close(); err != nil {
			logger.Error().Err(err).Msg("Forced shutdown failed")
		}
	}

	logger.Info().Msg("Server stopped")
}
