// Command main is the entry point for the CraftNexus backend server.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"craftnexus/internal/bootstrap"
	"craftnexus/internal/config"
	"craftnexus/internal/middleware"
	"craftnexus/internal/observability"
	"craftnexus/internal/server"
	"craftnexus/internal/service"
	"craftnexus/internal/storage"
)

var version = "dev"

// @title CraftNexus API
// @version 1.0
// @description Minecraft community backend: news, forum, comments, mod catalog, notifications and weapon analysis.

// @host localhost:8375
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the identity provider's access token.

func main() {
	slog.SetDefault(middleware.Logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	shutdownTracing, err := observability.InitTracing(observability.TracingConfig{
		ServiceName:    "craftnexus-api",
		ServiceVersion: version,
		Environment:    cfg.Env,
		Enabled:        cfg.TracingEnabled,
		Exporter:       cfg.TracingExporter,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SamplerRatio:   cfg.TracingSamplerRatio,
	})
	if err != nil {
		log.Fatalf("Failed to initialize tracing: %v", err)
	}

	ctx := context.Background()
	db, rdb, err := bootstrap.InitRuntime(ctx, cfg, bootstrap.Options{SeedBuiltIns: true})
	if err != nil {
		log.Fatalf("Failed to initialize runtime: %v", err)
	}

	store, err := storage.NewLocalStore(cfg.StorageDir)
	if err != nil {
		log.Fatalf("Failed to open storage: %v", err)
	}

	deps := server.Deps{DB: db, Redis: rdb, Store: store}
	if cfg.GeminiAPIKey != "" {
		analyzer, err := service.NewGeminiAnalyzer(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			log.Fatalf("Failed to create analyzer: %v", err)
		}
		deps.Analyzer = analyzer
	}

	srv, err := server.NewServerWithDeps(cfg, deps)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("shutting down server", slog.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			slog.Error("server stopped", slog.String("error", err.Error()))
		}
	}

	// Claimed analysis jobs run to completion, so the deadline covers one job.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second+cfg.AnalysisJobTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", slog.String("error", err.Error()))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		slog.Error("tracing shutdown error", slog.String("error", err.Error()))
	}
}
