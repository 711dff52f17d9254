// Fiine customer-support chat backend.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/fiine-pro/support-chat/internal/agent"
	"github.com/fiine-pro/support-chat/internal/api"
	"github.com/fiine-pro/support-chat/internal/chat"
	"github.com/fiine-pro/support-chat/internal/config"
	"github.com/fiine-pro/support-chat/internal/identity"
	"github.com/fiine-pro/support-chat/internal/middleware"
	"github.com/fiine-pro/support-chat/internal/runtime"
	"github.com/fiine-pro/support-chat/internal/store"
	"github.com/fiine-pro/support-chat/internal/upload"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting server", "port", cfg.Port, "model", cfg.OpenAIModel, "dev", cfg.IsDevelopment())

	// Initialize dependencies.
	repo, err := store.NewSQLite(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			slog.Error("Failed to close repository", "error", closeErr)
		}
	}()

	if err := repo.Ping(context.Background()); err != nil {
		slog.Error("Database health check failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database connected")

	// Agent registry and runtime.
	registry := agent.Catalog()
	runner := runtime.NewOpenAIRunner(runtime.Config{
		APIKey:   cfg.OpenAIAPIKey,
		BaseURL:  cfg.OpenAIBaseURL,
		Model:    cfg.OpenAIModel,
		MaxTurns: cfg.MaxTurns,
	}, registry, logger)
	slog.Info("Agent registry ready", "agents", len(registry.List()), "default", registry.Default().Name)

	sessions := chat.NewMemorySessionStore()
	orchestrator := chat.New(registry, runner, sessions, repo, logger)

	accounts := identity.NewService(repo)

	// Setup router.
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	api.NewHealthHandler(repo).RegisterRoutes(r)
	api.NewChatHandler(orchestrator).RegisterRoutes(r)
	api.NewHistoryHandler(repo).RegisterRoutes(r)
	api.NewReportHandler(repo).RegisterRoutes(r)
	api.NewAuthHandler(accounts).RegisterRoutes(r)

	// Image upload requires an S3 bucket; the rest of the API works without it.
	if cfg.UploadEnabled() {
		uploader, err := upload.NewS3(context.Background(), cfg.AWSRegion, cfg.AWSS3Bucket)
		if err != nil {
			slog.Error("Failed to initialize S3 uploader", "error", err)
			os.Exit(1)
		}
		api.NewUploadHandler(uploader).RegisterRoutes(r)
		slog.Info("Image upload enabled", "bucket", cfg.AWSS3Bucket, "region", cfg.AWSRegion)
	} else {
		slog.Info("Image upload disabled (AWS_S3_BUCKET_NAME not set)")
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start server.
	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal.
	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped successfully")
}
