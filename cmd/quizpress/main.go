// Package main is the entry point for the quizpress content sync server.
// It loads configuration, connects to services, sets up routing, and starts
// the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"quizpress/internal/config"
	"quizpress/internal/database"
	"quizpress/internal/docstore"
	"quizpress/internal/handlers"
	"quizpress/internal/middleware"
	"quizpress/internal/router"
	"quizpress/internal/state"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
		"defaultFeature", cfg.DefaultFeature,
	)

	// Connect to PostgreSQL.
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Run pending migrations.
	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	store := docstore.NewPostgres(db)

	// Seed development data (no-op if data already exists).
	if cfg.IsDev() {
		if err := database.Seed(context.Background(), store); err != nil {
			slog.Error("failed to seed store", "error", err)
			os.Exit(1)
		}
	}

	// Connect to Valkey, which holds the durable last-import pointer.
	valkeyClient, err := state.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		slog.Error("failed to connect to valkey", "error", err)
		os.Exit(1)
	}
	defer valkeyClient.Close()

	pointer := state.NewValkeyPointer(valkeyClient)

	// Rate limit for the destructive bulk endpoints. 30 per minute is
	// far above any human admin workflow.
	limiter := middleware.NewRateLimiter(30, time.Minute)
	defer limiter.Stop()

	admin := handlers.NewAdmin(store, pointer, cfg.DefaultFeature, cfg.CategoryAliases)
	r := router.New(admin, limiter)

	// Write timeout accommodates large imports: parsing, dedup, and
	// per-row writes for a multi-thousand-row file take a while.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	// Give active requests up to 30 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}
