package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/umar/usergroups/internal/auth"
	"github.com/umar/usergroups/internal/config"
	"github.com/umar/usergroups/internal/database"
	"github.com/umar/usergroups/internal/events"
	"github.com/umar/usergroups/internal/groups"
	"github.com/umar/usergroups/internal/middleware"
	redisc "github.com/umar/usergroups/internal/redis"
	"github.com/umar/usergroups/internal/server"
	"github.com/umar/usergroups/internal/users"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	slog.Info("starting usergroups server")

	if cfg.MigrateOnStart {
		if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
			slog.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}
	}

	// Initialize database
	db, err := database.InitDB(cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to init database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("connected to PostgreSQL")

	// Sessions and event relay live in Redis when it is configured
	var sessions auth.SessionStore = auth.NewMemorySessions()
	var relay events.Relay
	if cfg.RedisURL != "" {
		redisClient, err := redisc.InitRedis(cfg.RedisURL)
		if err != nil {
			slog.Error("failed to init Redis", "error", err)
			os.Exit(1)
		}
		defer redisClient.Close()
		sessions = redisc.NewSessionStore(redisClient)
		relay = redisc.NewRelay(redisClient)
		slog.Info("connected to Redis")
	} else {
		slog.Warn("REDIS_URL not set, sessions and events are local to this instance")
	}

	ctx, cancelHub := context.WithCancel(context.Background())
	defer cancelHub()
	hub := events.NewHub(relay)
	go hub.Run(ctx)

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, 10*time.Minute)
	defer limiter.Stop()

	store := database.NewStore(db)
	router := server.NewRouter(server.Deps{
		Users:      users.NewService(store, cfg.BcryptCost),
		Groups:     groups.NewService(store),
		Issuer:     auth.NewIssuer(cfg.JWTSecret, cfg.TokenTTL, sessions),
		Hub:        hub,
		Limiter:    limiter,
		CORSOrigin: cfg.CORSOrigin,
		TrustProxy: cfg.TrustProxy,
	})

	// HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("server listening", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutting down", "signal", sig.String())

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}
	cancelHub()

	slog.Info("server stopped gracefully")
}
