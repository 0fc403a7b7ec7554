package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/msomdec/user-roster/internal/handler"
	"github.com/msomdec/user-roster/internal/remote"
	"github.com/msomdec/user-roster/internal/repository/sqlite"
	"github.com/msomdec/user-roster/internal/service"
	"github.com/msomdec/user-roster/internal/store"
)

func main() {
	cfg, err := loadConfig(os.Getenv)

	logOpts := &slog.HandlerOptions{Level: cfg.LogLevel}
	logger := slog.New(slog.NewMultiHandler(
		slog.NewTextHandler(os.Stdout, logOpts),
		slog.NewJSONHandler(os.Stderr, logOpts),
	))
	slog.SetDefault(logger)

	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	tokens := service.NewTokenIssuer(cfg.JWTSecret, cfg.TokenSubject, cfg.TokenTTL)
	mux := http.NewServeMux()

	if cfg.ServeAPI {
		db, err := sqlite.New(cfg.DatabasePath)
		if err != nil {
			slog.Error("failed to open database", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		if err := db.Migrate(context.Background()); err != nil {
			slog.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}
		slog.Info("database migrations applied")

		limiter := service.NewTokenBucket(cfg.RateLimitRPS, cfg.RateLimitBurst)
		defer limiter.Close()

		handler.RegisterAPIRoutes(mux, service.NewUserService(db.Users()), tokens, limiter)
		slog.Info("users API enabled", "database", cfg.DatabasePath)
	}

	client := remote.New(cfg.APIURL,
		remote.WithTimeout(cfg.RemoteTimeout),
		remote.WithTokenSource(tokens.Issue),
	)
	handler.RegisterRoutes(mux, store.New(client))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler.SecurityHeaders(mux),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("server starting", "addr", srv.Addr, "users_api", cfg.APIURL)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
