package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iudanet/draftkeeper/internal/server/handlers"
	"github.com/iudanet/draftkeeper/internal/server/middleware"
	"github.com/iudanet/draftkeeper/internal/server/storage/sqlite"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

const (
	accessTokenTTL  = 15 * time.Minute
	refreshTokenTTL = 30 * 24 * time.Hour

	// Лимиты запросов на IP в минуту; для auth-эндпоинтов жестче
	rateLimit     = 100
	authRateLimit = 10

	tokenSweepInterval = time.Hour
	shutdownTimeout    = 10 * time.Second
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	addr := flag.String("addr", ":8080", "Address to listen on")
	dbPath := flag.String("db", "draftkeeper.db", "Path to SQLite database")
	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	if err := run(logger, *addr, *dbPath); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger, addr, dbPath string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	jwtSecret := os.Getenv("DRAFTKEEPER_JWT_SECRET")
	if jwtSecret == "" {
		return fmt.Errorf("DRAFTKEEPER_JWT_SECRET environment variable is required")
	}

	store, err := sqlite.New(ctx, dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	jwtConfig := handlers.JWTConfig{
		Secret:          []byte(jwtSecret),
		AccessTokenTTL:  accessTokenTTL,
		RefreshTokenTTL: refreshTokenTTL,
	}

	handler := buildHandler(logger, store, jwtConfig)

	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go sweepExpiredTokens(ctx, logger, store)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", addr, "version", Version)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	return nil
}

// buildHandler собирает маршруты и цепочку middleware.
// Auth middleware навешивается только на защищенные маршруты
func buildHandler(logger *slog.Logger, store *sqlite.Storage, jwtConfig handlers.JWTConfig) http.Handler {
	authHandler := handlers.NewAuthHandler(logger, store, store, jwtConfig)
	docsHandler := handlers.NewDocumentsHandler(logger, store, store)
	healthHandler := handlers.NewHealthHandler(logger)

	requireAuth := middleware.AuthMiddleware(logger, jwtConfig)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/health", healthHandler.Health)

	mux.HandleFunc("POST /api/v1/auth/register", authHandler.Register)
	mux.HandleFunc("GET /api/v1/auth/salt/{username}", authHandler.GetSalt)
	mux.HandleFunc("POST /api/v1/auth/login", authHandler.Login)
	mux.HandleFunc("POST /api/v1/auth/refresh", authHandler.Refresh)
	mux.Handle("POST /api/v1/auth/logout", requireAuth(http.HandlerFunc(authHandler.Logout)))

	mux.Handle("POST /api/v1/documents", requireAuth(http.HandlerFunc(docsHandler.Create)))
	mux.Handle("GET /api/v1/documents", requireAuth(http.HandlerFunc(docsHandler.List)))
	mux.Handle("GET /api/v1/documents/{id}", requireAuth(http.HandlerFunc(docsHandler.Get)))
	mux.Handle("DELETE /api/v1/documents/{id}", requireAuth(http.HandlerFunc(docsHandler.Delete)))
	mux.Handle("PUT /api/v1/documents/{id}/draft", requireAuth(http.HandlerFunc(docsHandler.SaveDraft)))
	mux.Handle("POST /api/v1/documents/{id}/checkpoints", requireAuth(http.HandlerFunc(docsHandler.CreateCheckpoint)))
	mux.Handle("GET /api/v1/documents/{id}/checkpoints", requireAuth(http.HandlerFunc(docsHandler.ListCheckpoints)))

	var handler http.Handler = mux
	handler = middleware.RateLimitMiddleware(rateLimit, authRateLimit, time.Minute, logger)(handler)
	handler = middleware.LoggingMiddleware(logger, "/api/v1/health")(handler)
	handler = middleware.RecoveryMiddleware(logger)(handler)

	return handler
}

// sweepExpiredTokens периодически удаляет истекшие refresh токены
func sweepExpiredTokens(ctx context.Context, logger *slog.Logger, store *sqlite.Storage) {
	ticker := time.NewTicker(tokenSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := store.DeleteExpiredTokens(ctx)
			if err != nil {
				logger.Error("failed to delete expired tokens", "error", err)
				continue
			}
			if deleted > 0 {
				logger.Info("expired tokens deleted", "count", deleted)
			}
		}
	}
}

func printVersion() {
	fmt.Printf("DraftKeeper Server\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
