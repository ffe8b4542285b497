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

	"github.com/joho/godotenv"
	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	slackadapter "github.com/slackdeck/slackdeck/internal/adapter/driven/slackapi"
	sqliteadapter "github.com/slackdeck/slackdeck/internal/adapter/driven/sqlite"
	httphandler "github.com/slackdeck/slackdeck/internal/adapter/driving/http"
	webhandler "github.com/slackdeck/slackdeck/internal/adapter/driving/web"
	"github.com/slackdeck/slackdeck/internal/application"
	"github.com/slackdeck/slackdeck/internal/config"
	"github.com/slackdeck/slackdeck/internal/domain/port/driven"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load .env if present, then configuration.
	if err := godotenv.Load(); err == nil {
		slog.Info("environment loaded from .env")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"db_path", cfg.DBPath,
		"tokens_encrypted", cfg.EncryptionKey != nil,
	)

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Open database (dual reader/writer with WAL mode).
	db, err := sqliteadapter.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()
	slog.Info("database opened", "path", cfg.DBPath)

	// 4. Run migrations on writer connection.
	if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		return err
	}
	slog.Info("migrations complete")

	// 5. Wire adapters. Slack clients are built per request, bound to the
	// stored token the operator selected.
	credentialStore := sqliteadapter.NewCredentialRepo(db, cfg.EncryptionKey)
	messageStore := sqliteadapter.NewMessageRepo(db)
	clientFactory := func(token string) driven.SlackClient {
		return slackadapter.NewClient(token)
	}

	console := application.NewConsoleService(credentialStore, messageStore, clientFactory, slog.Default())

	// 6. Register JSON API and web GUI routes on one mux.
	mux := http.NewServeMux()
	httphandler.RegisterAPIRoutes(mux, httphandler.NewHandler(console, slog.Default()))
	webhandler.RegisterRoutes(mux, webhandler.NewHandler(console, slog.Default()))

	handler := httphandler.ApplyMiddleware(mux, slog.Default())

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server error", "error", err)
		}
	}()

	slog.Info("slackdeck started", "listen_addr", cfg.ListenAddr)

	// 7. Wait for shutdown signal, then drain with a timeout.
	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}
