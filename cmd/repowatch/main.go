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

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	githubadapter "github.com/ericfisherdev/repowatch/internal/adapter/driven/github"
	"github.com/ericfisherdev/repowatch/internal/adapter/driven/kvstore"
	httphandler "github.com/ericfisherdev/repowatch/internal/adapter/driving/http"
	webhandler "github.com/ericfisherdev/repowatch/internal/adapter/driving/web"
	"github.com/ericfisherdev/repowatch/internal/application"
	"github.com/ericfisherdev/repowatch/internal/config"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration (fail fast on invalid values).
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel})))
	slog.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"store", cfg.Store,
		"api_base_url", cfg.APIBaseURL,
		"session_ttl", cfg.SessionTTL,
	)

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Open the watch list store (sqlite with migrations, or bbolt).
	store, err := kvstore.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			slog.Error("error closing store", "error", closeErr)
		}
	}()

	// 4. Create the anonymous GitHub client.
	ghClient, err := githubadapter.NewClient(cfg.APIBaseURL, cfg.RequestTimeout)
	if err != nil {
		return err
	}

	// 5. Load the watch list and start the browse session sweeper.
	watchlist := application.NewWatchlistService(ghClient, store, slog.Default())
	watchlist.Initialize(ctx)

	sessions := application.NewSessionRegistry(ghClient, cfg.SessionTTL, slog.Default())
	sweeperDone := make(chan struct{})
	go func() {
		sessions.Start(ctx)
		close(sweeperDone)
	}()

	// 6. Register API and GUI routes.
	mux := http.NewServeMux()
	httphandler.RegisterAPIRoutes(mux, httphandler.NewHandler(watchlist, sessions, slog.Default()))
	webhandler.RegisterRoutes(mux, webhandler.NewHandler(watchlist, sessions, slog.Default()))

	handler := httphandler.ApplyMiddleware(mux, slog.Default())

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.RequestTimeout*2 + 10*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	// 7. Wait for shutdown signal or a listener failure.
	select {
	case <-ctx.Done():
		slog.Info("shutting down")
	case err := <-serveErr:
		stop()
		<-sweeperDone
		return err
	}

	// 8. Graceful shutdown with 10s timeout for in-flight requests.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}
	<-sweeperDone

	slog.Info("shutdown complete")
	return nil
}
