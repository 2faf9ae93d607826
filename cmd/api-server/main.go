package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hackgods/petcare-booking/internal/app"
	"github.com/hackgods/petcare-booking/internal/config"
	"github.com/hackgods/petcare-booking/internal/logging"
)

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load error", "error", err)
		os.Exit(1)
	}

	log := logging.Setup(cfg.LogLevel, cfg.LogFormat, "api-server")
	log.Info("api-server starting up",
		"env", cfg.Env,
		"http_port", cfg.HTTPPort,
		"store", cfg.StoreBackend,
		"lock", cfg.LockBackend,
		"timezone", cfg.Location.String(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err = run(ctx, cfg, log)
	stop()
	if err != nil {
		log.Error("api-server stopped", "error", err)
		os.Exit(1)
	}
}

// run serves until ctx is done. Backends are closed before it returns on
// every path.
func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	openCtx, cancelOpen := context.WithTimeout(ctx, 10*time.Second)
	a, err := app.Open(openCtx, cfg, log)
	cancelOpen()
	if err != nil {
		return fmt.Errorf("startup: %w", err)
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Error("error closing backends", "error", err)
		}
	}()

	if err := a.EnsureDefaults(ctx); err != nil {
		return fmt.Errorf("seed default time slots: %w", err)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           a.Router(version),
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	var failed error
	select {
	case <-ctx.Done():
	case err := <-serveErr:
		failed = err
	}

	log.Info("shutting down api-server", "timeout", cfg.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}

	if failed != nil {
		return fmt.Errorf("http server: %w", failed)
	}
	return nil
}
