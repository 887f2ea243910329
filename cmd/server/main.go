package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/deptsite/deptcms/config"
	"github.com/deptsite/deptcms/internal/api"
	"github.com/deptsite/deptcms/internal/core/filter"
	"github.com/deptsite/deptcms/internal/core/record"
	"github.com/deptsite/deptcms/internal/core/schema"
	"github.com/deptsite/deptcms/internal/core/validation"
	"github.com/deptsite/deptcms/internal/storage"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger := config.SetupLogger(cfg.Log, os.Stderr)

	reg, err := schema.Default()
	if err != nil {
		log.Fatalf("Invalid resource definitions: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Refuse to serve without storage
	store, err := storage.Open(ctx, &cfg.Storage, reg.All())
	if err != nil {
		logger.Error("Failed to open storage", "driver", cfg.Storage.Driver, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	records := record.NewService(reg, store, validation.NewValidator(), filter.NewCompiler(reg))
	router := api.NewRouter(records, store, cfg.CORS.AllowedOrigins, logger)

	srv := &http.Server{
		Addr:    cfg.Server.Addr(),
		Handler: router.Setup(cfg.Server.Mode),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting server", "addr", srv.Addr, "resources", reg.Names())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Graceful shutdown
	select {
	case <-ctx.Done():
		logger.Info("Shutting down server...")
	case err := <-errCh:
		if err != nil {
			logger.Error("Server failed", "error", err)
			store.Close()
			os.Exit(1)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Graceful shutdown failed", "error", err)
	}
	logger.Info("Server stopped")
}
