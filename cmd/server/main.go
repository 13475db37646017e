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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/tendant/simple-media/pkg/simplemedia/config"
	"github.com/tendant/simple-media/pkg/simplemedia/mediarepo"
	"github.com/tendant/simple-media/pkg/simplemedia/metrics"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(config.WithDotEnv(".env"), config.WithEnv())
	if err != nil {
		return fmt.Errorf("failed to load server configuration: %w", err)
	}

	logger := cfg.NewLogger(os.Stderr)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, closeRepo, err := cfg.BuildRepository(ctx)
	if err != nil {
		return err
	}
	defer closeRepo()

	store, err := cfg.BuildBlobStore()
	if err != nil {
		return fmt.Errorf("failed to build blob store: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	media, err := mediarepo.New(
		mediarepo.WithRepository(repo),
		mediarepo.WithBlobStore(store),
		mediarepo.WithFetcher(cfg.BuildFetcher()),
		mediarepo.WithLogger(logger),
		mediarepo.WithMetrics(m),
		mediarepo.WithMaxUploadSize(cfg.MaxUploadSize),
	)
	if err != nil {
		return fmt.Errorf("failed to build media service: %w", err)
	}

	srv := NewHTTPServer(media, cfg.BuildIdentity(), logger, m)
	if cfg.EnableMetrics {
		srv.gatherer = reg
	}

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("simple-media server starting",
			"port", cfg.Port,
			"env", cfg.Environment,
			"server_name", cfg.ServerName,
			"storage", cfg.StorageURL,
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("server exiting")
	return nil
}
