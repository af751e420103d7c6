package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/denisAlshanov/streamgrab/internal/api/handlers"
	"github.com/denisAlshanov/streamgrab/internal/api/router"
	"github.com/denisAlshanov/streamgrab/internal/services/extractor"
	"github.com/denisAlshanov/streamgrab/internal/services/media"
	"github.com/denisAlshanov/streamgrab/internal/services/ratelimit"
	"github.com/denisAlshanov/streamgrab/internal/utils"
)

const extractorCheckTTL = 30 * time.Second

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API (default)",
		Args:  cobra.NoArgs,
		RunE:  a.serve,
	}
}

func (a *app) serve(cmd *cobra.Command, args []string) error {
	cfg := a.cfg
	if err := cfg.RequireAPIKey(); err != nil {
		return err
	}

	logger := utils.GetLogger()
	logger.Info("Starting streamgrab service")

	provider, err := extractor.NewProvider(&cfg.Extractor)
	if err != nil {
		return fmt.Errorf("initializing extractor: %w", err)
	}
	mediaService := media.NewService(provider, cfg.Extractor.Timeout)

	if err := mediaService.Check(cmd.Context()); err != nil {
		logger.Warnf("Extractor backend %s is not usable yet: %v", mediaService.Backend(), err)
	}

	limitStore := ratelimit.NewStore(&cfg.Redis)
	defer limitStore.Close()

	// Initialize handlers
	mediaHandler := handlers.NewMediaHandler(mediaService)
	homeHandler := handlers.NewHomeHandler(&cfg.RateLimit)
	healthHandler := handlers.NewHealthHandler(map[string]handlers.Checker{
		"rate_limit_store": limitStore.Ping,
		"extractor":        handlers.CachedChecker(mediaService.Check, extractorCheckTTL),
	})

	// Initialize router
	r := router.NewRouter(cfg, router.Dependencies{
		MediaHandler:  mediaHandler,
		HomeHandler:   homeHandler,
		HealthHandler: healthHandler,
		LimitStore:    limitStore,
		Throttle:      ratelimit.NewTokenBucket(cfg.RateLimit.GlobalRPS, cfg.RateLimit.GlobalBurst),
	})
	server := r.Server()

	serveErr := make(chan error, 1)
	go func() {
		logger.Infof("Starting server on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-quit:
	}

	logger.Info("Shutting down server...")

	// Create a deadline for shutdown
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Errorf("Failed to shut down server gracefully: %v", err)
	}

	logger.Info("Server shutdown complete")
	return nil
}
