package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/timmy/reviewdash/internal/api"
	"github.com/timmy/reviewdash/internal/config"
	"github.com/timmy/reviewdash/internal/dashboard"
	"github.com/timmy/reviewdash/internal/gateway"
	"github.com/timmy/reviewdash/internal/generator"
	"github.com/timmy/reviewdash/internal/logger"
	"github.com/timmy/reviewdash/internal/notifier"
	"github.com/timmy/reviewdash/internal/observer"
	"golang.org/x/sync/errgroup"
)

func main() {
	// Support CONFIG_PATH environment variable for production deployments
	configPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatal("Failed to load config: %v", err)
	}

	log := logger.NewDefault()
	logger.SetDefaultLogger(log)
	defer logger.Sync()

	client := generator.NewClient(&generator.ClientConfig{
		BaseURL: cfg.Generator.BaseURL,
		Timeout: cfg.Generator.Timeout,
	})

	updates := notifier.New()

	obs, err := observer.New(client, &observer.Config{
		Interval:     cfg.Poll.Interval,
		DiscardStale: cfg.Poll.DiscardStale,
		Notifier:     updates,
	})
	if err != nil {
		logger.Fatal("Failed to create status observer: %v", err)
	}

	gw := gateway.New(client, &gateway.Config{TestBatchSize: cfg.Actions.TestBatchSize})

	dash := dashboard.New(obs, gw, &dashboard.Config{
		Settings: cfg.Defaults.Settings(),
		Notifier: updates,
	})

	router := api.SetupRouter(api.Deps{
		Dashboard: dash,
		Notifier:  updates,
		Observer:  obs,
		Probe:     client,
		Logger:    log,
	}, &cfg.Server)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := serve(ctx, cfg, router, obs); err != nil {
		logger.Fatal("Console exited with error: %v", err)
	}

	logger.Info("Server exited")
}

// serve runs the HTTP server and the status observer until ctx is cancelled.
func serve(ctx context.Context, cfg *config.Config, handler http.Handler, obs *observer.Observer) error {
	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: handler,
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	obs.Start(egctx)
	defer obs.Stop()

	eg.Go(func() error {
		logger.Info("Starting console server: port=%d, mode=%s, generator=%s", cfg.Server.Port, cfg.Server.Mode, cfg.Generator.BaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	eg.Go(func() error {
		<-egctx.Done()
		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}
