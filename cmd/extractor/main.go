package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/HatiCode/fdynamics/cmd/extractor/config"
	"github.com/HatiCode/fdynamics/cmd/extractor/logger"
	"github.com/HatiCode/fdynamics/cmd/extractor/metrics"
	"github.com/HatiCode/fdynamics/cmd/extractor/router"
	"github.com/HatiCode/fdynamics/cmd/extractor/settings"
	"github.com/HatiCode/fdynamics/cmd/extractor/store"
	"github.com/HatiCode/fdynamics/pkg/adapters"
	"github.com/HatiCode/fdynamics/pkg/calculators"
	"github.com/HatiCode/fdynamics/pkg/dynamics"
	"github.com/HatiCode/fdynamics/pkg/httpx"
)

func main() {
	cfg := config.ParseFlags()

	logger := logger.New(cfg)
	slog.SetDefault(logger)

	logger.Info("starting fdynamics extractor",
		"version", "v0.1.0",
		"source", cfg.Source,
		"window_lengths", cfg.WindowLengths,
		"partitions", cfg.Partitions,
	)

	m := metrics.New(cfg.Source)

	adapter := &adapters.PrometheusAdapter{
		ServerURL:   cfg.PromURL,
		Query:       cfg.PromQuery,
		Kind:        cfg.Kind,
		IDLabel:     cfg.IDLabel,
		StepSeconds: int(cfg.Step.Seconds()),
	}
	resultStore := store.New(cfg, logger)
	if closer, ok := resultStore.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	opts := Options{
		Configs:    settings.New(cfg, logger),
		Partitions: cfg.Partitions,
		Lookback:   cfg.Lookback,
	}
	if eng, ok := settings.Engineering(cfg); ok {
		opts.Engineering = &eng
	}

	dyn := dynamics.New(
		dynamics.WithRegistry(calculators.Default()),
		dynamics.WithRecorder(m),
		dynamics.WithLogger(logger),
	)
	e := New(cfg.Source, adapter, dyn, resultStore, opts, logger, m)

	staleAfter := 2 * cfg.Interval // a result is stale if older than 2x the interval
	httpServer := httpx.NewServer(cfg.Listen, router.SetupRoutes(resultStore, staleAfter, logger), logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := e.Run(ctx, cfg.Interval); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("extraction loop failed", "error", err)
		}
	}()

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- httpServer.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	select {
	case sig := <-sigCh:
		logger.Info("received shutdown signal", "signal", sig)
	case err := <-serverErr:
		if err != nil {
			logger.Error("server failed", "error", err)
		}
	}

	logger.Info("shutting down")
	cancel()

	if err := httpServer.Stop(10 * time.Second); err != nil {
		logger.Error("server shutdown failed", "error", err)
		os.Exit(1)
	}

	logger.Info("shutdown complete")
}
