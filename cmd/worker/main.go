// Package main is the entry point for the supplyscope background worker.
// It recomputes the cross-supplier reports on an interval and logs a summary.
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

	"supplyscope/internal/config"
	"supplyscope/internal/domain/procurement"
	"supplyscope/internal/infrastructure/metrics"
	"supplyscope/internal/infrastructure/storage/postgres"
	"supplyscope/internal/infrastructure/storage/postgres/batch_repo"
	"supplyscope/internal/infrastructure/storage/postgres/catalog_repo"
	"supplyscope/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Development: cfg.App.IsDevelopment(),
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Infow("starting supplyscope worker", "interval", cfg.Worker.Interval)

	poolCfg := postgres.DefaultPoolConfig(cfg.Database.URL)
	poolCfg.AppName = "supplyscope-worker"
	poolCfg.MaxConns = 4
	poolCfg.MinConns = 1

	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	txm := postgres.NewTxManager(pool)
	m := metrics.New(metrics.DefaultConfig())

	service := procurement.NewService(
		catalog_repo.NewSupplierRepo(txm),
		batch_repo.NewBatchRepo(txm),
		catalog_repo.NewProductRepo(txm),
		txm,
		cfg.Procurement(),
		procurement.WithRecorder(m),
		procurement.WithLogger(log),
	)

	if cfg.Worker.MetricsAddr != "" {
		srv := &http.Server{Addr: cfg.Worker.MetricsAddr, Handler: m.Handler(), ReadTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Errorw("metrics server failed", "error", err)
			}
		}()
		defer func() { _ = srv.Close() }()
	}

	refresher := NewRefresher(service, log,
		WithInterval(cfg.Worker.Interval),
		WithRunOnStart(cfg.Worker.RunOnStart),
		WithPoolObserver(func(ctx context.Context) {
			stats := pool.Stats()
			m.SetPoolStats(stats.TotalConns, stats.AcquiredConns, stats.IdleConns)
			pool.LogStats(ctx)
		}),
	)

	refresher.Run(ctx)
	log.Info("worker stopped")
}
