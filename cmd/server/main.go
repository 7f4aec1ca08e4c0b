// Package main is the entry point for the supplyscope API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"supplyscope/internal/config"
	"supplyscope/internal/domain/procurement"
	v1 "supplyscope/internal/infrastructure/http/v1"
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

	ctx := context.Background()
	log.Infow("starting supplyscope server", "env", cfg.App.Env)

	poolCfg := postgres.DefaultPoolConfig(cfg.Database.URL)
	poolCfg.MaxConns = cfg.Database.MaxConns
	poolCfg.MinConns = cfg.Database.MinConns
	poolCfg.MaxConnLifetime = cfg.Database.MaxConnLifetime
	poolCfg.MaxConnIdleTime = cfg.Database.MaxConnIdleTime

	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

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

	router := v1.NewRouter(v1.RouterConfig{
		Procurement: service,
		DB:          txm,
		Metrics:     m,
		Logger:      log,
		Debug:       cfg.App.IsDevelopment(),
	})

	addr := ":" + strconv.Itoa(cfg.App.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.App.ReadTimeout,
		WriteTimeout: cfg.App.WriteTimeout,
		IdleTimeout:  cfg.App.IdleTimeout,
	}

	go func() {
		log.Infow("server starting", "addr", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}
