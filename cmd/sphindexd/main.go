package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/meridian-oss/sphindex/internal/config"
	dbRedis "github.com/meridian-oss/sphindex/internal/db/redis"
	"github.com/meridian-oss/sphindex/internal/daemon/sphinx"
	logpkg "github.com/meridian-oss/sphindex/internal/logger"
	"github.com/meridian-oss/sphindex/internal/metrics"
	"github.com/meridian-oss/sphindex/internal/registry"
	documentrepo "github.com/meridian-oss/sphindex/internal/repository/document"
	chiTransport "github.com/meridian-oss/sphindex/internal/transport/chi"
	documentuc "github.com/meridian-oss/sphindex/internal/usecase/document"
	healthuc "github.com/meridian-oss/sphindex/internal/usecase/health"
	searchuc "github.com/meridian-oss/sphindex/internal/usecase/search"
	"github.com/meridian-oss/sphindex/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting sphindex API server",
		zap.String("build", version.String()),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
		zap.String("daemon_host", cfg.Daemon.Host),
		zap.Int("daemon_port", cfg.Daemon.Port),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:      cfg.Database.Addrs,
		Username:   cfg.Database.Username,
		Password:   cfg.Database.Password,
		Standalone: cfg.Database.Standalone,
	})
	if err != nil {
		logger.Fatal("Failed to create document store", zap.Error(err))
	}
	defer store.Close()

	// Wait for the store to be ready
	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Document store not ready", zap.Error(err))
	}
	logger.Info("Connected to document store")

	daemonClient, err := sphinx.NewClient(sphinx.Config{
		Host:    cfg.Daemon.Host,
		Port:    cfg.Daemon.Port,
		Timeout: time.Duration(cfg.Daemon.TimeoutSec) * time.Second,
	})
	if err != nil {
		logger.Fatal("Failed to create daemon client", zap.Error(err))
	}
	defer daemonClient.Close()

	// Register search metrics explicitly (no init())
	metrics.RegisterSearchMetrics()

	// Register document classes from configuration; the registry is the
	// closed set of classes this process will index and resolve.
	classes := registry.New()
	for _, cc := range cfg.Classes {
		idxCfg, err := cc.IndexConfig(cfg.Daemon)
		if err != nil {
			logger.Fatal("Invalid class configuration", zap.String("class", cc.Name), zap.Error(err))
		}
		if err := classes.Register(idxCfg); err != nil {
			logger.Fatal("Failed to register class", zap.String("class", cc.Name), zap.Error(err))
		}
	}
	logger.Info("Registered document classes", zap.Strings("classes", classes.Tags()))

	docRepo := documentrepo.New(store)

	docSvc := documentuc.New(docRepo, classes)
	searchSvc := searchuc.New(daemonClient, docRepo, classes)
	healthSvc := healthuc.New(store, daemonClient)

	server := chiTransport.NewServer(docSvc, searchSvc, healthSvc, logger, cfg.Search.DefaultPageSize)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      server.Router(),
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}
