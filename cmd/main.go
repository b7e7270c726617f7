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

	"elafcatalog/internal/caching"
	"elafcatalog/internal/config"
	"elafcatalog/internal/handlers"
	"elafcatalog/internal/jobs/background"
	"elafcatalog/internal/logging"
	"elafcatalog/internal/middleware"
	"elafcatalog/internal/repositories"
	"elafcatalog/internal/services"
	"elafcatalog/pkg/database"

	"go.uber.org/zap"
)

const version = "1.0.0"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "elafcatalog: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := database.NewPool(ctx, cfg.Database.URL, logger)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := database.EnsureSchema(ctx, pool); err != nil {
		return err
	}

	cache := caching.NewRedisTreeCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)

	store, err := services.NewMinioService(cfg.Minio.Endpoint, cfg.Minio.AccessKey, cfg.Minio.SecretKey, cfg.Minio.UseSSL)
	if err != nil {
		return fmt.Errorf("initialize object storage: %w", err)
	}
	if err := store.EnsureBucketExists(ctx, cfg.Minio.Bucket); err != nil {
		logger.Warn("snapshot bucket unavailable", zap.String("bucket", cfg.Minio.Bucket), zap.Error(err))
	}

	keys, err := middleware.NewKeySource(cfg.Auth.JWTSecret, cfg.Auth.JWKSURL, logger)
	if err != nil {
		return err
	}
	defer keys.Close()

	treeService := services.NewCategoryTreeService(
		repositories.NewCategoryRecordRepo(pool),
		cache,
		store,
		services.CategoryTreeConfig{
			Bucket:       cfg.Minio.Bucket,
			URLExpiry:    cfg.Minio.URLExpiry,
			CacheTTL:     cfg.Tree.CacheTTL,
			RejectCycles: cfg.Tree.RejectCycles,
		},
		logger,
	)

	if cfg.Jobs.Enabled {
		scheduler, err := background.NewJobScheduler(treeService, background.Config{
			RefreshInterval:  cfg.Jobs.RefreshInterval,
			SnapshotInterval: cfg.Jobs.SnapshotInterval,
		}, logger)
		if err != nil {
			return err
		}
		scheduler.Start()
		defer func() {
			if err := scheduler.Stop(); err != nil {
				logger.Warn("scheduler shutdown failed", zap.Error(err))
			}
		}()
	}

	e := newEcho(logger, keys, routeHandlers{
		categories: handlers.NewCategoryHandlers(treeService, logger),
		brands:     handlers.NewBrandHandlers(),
		health:     handlers.NewHealthHandlers(pool, cache, store, cfg.Minio.Bucket, logger),
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", zap.String("addr", addr), zap.String("version", version))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
