// Package bootstrap opens the backing services named by the configuration.
// Both the API server and the admin CLI start through it.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"hostelfix/backend/internal/config"
	"hostelfix/backend/internal/storage"
	"hostelfix/backend/internal/storage/memstore"
	"hostelfix/backend/internal/storage/mongostore"
	"hostelfix/backend/internal/storage/sqlstore"
	"hostelfix/backend/internal/uploads"
)

// OpenStore connects the configured storage driver.
func OpenStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (storage.Store, error) {
	switch cfg.StorageDriver {
	case config.StorageMongo:
		s, err := mongostore.NewStore(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, fmt.Errorf("mongo: %w", err)
		}
		logger.Info("connected to MongoDB", "database", cfg.MongoDatabase)
		return s, nil
	case config.StoragePostgres:
		s, err := sqlstore.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}
		logger.Info("connected to PostgreSQL, migrations complete")
		return s, nil
	case config.StorageMemory:
		logger.Warn("using in-memory storage, data is lost on restart")
		return memstore.New(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

// OpenRedis returns nil when REDIS_ADDR is unset.
func OpenRedis(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*redis.Client, error) {
	if cfg.Redis.Addr == "" {
		return nil, nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Redis.Addr, err)
	}
	logger.Info("connected to Redis", "addr", cfg.Redis.Addr)
	return rdb, nil
}

// OpenUploads builds the photo manager over the configured backend.
func OpenUploads(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*uploads.Manager, error) {
	var store uploads.Store
	switch cfg.Uploads.Backend {
	case config.UploadMinio:
		m, err := uploads.NewMinioStore(cfg.Minio)
		if err != nil {
			return nil, err
		}
		if err := m.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		logger.Info("photo uploads stored in MinIO", "endpoint", cfg.Minio.Endpoint, "bucket", cfg.Minio.Bucket)
		store = m
	default:
		d, err := uploads.NewDiskStore(cfg.Uploads.Dir)
		if err != nil {
			return nil, err
		}
		logger.Info("photo uploads stored on disk", "dir", cfg.Uploads.Dir)
		store = d
	}
	return uploads.NewManager(store, cfg.Uploads.MaxBytes), nil
}
